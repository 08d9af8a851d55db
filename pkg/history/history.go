// Package history records the changesets and snapshots a session.Document
// emits, and lets a caller reconstruct the document text as of any past
// revision. Grounded on the teacher's
// pkg/transport/memory_history.go MemoryHistoryService, generalized from
// that file's string-keyed Content field to ot.Changeset operations.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/texere-ot/ot/pkg/ot"
)

// ErrDocumentNotFound is returned when no events have been recorded for a
// document id.
var ErrDocumentNotFound = errors.New("history: document not found")

// ErrEventChannelFull names the condition of a saturated internal event
// queue — the caller's producer outrunning the Store's consumer.
// OnSnapshot/OnOperation return no error: when the queue is full the event
// is dropped.
var ErrEventChannelFull = errors.New("history: event channel full")

// Event is one recorded point in a document's history: either a full-text
// snapshot or an applied operation.
type Event struct {
	DocID     string
	Version   int64
	Snapshot  bool
	Text      string
	Operation ot.Changeset
	At        time.Time
}

// Store is an in-memory, asynchronously-populated history.session.Listener
// implementation. Events are queued on a buffered channel and folded into
// per-document logs by a single background goroutine, mirroring the
// teacher's processEvents/handleEvent split so callers recording history
// never block on Store's internal locking.
type Store struct {
	mu         sync.RWMutex
	snapshots  map[string]map[int64]Event
	operations map[string][]Event

	events    chan Event
	closeOnce sync.Once
	closeChan chan struct{}
	wg        sync.WaitGroup

	now func() time.Time
}

// NewStore creates a Store and starts its background event-processing
// goroutine.
func NewStore() *Store {
	s := &Store{
		snapshots:  make(map[string]map[int64]Event),
		operations: make(map[string][]Event),
		events:     make(chan Event, 1000),
		closeChan:  make(chan struct{}),
		now:        time.Now,
	}
	s.wg.Add(1)
	go s.processEvents()
	return s
}

// OnSnapshot implements session.Listener.
func (s *Store) OnSnapshot(docID string, version int64, text string) {
	s.enqueue(Event{DocID: docID, Version: version, Snapshot: true, Text: text, At: s.now()})
}

// OnOperation implements session.Listener.
func (s *Store) OnOperation(docID string, version int64, change ot.Changeset) {
	s.enqueue(Event{DocID: docID, Version: version, Operation: change, At: s.now()})
}

func (s *Store) enqueue(e Event) {
	select {
	case s.events <- e:
	default:
		// Matches the teacher's drop-on-full behavior: history is
		// best-effort and must never backpressure the document's hot path.
	}
}

func (s *Store) processEvents() {
	defer s.wg.Done()
	for {
		select {
		case <-s.closeChan:
			return
		case e := <-s.events:
			s.handle(e)
		}
	}
}

func (s *Store) handle(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Snapshot {
		if s.snapshots[e.DocID] == nil {
			s.snapshots[e.DocID] = make(map[int64]Event)
		}
		s.snapshots[e.DocID][e.Version] = e
		return
	}

	s.operations[e.DocID] = append(s.operations[e.DocID], e)
}

// Operations returns the recorded operation log for a document, oldest
// first, up to limit entries (0 means unlimited).
func (s *Store) Operations(ctx context.Context, docID string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ops, ok := s.operations[docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}

	if limit > 0 && len(ops) > limit {
		ops = ops[:limit]
	}

	out := make([]Event, len(ops))
	copy(out, ops)
	return out, nil
}

// Reconstruct replays the recorded operations to rebuild a document's text
// as of targetVersion, starting from the nearest snapshot at or before it.
func (s *Store) Reconstruct(ctx context.Context, docID string, targetVersion int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps, hasSnaps := s.snapshots[docID]
	ops, hasOps := s.operations[docID]
	if !hasSnaps && !hasOps {
		return "", ErrDocumentNotFound
	}

	var text string
	var fromVersion int64

	best := int64(-1)
	for v := range snaps {
		if v <= targetVersion && v > best {
			best = v
		}
	}
	if best >= 0 {
		text = snaps[best].Text
		fromVersion = best
	}

	for _, e := range ops {
		if e.Version <= fromVersion || e.Version > targetVersion {
			continue
		}
		var err error
		text, err = ot.Apply(e.Operation, text)
		if err != nil {
			return "", fmt.Errorf("history: replaying version %d: %w", e.Version, err)
		}
	}

	return text, nil
}

// Close stops the background processing goroutine. Safe to call multiple
// times.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		s.wg.Wait()
	})
}
