// Package session manages live collaborative documents: the server-side
// counterpart to package client, tracking the authoritative text, its
// revision history, and the snapshot/recent-changes split the teacher uses
// to bound how much in-memory history any one document accumulates.
//
// Grounded on the teacher's pkg/transport/session_manager.go EditSession /
// SessionManager, trimmed of the authentication/token subsystem (out of
// this spec's scope) and the Redis-forwarding hooks (moved to package
// history, which Document talks to through the Listener interface).
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/texere-ot/ot/pkg/ot"
)

// ErrRevisionTooOld is returned by ApplySince when the caller's base
// revision predates the document's oldest retained snapshot, so there is
// no longer a changeset history to transform against.
var ErrRevisionTooOld = errors.New("session: client revision predates available history")

// ErrRevisionAhead is returned by ApplySince when the caller's base
// revision is newer than the document has ever reached.
var ErrRevisionAhead = errors.New("session: client revision is ahead of the document")

// DefaultMaxChangesBeforeSnapshot is the default number of applied
// changesets a Document accumulates before folding them into a fresh
// snapshot.
const DefaultMaxChangesBeforeSnapshot = 200

// DefaultMaxSnapshotInterval is the default maximum time between
// snapshots, regardless of change count.
const DefaultMaxSnapshotInterval = 5 * time.Minute

// Listener observes changesets applied to a Document, e.g. to forward them
// to package history. Both methods are called asynchronously and must not
// block the caller of Document.Apply.
type Listener interface {
	OnSnapshot(docID string, version int64, text string)
	OnOperation(docID string, version int64, change ot.Changeset)
}

// Document is one collaboratively-edited text, holding the authoritative
// content plus a bounded window of recent changesets since the last
// snapshot. Safe for concurrent use.
type Document struct {
	ID string

	mu sync.RWMutex

	text            string
	revision        int64
	snapshotVersion int64
	recentChanges   []ot.Changeset
	lastSnapshot    time.Time

	maxChangesBeforeSnapshot int
	maxSnapshotInterval      time.Duration

	listener Listener
}

// NewDocument creates a Document with the given initial content. id may be
// empty, in which case a uuid is generated.
func NewDocument(id, initialText string) *Document {
	if id == "" {
		id = uuid.New().String()
	}
	return &Document{
		ID:                       id,
		text:                     initialText,
		lastSnapshot:             time.Now(),
		maxChangesBeforeSnapshot: DefaultMaxChangesBeforeSnapshot,
		maxSnapshotInterval:      DefaultMaxSnapshotInterval,
	}
}

// SetListener installs a history listener for this document.
func (d *Document) SetListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = l
}

// Text returns the document's current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Revision returns the number of changesets applied so far.
func (d *Document) Revision() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Apply is the mutation entry point for a caller that already knows its
// change was built against the document's current text — e.g. a single
// local editor with no concurrent writers. It validates change against
// the document's current UTF-16 length before delegating to ot.Apply,
// then records the changeset and notifies the listener (if any) without
// blocking.
func (d *Document) Apply(change ot.Changeset) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	newText, err := ot.Apply(change, d.text)
	if err != nil {
		return "", err
	}

	d.commitLocked(change, newText)
	return d.text, nil
}

// ApplySince is the mutation entry point for a caller (package transport's
// server) whose change may have been built against an earlier revision
// than the document's current one — the normal case once more than one
// client edits the same document concurrently. baseRevision is the
// revision the caller's change was composed against; change is
// transformed via ot.Transform against every changeset applied since
// baseRevision (in the order they were applied, mirroring
// client.Client.ApplyServer's use of ot.Transform) before being applied,
// so two clients starting from the same revision both succeed instead of
// the second one failing ot.Apply's length precondition.
//
// Returns the transformed changeset actually applied (what the caller
// should broadcast to other subscribers), the resulting text, and the
// document's new revision.
func (d *Document) ApplySince(baseRevision int64, change ot.Changeset) (ot.Changeset, string, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if baseRevision < d.snapshotVersion {
		return ot.Changeset{}, "", 0, ErrRevisionTooOld
	}
	if baseRevision > d.revision {
		return ot.Changeset{}, "", 0, ErrRevisionAhead
	}

	missed := d.recentChanges[baseRevision-d.snapshotVersion:]
	transformed := change
	for _, past := range missed {
		var err error
		if _, transformed, err = ot.Transform(past, transformed); err != nil {
			return ot.Changeset{}, "", 0, err
		}
	}

	newText, err := ot.Apply(transformed, d.text)
	if err != nil {
		return ot.Changeset{}, "", 0, err
	}

	d.commitLocked(transformed, newText)
	return transformed, d.text, d.revision, nil
}

// commitLocked records change (already validated and applied to produce
// newText) as the document's new state, notifies the listener, and
// snapshots if a threshold is due. Callers must hold d.mu.
func (d *Document) commitLocked(change ot.Changeset, newText string) {
	d.text = newText
	d.revision++
	d.recentChanges = append(d.recentChanges, change)

	if d.listener != nil {
		listener, docID, rev := d.listener, d.ID, d.revision
		go listener.OnOperation(docID, rev, change)
	}

	if len(d.recentChanges) >= d.maxChangesBeforeSnapshot || time.Since(d.lastSnapshot) >= d.maxSnapshotInterval {
		d.snapshotLocked()
	}
}

// snapshotLocked folds recentChanges into a new snapshot. Callers must
// hold d.mu.
func (d *Document) snapshotLocked() {
	d.snapshotVersion = d.revision
	d.lastSnapshot = time.Now()
	d.recentChanges = d.recentChanges[:0]

	if d.listener != nil {
		listener, docID, text, rev := d.listener, d.ID, d.text, d.revision
		go listener.OnSnapshot(docID, rev, text)
	}
}

// RecentChanges returns a copy of the changesets applied since the last
// snapshot.
func (d *Document) RecentChanges() []ot.Changeset {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ot.Changeset, len(d.recentChanges))
	copy(out, d.recentChanges)
	return out
}

// SetSnapshotPolicy overrides the default snapshotting thresholds.
func (d *Document) SetSnapshotPolicy(maxChanges int, maxInterval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if maxChanges < 1 {
		maxChanges = 1
	}
	if maxInterval < time.Second {
		maxInterval = time.Second
	}
	d.maxChangesBeforeSnapshot = maxChanges
	d.maxSnapshotInterval = maxInterval
}
