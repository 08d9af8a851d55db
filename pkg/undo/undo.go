// Package undo provides an ot.js-style undo/redo stack layered on top of
// package ot's changeset algebra: every applied edit's inverse is pushed
// onto an undo stack, consecutive same-kind edits are composed together so
// "undo" feels like undoing a whole word rather than one keystroke, and
// both stacks are kept consistent with incoming remote edits by
// transforming them.
//
// Grounded on the teacher's pkg/ot/undo_manager.go UndoManager, generalized
// from that package's *Operation pointer type to package ot's Changeset
// value type.
package undo

import (
	"errors"
	"sync"

	"github.com/texere-ot/ot/pkg/ot"
)

// DefaultMaxStackSize is used by NewManager when maxItems <= 0.
const DefaultMaxStackSize = 50

// ErrCannotUndo is returned by Manager.Undo when the undo stack is empty.
var ErrCannotUndo = errors.New("undo: nothing to undo")

// ErrCannotRedo is returned by Manager.Redo when the redo stack is empty.
var ErrCannotRedo = errors.New("undo: nothing to redo")

type state int

const (
	stateNormal state = iota
	stateUndoing
	stateRedoing
)

// Manager tracks a bounded undo/redo history of changesets for a single
// document. Safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	maxItems  int
	state     state
	noCompose bool
	undoStack []ot.Changeset
	redoStack []ot.Changeset
}

// NewManager creates a Manager holding up to maxItems changesets per
// stack. maxItems <= 0 uses DefaultMaxStackSize.
func NewManager(maxItems int) *Manager {
	if maxItems <= 0 {
		maxItems = DefaultMaxStackSize
	}
	return &Manager{maxItems: maxItems}
}

// Record pushes a locally-applied changeset's inverse onto the
// appropriate stack. compose requests merging with the previous top-of-
// undo-stack entry when the two look like consecutive keystrokes
// (ShouldComposeWith); callers pass true for ordinary typing and false
// after an undo/redo boundary.
func (m *Manager) Record(inverse ot.Changeset, compose bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateUndoing:
		m.redoStack = append(m.redoStack, inverse)
		m.noCompose = true
		return
	case stateRedoing:
		m.undoStack = append(m.undoStack, inverse)
		m.noCompose = true
		return
	}

	if !m.noCompose && compose && len(m.undoStack) > 0 {
		last := m.undoStack[len(m.undoStack)-1]
		// inverse undoes the edit most recently applied, so it must run
		// before last (the combined undo of everything earlier) when the
		// two are merged into one entry: Compose(inverse, last), not the
		// reverse — last's FromLength is the document length right after
		// the edit inverse undoes, which is exactly inverse's ToLength.
		if ShouldComposeWith(inverse, last) {
			if composed, err := ot.Compose(inverse, last); err == nil {
				m.undoStack[len(m.undoStack)-1] = composed
				m.noCompose = false
				m.redoStack = m.redoStack[:0]
				return
			}
		}
	}

	m.undoStack = append(m.undoStack, inverse)
	if len(m.undoStack) > m.maxItems {
		m.undoStack = m.undoStack[1:]
	}
	m.noCompose = false
	m.redoStack = m.redoStack[:0]
}

// TransformAgainst transforms both stacks against a remote changeset,
// keeping recorded inverses valid against the document's new state. Call
// this before applying a remote operation that was concurrent with any
// locally-recorded edits.
func (m *Manager) TransformAgainst(remote ot.Changeset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	m.undoStack, _, err = transformStack(m.undoStack, remote)
	if err != nil {
		return err
	}
	m.redoStack, _, err = transformStack(m.redoStack, remote)
	return err
}

func transformStack(stack []ot.Changeset, op ot.Changeset) ([]ot.Changeset, ot.Changeset, error) {
	next := make([]ot.Changeset, 0, len(stack))

	for i := len(stack) - 1; i >= 0; i-- {
		opPrime, operationPrime, err := ot.Transform(stack[i], op)
		if err != nil {
			return nil, ot.Changeset{}, err
		}
		if !opPrime.IsIdentity() {
			next = append(next, opPrime)
		}
		op = operationPrime
	}

	for i, j := 0, len(next)-1; i < j; i, j = i+1, j-1 {
		next[i], next[j] = next[j], next[i]
	}

	return next, op, nil
}

// Undo pops the most recent undo entry and hands it to fn, which must
// apply it to the document and report the inverse of what it applied (the
// redo entry) back via Manager.Record — typically by calling
// m.Record(redoInverse, false) from inside fn.
func (m *Manager) Undo(fn func(change ot.Changeset)) error {
	m.mu.Lock()
	if len(m.undoStack) == 0 {
		m.mu.Unlock()
		return ErrCannotUndo
	}

	change := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.state = stateUndoing
	m.mu.Unlock()

	fn(change)

	m.mu.Lock()
	m.state = stateNormal
	m.mu.Unlock()
	return nil
}

// Redo pops the most recent redo entry and hands it to fn, mirroring
// Undo.
func (m *Manager) Redo(fn func(change ot.Changeset)) error {
	m.mu.Lock()
	if len(m.redoStack) == 0 {
		m.mu.Unlock()
		return ErrCannotRedo
	}

	change := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.state = stateRedoing
	m.mu.Unlock()

	fn(change)

	m.mu.Lock()
	m.state = stateNormal
	m.mu.Unlock()
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undoStack = m.undoStack[:0]
	m.redoStack = m.redoStack[:0]
}
