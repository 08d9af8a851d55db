package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texere-ot/ot/pkg/ot"
)

// applyAndRecord mimics a caller wiring a document edit through Manager:
// apply, invert, record.
func applyAndRecord(t *testing.T, m *Manager, text string, change ot.Changeset, compose bool) string {
	t.Helper()
	inverse, err := ot.Invert(change, text)
	require.NoError(t, err)
	newText, err := ot.Apply(change, text)
	require.NoError(t, err)
	m.Record(inverse, compose)
	return newText
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(0)
	text := "hello"

	change := ot.New(ot.Keep(5), ot.Add(" world"))
	text = applyAndRecord(t, m, text, change, false)
	require.Equal(t, "hello world", text)

	require.True(t, m.CanUndo())
	require.False(t, m.CanRedo())

	err := m.Undo(func(inverse ot.Changeset) {
		var applyErr error
		text, applyErr = ot.Apply(inverse, text)
		require.NoError(t, applyErr)
		redoInverse, invErr := ot.Invert(inverse, "hello world")
		require.NoError(t, invErr)
		m.Record(redoInverse, false)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.True(t, m.CanRedo())

	err = m.Redo(func(redo ot.Changeset) {
		var applyErr error
		text, applyErr = ot.Apply(redo, text)
		require.NoError(t, applyErr)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestUndoEmptyStackFails(t *testing.T) {
	m := NewManager(0)
	err := m.Undo(func(ot.Changeset) {})
	assert.ErrorIs(t, err, ErrCannotUndo)
}

func TestRedoEmptyStackFails(t *testing.T) {
	m := NewManager(0)
	err := m.Redo(func(ot.Changeset) {})
	assert.ErrorIs(t, err, ErrCannotRedo)
}

func TestRecordComposesConsecutiveInserts(t *testing.T) {
	m := NewManager(0)
	text := "abc"

	text = applyAndRecord(t, m, text, ot.New(ot.Keep(3), ot.Add("d")), true)
	text = applyAndRecord(t, m, text, ot.New(ot.Keep(4), ot.Add("e")), true)
	require.Equal(t, "abcde", text)

	// Two consecutive forward inserts compose into a single undo entry.
	err := m.Undo(func(inverse ot.Changeset) {
		var applyErr error
		text, applyErr = ot.Apply(inverse, text)
		require.NoError(t, applyErr)
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", text)
	assert.False(t, m.CanUndo())
}

func TestRecordDoesNotComposeUnrelatedEdits(t *testing.T) {
	m := NewManager(0)
	text := "abc"

	text = applyAndRecord(t, m, text, ot.New(ot.Add("X"), ot.Keep(3)), true)
	text = applyAndRecord(t, m, text, ot.New(ot.Keep(4), ot.Add("Y")), true)
	require.Equal(t, "XabcY", text)

	err := m.Undo(func(inverse ot.Changeset) {
		var applyErr error
		text, applyErr = ot.Apply(inverse, text)
		require.NoError(t, applyErr)
	})
	require.NoError(t, err)
	assert.Equal(t, "Xabc", text)
	assert.True(t, m.CanUndo())
}

func TestShouldComposeWithInsertsForward(t *testing.T) {
	a := ot.New(ot.Keep(3), ot.Add("d"))
	b := ot.New(ot.Keep(4), ot.Add("e"))
	assert.True(t, ShouldComposeWith(a, b))
}

func TestShouldComposeWithUnrelatedInserts(t *testing.T) {
	a := ot.New(ot.Add("X"), ot.Keep(3))
	b := ot.New(ot.Keep(4), ot.Add("Y"))
	assert.False(t, ShouldComposeWith(a, b))
}

func TestShouldComposeWithBackspaceDeletes(t *testing.T) {
	// Deleting position 4 then position 3 (backspace marches left).
	a := ot.New(ot.Keep(4), ot.Remove(1))
	b := ot.New(ot.Keep(3), ot.Remove(1))
	assert.True(t, ShouldComposeWith(a, b))
}

func TestShouldComposeWithDeleteKeyDeletes(t *testing.T) {
	// Forward-delete key repeatedly removes at the same cursor position.
	a := ot.New(ot.Keep(3), ot.Remove(1))
	b := ot.New(ot.Keep(3), ot.Remove(1))
	assert.True(t, ShouldComposeWith(a, b))
}

func TestClear(t *testing.T) {
	m := NewManager(0)
	applyAndRecord(t, m, "abc", ot.New(ot.Keep(3), ot.Add("d")), false)
	require.True(t, m.CanUndo())
	m.Clear()
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}
