package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texere-ot/ot/pkg/ot"
)

func TestManagerOpenCreatesThenReuses(t *testing.T) {
	m := NewManager(nil)

	doc, existed := m.Open("doc1", "hello")
	assert.False(t, existed)
	assert.Equal(t, "hello", doc.Text())

	doc2, existed := m.Open("doc1", "ignored")
	assert.True(t, existed)
	assert.Same(t, doc, doc2)
}

func TestManagerGetMissingReturnsError(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestManagerCloseRemovesDocument(t *testing.T) {
	m := NewManager(nil)
	m.Open("doc1", "hi")
	assert.Equal(t, 1, m.Len())

	m.Close("doc1")
	assert.Equal(t, 0, m.Len())

	_, err := m.Get("doc1")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestManagerAttachesListenerToNewDocuments(t *testing.T) {
	l := &recordingListener{}
	m := NewManager(l)

	doc, _ := m.Open("doc1", "hi")
	_, err := doc.Apply(ot.New(ot.Keep(2), ot.Add("!")))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return l.count() == 1 }, time.Second, time.Millisecond)
}
