package diffsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texere-ot/ot/pkg/ot"
)

func TestSynthesizeReproducesNewText(t *testing.T) {
	old := "hello world"
	new := "hello brave world"

	change := Synthesize(old, new)

	got, err := ot.Apply(change, old)
	require.NoError(t, err)
	assert.Equal(t, new, got)
}

func TestSynthesizeIdenticalTextsProducesIdentity(t *testing.T) {
	change := Synthesize("same", "same")
	got, err := ot.Apply(change, "same")
	require.NoError(t, err)
	assert.Equal(t, "same", got)
}

func TestSynthesizeHandlesDeletionOnly(t *testing.T) {
	old := "hello cruel world"
	new := "hello world"

	change := Synthesize(old, new)
	got, err := ot.Apply(change, old)
	require.NoError(t, err)
	assert.Equal(t, new, got)
}

func TestCheckNormalizationDetectsAlreadyNFC(t *testing.T) {
	report := CheckNormalization("plain ascii")
	assert.True(t, report.AlreadyNFC)
	assert.Equal(t, "plain ascii", report.Normalized)
}

func TestCheckNormalizationProducesApplicableChangeset(t *testing.T) {
	// "e" followed by a combining acute accent: the NFD decomposition of
	// the precomposed "e with acute" letter.
	decomposed := string([]rune{'e', 0x0301})

	report := CheckNormalization(decomposed)
	require.False(t, report.AlreadyNFC)

	got, err := ot.Apply(report.ChangesetToNFC, decomposed)
	require.NoError(t, err)
	assert.Equal(t, report.Normalized, got)
}
