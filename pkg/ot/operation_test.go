package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangesetCanonicalizesAdjacentSameKindOps(t *testing.T) {
	c := New(Keep(2), Keep(3), Add("a"), Add("b"))
	require.Equal(t, 2, c.Len())
	assert.Equal(t, Keep(5), c.Ops()[0])
	assert.Equal(t, Add("ab"), c.Ops()[1])
}

func TestChangesetDropsZeroLengthOps(t *testing.T) {
	c := New(Keep(0), Add(""), Remove(0), Keep(4))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, Keep(4), c.Ops()[0])
}

func TestChangesetLengths(t *testing.T) {
	c := New(Keep(5), Add("asdf"), Remove(3), Keep(4), Add("zxcv"))
	assert.Equal(t, 12, c.FromLength())
	assert.Equal(t, 17, c.ToLength())
}

func TestOpLengthIsUTF16CodeUnits(t *testing.T) {
	// The family emoji sequence below is 8 UTF-16 code units (man, ZWJ,
	// woman, ZWJ, girl, each a surrogate pair joined by single-unit ZWJs).
	op := Add("👨‍👩‍👧")
	assert.Equal(t, 8, op.Length())
}

func TestIdentityKeepIsNoop(t *testing.T) {
	c := New(Keep(5))
	assert.True(t, c.IsIdentity())

	result, err := Apply(c, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestChangesetEqual(t *testing.T) {
	a := New(Keep(2), Add("x"))
	b := New(Keep(1), Keep(1), Add("x"))
	assert.True(t, a.Equal(b))
}
