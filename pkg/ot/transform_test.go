package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioD() Changeset {
	return New(
		Remove(3), Add(" ab"), Keep(3), Remove(5), Add("ty"), Keep(5), Remove(1),
	)
}

func TestTransformDiamondProperty(t *testing.T) {
	b := scenarioB()
	d := scenarioD()
	require.Equal(t, b.FromLength(), d.FromLength())

	bPrime, dPrime, err := Transform(b, d)
	require.NoError(t, err)

	// B and D are both issued against the result of applying A to
	// "qwerty poiu!" (scenario in compose_test.go), not against that
	// 12-unit base text directly — B.FromLength()/D.FromLength() is 17,
	// matching that intermediate text's UTF-16 length.
	base := "qwertasdfoiu!zxcv"
	require.Equal(t, b.FromLength(), utf16Len(base))

	viaB, err := Apply(b, base)
	require.NoError(t, err)
	leftPath, err := Apply(dPrime, viaB)
	require.NoError(t, err)

	viaD, err := Apply(d, base)
	require.NoError(t, err)
	rightPath, err := Apply(bPrime, viaD)
	require.NoError(t, err)

	assert.Equal(t, leftPath, rightPath)
}

func TestTransformPostconditionLengths(t *testing.T) {
	a := New(Keep(2), Add("xy"), Keep(3))
	b := New(Keep(2), Remove(1), Keep(2))
	require.Equal(t, a.FromLength(), b.FromLength())

	aPrime, bPrime, err := Transform(a, b)
	require.NoError(t, err)

	assert.Equal(t, b.ToLength(), aPrime.FromLength())
	assert.Equal(t, aPrime.ToLength(), bPrime.ToLength())
}

func TestTransformConcurrentInsertsLeftPriority(t *testing.T) {
	a := New(Keep(3), Add("def"))
	b := New(Keep(3), Add("ghi"))

	aPrime, bPrime, err := Transform(a, b)
	require.NoError(t, err)

	base := "abc"
	viaA, err := Apply(a, base)
	require.NoError(t, err)
	left, err := Apply(bPrime, viaA)
	require.NoError(t, err)

	viaB, err := Apply(b, base)
	require.NoError(t, err)
	right, err := Apply(aPrime, viaB)
	require.NoError(t, err)

	assert.Equal(t, left, right)
	assert.Equal(t, "abcdefghi", left)
}

func TestTransformUncombinable(t *testing.T) {
	a := New(Keep(3))
	b := New(Keep(5))
	_, _, err := Transform(a, b)
	assert.ErrorIs(t, err, ErrUncombinable)
}

func TestTransformBothDeletesSameRegion(t *testing.T) {
	a := New(Remove(3), Keep(2))
	b := New(Remove(3), Keep(2))

	aPrime, bPrime, err := Transform(a, b)
	require.NoError(t, err)
	assert.True(t, aPrime.Equal(New(Keep(2))))
	assert.True(t, bPrime.Equal(New(Keep(2))))
}
