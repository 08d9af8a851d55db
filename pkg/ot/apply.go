package ot

import "strings"

// Apply materializes c against text, returning the transformed text.
//
// It fails with ErrBadTextLength when the UTF-16 length of text does not
// equal c.FromLength(). The walk is a single iterative left-to-right pass
// over c's operations (§4.4): Keep copies code units from input to output
// and advances the input cursor; Add appends literal text without
// advancing; Remove advances the input cursor without emitting anything.
func Apply(c Changeset, text string) (string, error) {
	if utf16Len(text) != c.FromLength() {
		return "", ErrBadTextLength
	}

	var out strings.Builder
	out.Grow(estimateByteLen(c.ToLength()))

	pos := 0
	var units []uint16
	for _, op := range c.ops {
		switch op.kind {
		case KeepKind:
			if units == nil {
				units = utf16Encode(text)
			}
			out.WriteString(utf16Decode(units[pos : pos+op.n]))
			pos += op.n
		case AddKind:
			out.WriteString(op.value)
		case RemoveKind:
			pos += op.n
		}
	}

	return out.String(), nil
}

// estimateByteLen gives strings.Builder.Grow a rough pre-size in bytes from
// a UTF-16 code-unit count; ASCII-dominant documents need no reallocation,
// wider text still benefits from the smaller number of growth steps.
func estimateByteLen(utf16Units int) int { return utf16Units }

// Invert computes the inverse of c with respect to the text it was built
// against (the text Apply(c, before) would consume). Applying the inverse
// to Apply(c, before) reproduces before. Used by the undo package; an
// in-scope extension of the core algebra since it is a single pass over
// the same op stream as Apply (ported from shiv248's Invert and the
// teacher's pkg/ot/operation.go Invert).
func Invert(c Changeset, before string) (Changeset, error) {
	if utf16Len(before) != c.FromLength() {
		return Changeset{}, ErrBadTextLength
	}
	units := utf16Encode(before)
	pos := 0
	var b builder
	for _, op := range c.ops {
		switch op.kind {
		case KeepKind:
			b.emit(Keep(op.n))
			pos += op.n
		case AddKind:
			b.emit(Remove(op.Length()))
		case RemoveKind:
			b.emit(Add(utf16Decode(units[pos : pos+op.n])))
			pos += op.n
		}
	}
	return b.build(), nil
}
