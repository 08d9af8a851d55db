package ot

import "unicode/utf16"

// UTF16Len is the exported form of utf16Len, for external collaborators
// (e.g. package diffsync) that need to size text the same way package ot
// does before building an Op.
func UTF16Len(s string) int { return utf16Len(s) }

// utf16Len returns the number of UTF-16 code units needed to represent s.
//
// Most runes (U+0000 to U+FFFF) require one code unit; runes outside the
// Basic Multilingual Plane (U+10000 to U+10FFFF) require a surrogate pair,
// i.e. two code units. This, not byte length and not rune count, is the
// length unit the spec requires for every Op — ported from the same
// reasoning as the teacher's Rope.LenUTF16.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// utf16Slice splits s at the given UTF-16 code-unit offset k, returning the
// prefix and suffix as strings. k must be between 0 and utf16Len(s); a k
// that lands inside a surrogate pair cannot occur for well-formed input
// produced by this package (Add payloads are always sliced at a boundary
// computed from Length(), never from a raw byte/rune offset), but a
// caller-constructed Changeset could still trigger it; the split surrogate
// halves then decode as U+FFFD.
func utf16Slice(s string, k int) (head, rest string) {
	if k <= 0 {
		return "", s
	}
	units := utf16Encode(s)
	if k >= len(units) {
		return s, ""
	}
	return utf16Decode(units[:k]), utf16Decode(units[k:])
}

// utf16Encode returns s as a slice of UTF-16 code units.
func utf16Encode(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// utf16Decode returns units decoded back into a string.
func utf16Decode(units []uint16) string {
	return string(utf16.Decode(units))
}
