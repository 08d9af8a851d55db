package ot

import "github.com/clipperhouse/uax29/graphemes"

// SplitsGraphemeCluster reports whether applying c to text would place a
// Keep/Remove boundary in the middle of a user-perceived character
// (grapheme cluster) — e.g. a flag emoji, an emoji-ZWJ sequence, or a
// base+combining-mark pair. §4.4 leaves this case as undefined behavior
// ("can only happen if ... the changeset was constructed by a buggy
// producer"); this is the advisory diagnostic the spec permits an
// implementation to offer without requiring it, surfaced as a boolean
// instead of folding the check into Apply itself, so Apply's hot path
// stays a single pass with no grapheme segmentation cost.
//
// It does not validate surrogate-pair boundaries within a single rune —
// Length()/utf16Len already keep those aligned by construction — only
// boundaries that split a multi-rune cluster UAX#29 treats as one unit.
//
// Ported from the teacher's Rope.Graphemes, which uses the same
// clipperhouse/uax29/graphemes segmenter over a rope's flattened text;
// here it runs directly over the plain string Apply would consume.
func SplitsGraphemeCluster(c Changeset, text string) bool {
	if utf16Len(text) != c.FromLength() {
		return false
	}

	boundaries := make(map[int]bool)
	pos := 0
	for _, r := range graphemes.SegmentAllString(text) {
		boundaries[pos] = true
		pos += utf16Len(r)
	}
	boundaries[pos] = true

	cursor := 0
	for _, op := range c.ops {
		switch op.Kind() {
		case KeepKind, RemoveKind:
			if !boundaries[cursor] || !boundaries[cursor+op.N()] {
				return true
			}
			cursor += op.N()
		}
	}
	return false
}
