// Package diffsync synthesizes a changeset from two arbitrary text
// snapshots, for collaborators that only have "before" and "after" text
// (e.g. a plugin host without granular edit events, or reconciling a
// document after being offline). Grounded on the teacher's
// pkg/transport/patch_manager.go PatchManager, which wraps the same
// diffmatchpatch library for the same purpose — there the result is a
// PatchManager text patch; here it is a canonical ot.Changeset.
package diffsync

import (
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/text/unicode/norm"

	"github.com/texere-ot/ot/pkg/ot"
)

var dmp = diffmatchpatch.New()

// Synthesize computes a changeset that turns oldText into newText, built
// from a diffmatchpatch.DiffMain line/character diff. The returned
// changeset is canonical and, applied to oldText via ot.Apply, reproduces
// newText exactly.
func Synthesize(oldText, newText string) ot.Changeset {
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	ops := make([]ot.Op, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, ot.Keep(ot.UTF16Len(d.Text)))
		case diffmatchpatch.DiffInsert:
			ops = append(ops, ot.Add(d.Text))
		case diffmatchpatch.DiffDelete:
			ops = append(ops, ot.Remove(ot.UTF16Len(d.Text)))
		}
	}

	return ot.New(ops...)
}

// NormalizationReport describes how a text's Unicode normalization form
// compares to NFC, the form the core changeset algebra assumes text
// arrives in (spec.md's composition/transform walk has no notion of
// combining-character reordering).
type NormalizationReport struct {
	// AlreadyNFC is true if text is already in Normalization Form C.
	AlreadyNFC bool
	// Normalized is text re-encoded into NFC.
	Normalized string
	// ChangesetToNFC turns text into Normalized, for a caller that wants
	// to apply the normalization as an ordinary changeset rather than
	// silently replacing content out from under a client. It is the empty
	// Changeset when AlreadyNFC is true.
	ChangesetToNFC ot.Changeset
}

// CheckNormalization reports whether text is already NFC-normalized and,
// if not, produces both the normalized text and the changeset that
// produces it — grounded on the same diff-then-changeset approach as
// Synthesize, since x/text/unicode/norm only tells you the normalized
// string, not a diff against the original.
func CheckNormalization(text string) NormalizationReport {
	normalized := norm.NFC.String(text)
	if normalized == text {
		return NormalizationReport{AlreadyNFC: true, Normalized: text}
	}

	return NormalizationReport{
		AlreadyNFC:     false,
		Normalized:     normalized,
		ChangesetToNFC: Synthesize(text, normalized),
	}
}
