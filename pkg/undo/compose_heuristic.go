package undo

import "github.com/texere-ot/ot/pkg/ot"

// ShouldComposeWith reports whether two consecutively-applied changesets
// look like a single user gesture (e.g. typing "a" then "b" right after
// it, or repeated backspace) rather than two independent edits, so Manager
// can collapse them into one undo-stack entry.
//
// Ported from the teacher's pkg/ot/operation.go Operation.ShouldBeComposedWith
// (itself a port of ot.js's TextOperation.prototype.shouldBeComposedWith),
// generalized from that package's Retain/Insert/Delete op slice to this
// package's canonical Changeset, where the "simple op" a changeset performs
// is whichever single Add or Remove sits between at most one leading and
// one trailing Keep.
func ShouldComposeWith(a, b ot.Changeset) bool {
	if a.IsIdentity() || b.IsIdentity() {
		return true
	}

	startA, simpleA, okA := simpleEdit(a)
	startB, simpleB, okB := simpleEdit(b)
	if !okA || !okB {
		return false
	}

	switch {
	case simpleA.Kind() == ot.AddKind && simpleB.Kind() == ot.AddKind:
		// b's insert picks up exactly where a's left off: typing forward.
		return startA+simpleA.Length() == startB

	case simpleA.Kind() == ot.RemoveKind && simpleB.Kind() == ot.RemoveKind:
		// Two ways to delete forward from the same spot: the Delete key
		// (startA == startB) repeatedly removing at the cursor, or
		// Backspace (startB+len(b) == startA) repeatedly removing before
		// it.
		return startB+simpleB.Length() == startA || startA == startB

	default:
		return false
	}
}

// simpleEdit reports the single Add/Remove op a changeset performs and the
// UTF-16 offset it starts at, when the changeset has that shape: at most
// one leading Keep, the one Add/Remove, at most one trailing Keep. Any
// other shape (multiple edits chained together, or a pure Keep) is not a
// "simple" single-gesture edit and ok is false.
func simpleEdit(c ot.Changeset) (start int, op ot.Op, ok bool) {
	ops := c.Ops()
	switch len(ops) {
	case 1:
		if ops[0].Kind() == ot.KeepKind {
			return 0, ot.Op{}, false
		}
		return 0, ops[0], true

	case 2:
		if ops[0].Kind() == ot.KeepKind {
			return ops[0].N(), ops[1], true
		}
		if ops[1].Kind() == ot.KeepKind {
			return 0, ops[0], true
		}
		return 0, ot.Op{}, false

	case 3:
		if ops[0].Kind() == ot.KeepKind && ops[2].Kind() == ot.KeepKind {
			return ops[0].N(), ops[1], true
		}
		return 0, ot.Op{}, false

	default:
		return 0, ot.Op{}, false
	}
}
