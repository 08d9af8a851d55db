package ot

// Transform reconciles two concurrent changesets a and b issued against the
// same base document, returning (a', b') such that applying b then a', or
// a then b', converge to the same result (the diamond property):
//
//	Apply(a', Apply(b, t)) == Apply(b', Apply(a, t))
//
// Fails with ErrUncombinable when a.FromLength() != b.FromLength().
//
// Transform is not commutative in the general sense: Transform(a, b) and
// Transform(b, a) yield swapped, related results, and concurrent inserts at
// the same position are ordered by left-priority — a's insert is placed
// before b's in the merged text. Callers needing a different tie-break
// (e.g. ordering by client ID) must pick one side to always call first.
//
// The two-cursor walk's carry/sentinel design is ported from shiv248's
// OperationSeq.Transform; the priority rules themselves follow spec.md
// §4.6 rather than that source's string-comparison insert tie-break, which
// the spec's design notes (§9) flag as not the one to keep.
func Transform(a, b Changeset) (Changeset, Changeset, error) {
	if a.FromLength() != b.FromLength() {
		return Changeset{}, Changeset{}, ErrUncombinable
	}

	var aPrime, bPrime builder
	l := newCursor(a.ops)
	r := newCursor(b.ops)

	for !l.done() || !r.done() {
		switch {
		// L's Add strictly precedes R's Add: this is the canonical
		// tie-break for concurrent insertions at the same position.
		case !l.done() && l.head.kind == AddKind:
			aPrime.emit(l.head)
			bPrime.emit(Keep(l.head.Length()))
			l.advance()

		case !r.done() && r.head.kind == AddKind:
			aPrime.emit(Keep(r.head.Length()))
			bPrime.emit(r.head)
			r.advance()

		case l.done() || r.done():
			panic("ot: transform: unreachable op pairing")

		case l.head.kind == KeepKind && r.head.kind == KeepKind:
			k := min(l.head.n, r.head.n)
			aPrime.emit(Keep(k))
			bPrime.emit(Keep(k))
			shortenBoth(l, r, k)

		case l.head.kind == RemoveKind && r.head.kind == RemoveKind:
			k := min(l.head.n, r.head.n)
			// Both sides delete the same region: nothing to emit either
			// way, the deletion is already shared.
			shortenBoth(l, r, k)

		case l.head.kind == KeepKind && r.head.kind == RemoveKind:
			k := min(l.head.n, r.head.n)
			bPrime.emit(Remove(k))
			shortenBoth(l, r, k)

		case l.head.kind == RemoveKind && r.head.kind == KeepKind:
			k := min(l.head.n, r.head.n)
			aPrime.emit(Remove(k))
			shortenBoth(l, r, k)

		default:
			panic("ot: transform: unreachable op pairing")
		}
	}

	return aPrime.build(), bPrime.build(), nil
}
