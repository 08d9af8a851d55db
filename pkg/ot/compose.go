package ot

// cursor walks a Changeset's operation list front-to-back, keeping a
// "carry" — the partially-consumed head of the current op — so compose and
// transform run in time linear in operation count instead of rebuilding
// the slice on every pop (§5, §9: avoid the naive O(n^2) front-removal).
type cursor struct {
	ops  []Op
	idx  int
	head Op
	has  bool
}

func newCursor(ops []Op) *cursor {
	c := &cursor{ops: ops}
	c.advance()
	return c
}

// advance loads the next op into head from the underlying slice, ignoring
// any carry — callers that shorten head in place must not call advance.
func (c *cursor) advance() {
	if c.idx >= len(c.ops) {
		c.has = false
		return
	}
	c.head = c.ops[c.idx]
	c.idx++
	c.has = true
}

// done reports whether the cursor has no more operations, including no
// carried head.
func (c *cursor) done() bool { return !c.has }

// Compose combines a then b into a single Changeset C equivalent to
// applying a and then b: Apply(C, t) == Apply(b, Apply(a, t)) for every t
// with matching length. Fails with ErrUncomposable when a.ToLength() does
// not equal b.FromLength().
//
// Short-circuits: an empty changeset on either side is the identity, so
// Compose returns the other side unchanged — but only after the length
// check above, matching the source's documented check-then-shortcut order
// (spec §9 open question: keep both in that order to preserve the error
// surface).
//
// The two-cursor walk and its priority rules are ported from shiv248's
// OperationSeq.Compose (itself a port of the Rust operational-transform
// crate), adapted to this package's Op/Changeset types.
func Compose(a, b Changeset) (Changeset, error) {
	if a.ToLength() != b.FromLength() {
		return Changeset{}, ErrUncomposable
	}
	if len(a.ops) == 0 {
		return b, nil
	}
	if len(b.ops) == 0 {
		return a, nil
	}

	var out builder
	l := newCursor(a.ops)
	r := newCursor(b.ops)

	for !l.done() || !r.done() {
		switch {
		case !l.done() && l.head.kind == RemoveKind:
			out.emit(l.head)
			l.advance()

		case !r.done() && r.head.kind == AddKind:
			out.emit(r.head)
			r.advance()

		case l.done() || r.done():
			// One side still has a non-Remove/non-Add op pending while
			// the other is exhausted: lengths were checked equal above,
			// so this cannot happen for well-formed inputs.
			panic("ot: compose: unreachable op pairing")

		case l.head.kind == KeepKind && r.head.kind == KeepKind:
			k := min(l.head.n, r.head.n)
			out.emit(Keep(k))
			shortenBoth(l, r, k)

		case l.head.kind == KeepKind && r.head.kind == RemoveKind:
			k := min(l.head.n, r.head.n)
			out.emit(Remove(k))
			shortenBoth(l, r, k)

		case l.head.kind == AddKind && r.head.kind == KeepKind:
			k := min(l.head.Length(), r.head.n)
			head, rest := sliceAdd(l.head, k)
			out.emit(head)
			l.head = rest
			if l.head.Length() == 0 {
				l.advance()
			}
			r.head = r.head.withN(r.head.n - k)
			if r.head.n == 0 {
				r.advance()
			}

		case l.head.kind == AddKind && r.head.kind == RemoveKind:
			k := min(l.head.Length(), r.head.n)
			_, rest := sliceAdd(l.head, k)
			l.head = rest
			if l.head.Length() == 0 {
				l.advance()
			}
			r.head = r.head.withN(r.head.n - k)
			if r.head.n == 0 {
				r.advance()
			}

		default:
			panic("ot: compose: unreachable op pairing")
		}
	}

	return out.build(), nil
}

// shortenBoth subtracts k from both l.head and r.head (which must carry the
// same Kind: Keep/Keep or Keep/Remove), advancing whichever side reaches 0
// (or both, if equal).
func shortenBoth(l, r *cursor, k int) {
	l.head = l.head.withN(l.head.n - k)
	r.head = r.head.withN(r.head.n - k)
	if l.head.n == 0 {
		l.advance()
	}
	if r.head.n == 0 {
		r.advance()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
