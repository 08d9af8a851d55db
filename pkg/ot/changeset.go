package ot

// chain appends op to seq, coalescing it with the last element when both
// share a Kind, keeping the sequence in canonical form. A zero-length op is
// dropped: seq is returned unchanged.
//
// Ported from the teacher's OperationBuilder.optimize/Retain/Insert/Delete
// merge rules (pkg/concordia/builder.go), generalized into a single
// append-site helper so every emit site in compose.go/transform.go shares
// one coalescing rule instead of three near-duplicated ones.
func chain(seq []Op, op Op) []Op {
	if op.Length() == 0 {
		return seq
	}
	if n := len(seq); n > 0 && seq[n-1].kind == op.kind {
		last := seq[n-1]
		switch op.kind {
		case KeepKind, RemoveKind:
			seq[n-1] = last.withN(last.n + op.n)
		case AddKind:
			seq[n-1] = Add(last.value + op.value)
		}
		return seq
	}
	return append(seq, op)
}

// Changeset is an immutable, canonical sequence of operations representing
// a transformation from one text to another. There is no mutation API:
// every Changeset is built once (via New, Decode, Compose, or Transform)
// and never changed afterward.
type Changeset struct {
	ops []Op
}

// New builds a canonical Changeset by folding chain over ops in order.
// Zero-length ops in the input are dropped.
func New(ops ...Op) Changeset {
	seq := make([]Op, 0, len(ops))
	for _, op := range ops {
		seq = chain(seq, op)
	}
	return Changeset{ops: seq}
}

// Ops returns the changeset's canonical operation sequence. The returned
// slice must not be mutated by the caller.
func (c Changeset) Ops() []Op { return c.ops }

// Len returns the number of operations in canonical form.
func (c Changeset) Len() int { return len(c.ops) }

// FromLength is the required input length: the sum of Keep/Remove lengths.
func (c Changeset) FromLength() int {
	n := 0
	for _, op := range c.ops {
		if op.kind != AddKind {
			n += op.Length()
		}
	}
	return n
}

// ToLength is the resulting output length: the sum of Keep/Add lengths.
func (c Changeset) ToLength() int {
	n := 0
	for _, op := range c.ops {
		if op.kind != RemoveKind {
			n += op.Length()
		}
	}
	return n
}

// IsIdentity reports whether c has no effect: empty, or a single Keep.
func (c Changeset) IsIdentity() bool {
	if len(c.ops) == 0 {
		return true
	}
	return len(c.ops) == 1 && c.ops[0].kind == KeepKind
}

// Equal reports whether c and other have identical canonical op sequences.
func (c Changeset) Equal(other Changeset) bool {
	if len(c.ops) != len(other.ops) {
		return false
	}
	for i, op := range c.ops {
		if op != other.ops[i] {
			return false
		}
	}
	return true
}

func (c Changeset) String() string {
	s := ""
	for i, op := range c.ops {
		if i > 0 {
			s += ", "
		}
		s += op.String()
	}
	return s
}

// builder accumulates ops through chain and is used internally by Apply's
// siblings (Compose, Transform) instead of repeatedly calling New, so that
// a single output slice grows across the whole two-cursor walk.
type builder struct {
	ops []Op
}

func (b *builder) emit(op Op) {
	b.ops = chain(b.ops, op)
}

func (b *builder) build() Changeset {
	return Changeset{ops: b.ops}
}
