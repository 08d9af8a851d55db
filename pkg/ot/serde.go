package ot

import "encoding/json"

// wireOp is the JSON shape of a single operation: {"type": "keep"|"add"|
// "remove", "value": <int>|<string>}.
type wireOp struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// wireChangeset is the JSON shape of a Changeset: {"operations": [...]}.
type wireChangeset struct {
	Operations []wireOp `json:"operations"`
}

// Encode serializes c to its canonical JSON form.
func Encode(c Changeset) ([]byte, error) {
	wire := wireChangeset{Operations: make([]wireOp, 0, len(c.ops))}
	for _, op := range c.ops {
		w := wireOp{Type: op.kind.String()}
		var raw []byte
		var err error
		switch op.kind {
		case AddKind:
			raw, err = json.Marshal(op.value)
		default:
			raw, err = json.Marshal(op.n)
		}
		if err != nil {
			return nil, err
		}
		w.Value = raw
		wire.Operations = append(wire.Operations, w)
	}
	return json.Marshal(wire)
}

// Decode parses a changeset from its JSON wire form, canonicalizing via the
// same constructor Apply/Compose/Transform use — so a wire form with
// adjacent same-kind operations, or a zero-valued operation, decodes to the
// same canonical Changeset New would build from the same list. Fails with
// ErrDecode for malformed JSON, an unknown "type", or a "value" of the
// wrong JSON type for its "type".
func Decode(data []byte) (Changeset, error) {
	var wire wireChangeset
	if err := json.Unmarshal(data, &wire); err != nil {
		return Changeset{}, wrapDecode(err)
	}

	ops := make([]Op, 0, len(wire.Operations))
	for _, w := range wire.Operations {
		switch w.Type {
		case "keep":
			n, err := decodeInt(w.Value)
			if err != nil {
				return Changeset{}, err
			}
			ops = append(ops, Keep(n))
		case "remove":
			n, err := decodeInt(w.Value)
			if err != nil {
				return Changeset{}, err
			}
			ops = append(ops, Remove(n))
		case "add":
			var s string
			if err := json.Unmarshal(w.Value, &s); err != nil {
				return Changeset{}, wrapDecode(err)
			}
			ops = append(ops, Add(s))
		default:
			return Changeset{}, ErrDecode
		}
	}

	return New(ops...), nil
}

func decodeInt(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, wrapDecode(err)
	}
	if n < 0 {
		return 0, ErrDecode
	}
	return n, nil
}

func wrapDecode(err error) error {
	return &decodeError{err: err}
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return ErrDecode.Error() + ": " + e.err.Error() }
func (e *decodeError) Unwrap() error { return ErrDecode }
