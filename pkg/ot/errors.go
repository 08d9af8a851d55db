package ot

import "errors"

var (
	// ErrBadTextLength is returned by Apply when the input text's UTF-16
	// length does not equal the changeset's FromLength.
	ErrBadTextLength = errors.New("ot: text length does not match changeset's fromLength")

	// ErrUncomposable is returned by Compose when a's ToLength does not
	// equal b's FromLength.
	ErrUncomposable = errors.New("ot: a.toLength does not match b.fromLength")

	// ErrUncombinable is returned by Transform when a and b do not share
	// the same FromLength.
	ErrUncombinable = errors.New("ot: a.fromLength does not match b.fromLength")

	// ErrDecode is returned by Decode for malformed JSON, an unknown
	// operation "type", or a "value" of the wrong JSON type.
	ErrDecode = errors.New("ot: malformed changeset encoding")
)
