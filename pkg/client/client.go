// Package client implements the client half of the operational-transform
// client/server reconciliation loop: the classic ot.js state machine of
// Synchronized / AwaitingConfirm / AwaitingWithBuffer, built entirely on
// top of package ot's public Changeset/Apply/Compose/Transform surface.
//
// This is an external collaborator in the sense of spec.md §1: the core
// algebra has no notion of a server, a revision number, or in-flight
// operations. Everything here is reconciliation bookkeeping layered above
// it, ported from the teacher's pkg/ot/client.go (itself a port of ot.js's
// Client).
package client

import (
	"errors"

	"github.com/texere-ot/ot/pkg/ot"
)

// ErrOutOfSequence is returned by ApplyServer when the given revision does
// not match the client's expected revision.
var ErrOutOfSequence = errors.New("client: server operation revision out of sequence")

// ErrNoPendingAck is returned by Ack when there is no in-flight operation
// to acknowledge.
var ErrNoPendingAck = errors.New("client: no in-flight operation to acknowledge")

// State is one of the three states of the ot.js client reconciliation
// state machine.
type State int

const (
	// Synchronized means the client's document matches the server's.
	Synchronized State = iota
	// AwaitingConfirm means a changeset was sent and not yet acknowledged.
	AwaitingConfirm
	// AwaitingWithBuffer means a changeset is in flight and a second local
	// edit has been composed into a buffer behind it.
	AwaitingWithBuffer
)

// Client tracks one collaborator's view of a single document: its local
// text, the server revision it has seen, and any changesets sent to the
// server but not yet acknowledged.
type Client struct {
	state    State
	revision int
	text     string
	inFlight ot.Changeset
	buffer   ot.Changeset
}

// New creates a Client starting Synchronized at revision 0 with the given
// initial text.
func New(initialText string) *Client {
	return &Client{state: Synchronized, text: initialText}
}

// State reports the client's current reconciliation state.
func (c *Client) State() State { return c.state }

// Revision reports the last server revision this client has applied.
func (c *Client) Revision() int { return c.revision }

// Text reports the client's current document text.
func (c *Client) Text() string { return c.text }

// ApplyLocal applies a locally-originated changeset, advancing the
// reconciliation state machine. If an operation is already in flight, the
// new changeset is composed into (or becomes) the buffer rather than sent
// immediately — mirrors ApplyClient.
func (c *Client) ApplyLocal(change ot.Changeset) (string, error) {
	newText, err := ot.Apply(change, c.text)
	if err != nil {
		return "", err
	}

	switch c.state {
	case Synchronized:
		c.state = AwaitingConfirm
		c.inFlight = change
	case AwaitingConfirm:
		c.state = AwaitingWithBuffer
		c.buffer = change
	case AwaitingWithBuffer:
		composed, err := ot.Compose(c.buffer, change)
		if err != nil {
			return "", err
		}
		c.buffer = composed
	}

	c.text = newText
	return c.text, nil
}

// ApplyServer applies a changeset broadcast by the server at the given
// revision, transforming it against any in-flight/buffered local
// changesets so the three-way reconciliation converges — mirrors
// ApplyServer.
func (c *Client) ApplyServer(revision int, change ot.Changeset) (string, error) {
	if revision != c.revision {
		return "", ErrOutOfSequence
	}

	transformed := change
	var err error

	switch c.state {
	case Synchronized:
		// Nothing in flight: apply as-is.
	case AwaitingConfirm:
		c.inFlight, transformed, err = ot.Transform(c.inFlight, change)
		if err != nil {
			return "", err
		}
	case AwaitingWithBuffer:
		var pastInFlight ot.Changeset
		c.inFlight, pastInFlight, err = ot.Transform(c.inFlight, change)
		if err != nil {
			return "", err
		}
		c.buffer, transformed, err = ot.Transform(c.buffer, pastInFlight)
		if err != nil {
			return "", err
		}
	}

	newText, err := ot.Apply(transformed, c.text)
	if err != nil {
		return "", err
	}

	c.text = newText
	c.revision++
	return c.text, nil
}

// Ack records the server's acknowledgment of the in-flight changeset,
// promoting the buffer (if any) to in-flight — mirrors ServerAck.
func (c *Client) Ack() error {
	if c.state != AwaitingConfirm && c.state != AwaitingWithBuffer {
		return ErrNoPendingAck
	}

	c.revision++

	switch c.state {
	case AwaitingConfirm:
		c.state = Synchronized
		c.inFlight = ot.Changeset{}
	case AwaitingWithBuffer:
		c.state = AwaitingConfirm
		c.inFlight = c.buffer
		c.buffer = ot.Changeset{}
	}

	return nil
}

// Outgoing returns the changeset that should be sent to the server next,
// and whether there is one — mirrors OutgoingOperation.
func (c *Client) Outgoing() (ot.Changeset, bool) {
	switch c.state {
	case AwaitingConfirm, AwaitingWithBuffer:
		return c.inFlight, true
	default:
		return ot.Changeset{}, false
	}
}
