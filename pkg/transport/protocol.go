// Package transport carries changesets between collaborators over
// WebSocket connections, wrapping them in a small JSON envelope and
// wiring package client/session into a broadcasting server.
//
// Grounded on the teacher's pkg/transport/protocol.go (ProtocolMessage /
// MessageType catalogue, trimmed to the subset this spec's document model
// needs) and pkg/transport/websocket.go (gorilla/websocket dial/upgrade
// and read/write pump structure).
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/texere-ot/ot/pkg/ot"
)

// MessageType identifies the kind of payload carried by a Message.
type MessageType string

const (
	// MessageWelcome is sent by the server immediately after a connection
	// is accepted, carrying the document's current snapshot.
	MessageWelcome MessageType = "welcome"
	// MessageOperation carries a client-originated changeset.
	MessageOperation MessageType = "operation"
	// MessageRemoteOperation carries a changeset broadcast from another
	// client, already transformed (via ot.Transform, server-side, in
	// Server.readPump) against every changeset applied since the sender's
	// declared revision, so it applies cleanly to a recipient that has
	// received every message up to this one's Revision-1.
	MessageRemoteOperation MessageType = "remote_operation"
	// MessageAck acknowledges a previously-sent MessageOperation.
	MessageAck MessageType = "ack"
	// MessageError reports a protocol or application-level failure.
	MessageError MessageType = "error"
)

// Message is the wire envelope for every frame exchanged over a
// connection. Data holds a type-specific payload, deferred with
// json.RawMessage the way the teacher's ProtocolMessage defers its Data
// field.
type Message struct {
	Type      MessageType     `json:"type"`
	DocID     string          `json:"doc_id,omitempty"`
	Revision  int64           `json:"revision,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	ErrorCode string          `json:"error_code,omitempty"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
}

// WelcomePayload is the Data of a MessageWelcome frame.
type WelcomePayload struct {
	ClientID string `json:"client_id"`
	Text     string `json:"text"`
	Revision int64  `json:"revision"`
}

// OperationPayload is the Data of MessageOperation/MessageRemoteOperation
// frames.
type OperationPayload struct {
	ClientID  string `json:"client_id,omitempty"`
	Operation []byte `json:"-"`
}

// MarshalJSON encodes the changeset using package ot's own wire format
// rather than nesting it opaquely, so a non-Go client only ever needs to
// speak one JSON schema for a changeset.
func (p OperationPayload) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage = p.Operation
	if raw == nil {
		raw = json.RawMessage("null")
	}
	return json.Marshal(struct {
		ClientID  string          `json:"client_id,omitempty"`
		Operation json.RawMessage `json:"operation"`
	}{ClientID: p.ClientID, Operation: raw})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *OperationPayload) UnmarshalJSON(data []byte) error {
	var aux struct {
		ClientID  string          `json:"client_id,omitempty"`
		Operation json.RawMessage `json:"operation"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ClientID = aux.ClientID
	p.Operation = []byte(aux.Operation)
	return nil
}

// NewMessage builds a Message, marshaling payload into Data.
func NewMessage(msgType MessageType, docID string, revision int64, payload interface{}) (Message, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("transport: encoding %s payload: %w", msgType, err)
		}
		raw = b
	}
	return Message{Type: msgType, DocID: docID, Revision: revision, Data: raw}, nil
}

// NewOperationMessage builds a MessageOperation/MessageRemoteOperation
// frame carrying change in package ot's wire encoding.
func NewOperationMessage(msgType MessageType, docID string, revision int64, clientID string, change ot.Changeset) (Message, error) {
	encoded, err := ot.Encode(change)
	if err != nil {
		return Message{}, fmt.Errorf("transport: encoding changeset: %w", err)
	}
	return NewMessage(msgType, docID, revision, OperationPayload{ClientID: clientID, Operation: encoded})
}

// DecodeOperation extracts the changeset carried by an operation-shaped
// Message.
func DecodeOperation(m Message) (clientID string, change ot.Changeset, err error) {
	var payload OperationPayload
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		return "", ot.Changeset{}, fmt.Errorf("transport: decoding operation payload: %w", err)
	}
	change, err = ot.Decode(payload.Operation)
	if err != nil {
		return "", ot.Changeset{}, err
	}
	return payload.ClientID, change, nil
}

// NewErrorMessage builds a MessageError frame.
func NewErrorMessage(docID, code, msg string) Message {
	return Message{Type: MessageError, DocID: docID, ErrorCode: code, ErrorMsg: msg}
}
