package transport

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/texere-ot/ot/pkg/client"
	"github.com/texere-ot/ot/pkg/ot"
)

// Conn is the client side of a document connection: it owns a
// client.Client reconciliation state machine and a WebSocket connection,
// and translates between the two, mirroring the teacher's
// WebSocketTransport.Connect/receiveLoop pairing.
type Conn struct {
	docID string
	conn  *websocket.Conn
	rc    *client.Client

	incoming chan string
	errs     chan error
}

// Dial connects to a transport.Server endpoint and blocks until the
// server's welcome frame arrives, seeding the local client.Client with the
// document's current text and revision.
func Dial(ctx context.Context, url, docID string) (*Conn, error) {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial: %w", err)
	}

	var welcome Message
	if err := conn.ReadJSON(&welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: reading welcome: %w", err)
	}
	if welcome.Type != MessageWelcome {
		conn.Close()
		return nil, fmt.Errorf("transport: expected welcome, got %s", welcome.Type)
	}

	var payload WelcomePayload
	if err := decodeData(welcome.Data, &payload); err != nil {
		conn.Close()
		return nil, err
	}

	c := &Conn{
		docID:    docID,
		conn:     conn,
		rc:       client.New(payload.Text),
		incoming: make(chan string, 16),
		errs:     make(chan error, 1),
	}
	go c.readLoop()
	return c, nil
}

// Text returns the connection's current local document text.
func (c *Conn) Text() string { return c.rc.Text() }

// Edit applies a local changeset, advancing the reconciliation state
// machine. The changeset is sent to the server only if nothing was
// already in flight — otherwise it is buffered until the pending
// operation is acknowledged, exactly like client.Client.ApplyLocal.
func (c *Conn) Edit(change ot.Changeset) (string, error) {
	wasIdle := c.rc.State() == client.Synchronized

	text, err := c.rc.ApplyLocal(change)
	if err != nil {
		return "", err
	}
	if wasIdle {
		c.flush()
	}
	return text, nil
}

// Updates returns a channel of the connection's local text after every
// change, whether locally or remotely originated.
func (c *Conn) Updates() <-chan string { return c.incoming }

// Errs returns a channel that receives a single error when the read loop
// terminates.
func (c *Conn) Errs() <-chan error { return c.errs }

func (c *Conn) flush() {
	out, ok := c.rc.Outgoing()
	if !ok {
		return
	}
	msg, err := NewOperationMessage(MessageOperation, c.docID, int64(c.rc.Revision()), "", out)
	if err != nil {
		return
	}
	c.conn.WriteJSON(msg)
}

func (c *Conn) readLoop() {
	defer close(c.incoming)

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.errs <- err
			return
		}

		switch msg.Type {
		case MessageAck:
			if err := c.rc.Ack(); err != nil {
				c.errs <- err
				return
			}
			c.flush()
			c.incoming <- c.rc.Text()
		case MessageRemoteOperation:
			_, change, err := DecodeOperation(msg)
			if err != nil {
				c.errs <- err
				return
			}
			text, err := c.rc.ApplyServer(int(msg.Revision)-1, change)
			if err != nil {
				c.errs <- err
				return
			}
			c.incoming <- text
		case MessageError:
			c.errs <- fmt.Errorf("transport: server error %s: %s", msg.ErrorCode, msg.ErrorMsg)
		}
	}
}

// Close closes the underlying WebSocket connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
