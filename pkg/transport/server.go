package transport

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/texere-ot/ot/pkg/ot"
	"github.com/texere-ot/ot/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server upgrades HTTP connections to WebSocket and fans changesets out to
// every other client editing the same document, grounded on the teacher's
// WebSocketServer/ProtocolHandler pairing but collapsed to a single type
// since this spec has no SSE/read-only listener split to preserve.
type Server struct {
	docs *session.Manager

	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{} // docID -> set of clients
}

// NewServer creates a Server backed by the given document manager.
func NewServer(docs *session.Manager) *Server {
	return &Server{
		docs:    docs,
		clients: make(map[string]map[*wsClient]struct{}),
	}
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// ServeHTTP upgrades the request to a WebSocket connection, registers the
// caller against docID, sends a welcome frame with the current snapshot,
// and services the connection until it closes.
func (s *Server) ServeHTTP(docID, initialText string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade failed: %v", err)
		return
	}

	doc, _ := s.docs.Open(docID, initialText)

	client := &wsClient{id: uuid.New().String(), conn: conn, send: make(chan Message, 64)}
	s.register(docID, client)
	defer s.unregister(docID, client)

	welcome, err := NewMessage(MessageWelcome, docID, doc.Revision(), WelcomePayload{
		ClientID: client.id,
		Text:     doc.Text(),
		Revision: doc.Revision(),
	})
	if err == nil {
		client.send <- welcome
	}

	go s.writePump(client)
	s.readPump(docID, doc, client)
}

func (s *Server) register(docID string, c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[docID] == nil {
		s.clients[docID] = make(map[*wsClient]struct{})
	}
	s.clients[docID][c] = struct{}{}
}

func (s *Server) unregister(docID string, c *wsClient) {
	s.mu.Lock()
	if peers, ok := s.clients[docID]; ok {
		delete(peers, c)
		if len(peers) == 0 {
			delete(s.clients, docID)
		}
	}
	s.mu.Unlock()
	close(c.send)
	c.conn.Close()
}

func (s *Server) writePump(c *wsClient) {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) readPump(docID string, doc *session.Document, c *wsClient) {
	defer c.conn.Close()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Type != MessageOperation {
			continue
		}

		clientID, change, err := DecodeOperation(msg)
		if err != nil {
			c.send <- NewErrorMessage(docID, "bad_operation", err.Error())
			continue
		}

		// The client built change against msg.Revision, which other
		// clients may have already advanced past by the time this frame
		// is read — transform change against every changeset applied
		// since then before touching the document, exactly as
		// client.Client.ApplyServer does on the receiving side.
		transformed, _, revision, err := doc.ApplySince(msg.Revision, change)
		if err != nil {
			c.send <- NewErrorMessage(docID, "apply_failed", err.Error())
			continue
		}

		ack, err := NewMessage(MessageAck, docID, revision, nil)
		if err == nil {
			c.send <- ack
		}

		s.broadcast(docID, c, clientID, revision, transformed)
	}
}

func (s *Server) broadcast(docID string, from *wsClient, clientID string, revision int64, change ot.Changeset) {
	remote, err := NewOperationMessage(MessageRemoteOperation, docID, revision, clientID, change)
	if err != nil {
		log.Printf("transport: encoding broadcast: %v", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for peer := range s.clients[docID] {
		if peer == from {
			continue
		}
		select {
		case peer.send <- remote:
		default:
			log.Printf("transport: dropping broadcast to slow client %s", peer.id)
		}
	}
}
