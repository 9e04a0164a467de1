package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cafeflow/backend/internal/auth"
	"github.com/cafeflow/backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Outbound buffer per session.
	sendBufferSize = 256
)

// Client is one connection session: it binds a websocket connection to a
// principal and to the session's group memberships in the hub's registry.
type Client struct {
	ID string

	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.Event

	// Principal resolved at connect time; anonymous on the public channel.
	Principal auth.Principal

	// handleMessages is true for public order-tracking sessions, which
	// accept joinOrder requests. Staff sessions send nothing meaningful.
	handleMessages bool

	// sendMu guards Send against a close racing a delivery attempt. A
	// broadcast snapshots members before fan-out, so it can still hold
	// this session after DropSession ran; the flag turns that late
	// delivery into a silent drop instead of a send on a closed channel.
	sendMu sync.Mutex
	closed bool

	logger *slog.Logger
}

// NewStaffClient creates a session for the authenticated staff channel.
func NewStaffClient(hub *Hub, conn *websocket.Conn, principal auth.Principal, logger *slog.Logger) *Client {
	return newClient(hub, conn, principal, false, logger)
}

// NewOrderClient creates an anonymous session for the public
// order-tracking channel.
func NewOrderClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return newClient(hub, conn, auth.Anonymous(), true, logger)
}

func newClient(hub *Hub, conn *websocket.Conn, principal auth.Principal, handleMessages bool, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:             id,
		Hub:            hub,
		Conn:           conn,
		Send:           make(chan domain.Event, sendBufferSize),
		Principal:      principal,
		handleMessages: handleMessages,
		logger:         logger.With("session_id", id),
	}
}

// CloseSend closes the Send channel exactly once. Safe to call
// concurrently with enqueue.
func (c *Client) CloseSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// enqueue performs a single non-blocking delivery attempt. A full buffer
// means the peer is too slow to keep up; the event is dropped and the next
// state change (or a client refresh) is the recovery path. Delivery to a
// session that already disconnected is dropped the same way.
func (c *Client) enqueue(event domain.Event) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		c.logger.Debug("dropping event for closed session",
			"event_type", event.Type,
		)
		return
	}

	select {
	case c.Send <- event:
	default:
		c.logger.Warn("send buffer full, dropping event",
			"event_type", event.Type,
		)
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		if c.handleMessages {
			c.handleIncomingMessage(message)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleIncomingMessage processes messages received on the public channel.
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case "joinOrder":
		c.handleJoinOrder(msg.Payload)

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

// handleJoinOrder subscribes the session to an order's channel. The server
// sends no acknowledgment either way.
func (c *Client) handleJoinOrder(payload json.RawMessage) {
	var orderID string
	if err := json.Unmarshal(payload, &orderID); err != nil {
		c.logger.Warn("failed to unmarshal joinOrder payload", "error", err)
		return
	}

	c.Hub.JoinOrder(c, orderID)
}
