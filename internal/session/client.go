package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aneedalie/meili/internal/models"
)

// Client is one live connection's session. It belongs to at most one room
// at a time; the room field is set only while a presence record for this
// connection exists in that room's occupant map.
type Client struct {
	ID   string
	Conn *websocket.Conn

	// AuthUserID is the identity resolved from a trip token, when the
	// server runs with token checks enabled. Empty means trust the join
	// payload.
	AuthUserID string

	mu   sync.Mutex
	hook func(models.WSFrame)

	roomMu sync.Mutex
	room   string
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), Conn: conn}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}

// Room returns the id of the room this connection has joined, or "".
func (c *Client) Room() string {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()
	return c.room
}

func (c *Client) setRoom(id string) {
	c.roomMu.Lock()
	c.room = id
	c.roomMu.Unlock()
}
