package realtime

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/agentdeck/agentdeck/pkg/wire"
)

const outboundBufferSize = 64

// Client is one accepted WebSocket connection. Writes go through a
// bounded queue drained by WriteLoop so a slow peer never blocks the
// broadcaster.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan wire.ServerEnvelope
	done chan struct{}

	mu     sync.RWMutex
	scope  string
	closed bool

	close sync.Once
}

// NewClient wraps an accepted connection.
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan wire.ServerEnvelope, outboundBufferSize),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// SetScope restricts delivery to one session id. Empty means all
// sessions.
func (c *Client) SetScope(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = sessionID
}

// InScope reports whether a broadcast for sessionID should reach this
// client. Envelopes without a session id always pass.
func (c *Client) InScope(sessionID string) bool {
	if sessionID == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scope == "" || c.scope == sessionID
}

// Queue enqueues an envelope without blocking. Returns false when the
// queue is full or the client is closed, which the broadcaster treats
// as grounds for disconnect.
func (c *Client) Queue(msg wire.ServerEnvelope) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WriteLoop drains the send queue onto the connection. Exits on the
// first transport error or when the client is closed.
func (c *Client) WriteLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// Close shuts the connection exactly once. The send channel stays open:
// Queue refuses further envelopes through the closed flag, so a
// broadcast racing a disconnect can never send on a closed channel.
func (c *Client) Close() {
	c.close.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
