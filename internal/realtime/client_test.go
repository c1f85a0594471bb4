package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentdeck/agentdeck/pkg/wire"
)

func TestClient_QueueAfterClose(t *testing.T) {
	c := NewClient("c1", nil)
	c.Close()

	// A broadcast can race a disconnect: publish snapshots the client
	// list before the removal lands. A late Queue must refuse the
	// envelope, never panic.
	if c.Queue(wire.ServerEnvelope{Kind: wire.KindUserInput}) {
		t.Error("Queue() after Close = true, want false")
	}
	// Close is idempotent and Queue stays refusing.
	c.Close()
	if c.Queue(wire.ServerEnvelope{Kind: wire.KindUserInput}) {
		t.Error("Queue() after second Close = true, want false")
	}
}

func TestClient_WriteLoopExitsOnClose(t *testing.T) {
	c := NewClient("c1", nil)

	done := make(chan struct{})
	go func() {
		c.WriteLoop()
		close(done)
	}()

	c.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WriteLoop did not exit after Close")
	}
}

func TestClient_WriteLoopExitsOnWriteError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	accepted := make(chan *Client, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- NewClient("c1", conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}

	var c *Client
	select {
	case c = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
	}

	// The peer vanishes without a close handshake; writes must start
	// failing and terminate the loop.
	peer.Close()

	done := make(chan struct{})
	go func() {
		c.WriteLoop()
		close(done)
	}()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("WriteLoop did not exit after peer closed the connection")
		case <-time.After(5 * time.Millisecond):
			c.Queue(wire.ServerEnvelope{Kind: wire.KindThemeChange, Payload: "dark"})
		}
	}
}
