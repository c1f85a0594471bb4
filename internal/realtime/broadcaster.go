// Package realtime fans normalized session state out to connected
// WebSocket clients.
package realtime

import (
	"sync"

	"github.com/agentdeck/agentdeck/internal/metrics"
	"github.com/agentdeck/agentdeck/pkg/wire"
)

// Broadcaster delivers wire envelopes to every connected client, or only
// to clients scoped to a given session. The exposed operations are
// intentionally narrow so the wire protocol stays closed.
//
// Delivery is fire-and-forget per client: each send is a non-blocking
// enqueue, and a client whose queue is full is disconnected rather than
// allowed to stall its siblings.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]*Client

	// autoRun keeps the latest batch-run state per session, but only
	// while the run is active, so reconnecting clients can resync.
	autoRun map[string]wire.AutoRunState
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]*Client),
		autoRun: make(map[string]wire.AutoRunState),
	}
}

// AddClient registers a connection for delivery.
func (b *Broadcaster) AddClient(client *Client) {
	b.mu.Lock()
	b.clients[client.ID()] = client
	b.mu.Unlock()
	metrics.ConnectedClients.Inc()
}

// RemoveClient drops a connection. Safe to call twice; the client is
// closed on the first call.
func (b *Broadcaster) RemoveClient(clientID string) {
	b.mu.Lock()
	client, ok := b.clients[clientID]
	if ok {
		delete(b.clients, clientID)
	}
	b.mu.Unlock()

	if ok {
		client.Close()
		metrics.ConnectedClients.Dec()
	}
}

// ClientCount reports connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// CloseAll disconnects every client. Called on server shutdown.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	clients := b.clients
	b.clients = make(map[string]*Client)
	b.mu.Unlock()

	for _, client := range clients {
		client.Close()
		metrics.ConnectedClients.Dec()
	}
}

// BroadcastSessionLive announces a session becoming visible.
func (b *Broadcaster) BroadcastSessionLive(info wire.LiveSession) {
	b.publish(wire.ServerEnvelope{
		Kind:      wire.KindSessionLive,
		SessionID: info.SessionID,
		Payload:   info,
	})
}

// BroadcastSessionOffline announces a session leaving the live set.
func (b *Broadcaster) BroadcastSessionOffline(sessionID string) {
	b.publish(wire.ServerEnvelope{
		Kind:      wire.KindSessionOffline,
		SessionID: sessionID,
	})
}

// BroadcastSessionsList pushes the full client-facing sessions list.
func (b *Broadcaster) BroadcastSessionsList(sessions []wire.SessionData) {
	b.publish(wire.ServerEnvelope{
		Kind:    wire.KindSessionsList,
		Payload: sessions,
	})
}

// BroadcastSessionState pushes one session's state delta.
func (b *Broadcaster) BroadcastSessionState(sessionID string, data wire.SessionData) {
	b.publish(wire.ServerEnvelope{
		Kind:      wire.KindSessionState,
		SessionID: sessionID,
		Payload:   data,
	})
}

// BroadcastTabsChange pushes one session's tab layout.
func (b *Broadcaster) BroadcastTabsChange(sessionID string, tabs []wire.TabData) {
	b.publish(wire.ServerEnvelope{
		Kind:      wire.KindTabsChange,
		SessionID: sessionID,
		Payload:   tabs,
	})
}

// BroadcastThemeChange pushes the active theme name to every client.
func (b *Broadcaster) BroadcastThemeChange(theme string) {
	b.publish(wire.ServerEnvelope{
		Kind:    wire.KindThemeChange,
		Payload: theme,
	})
}

// BroadcastCustomCommands pushes the discoverable custom command names.
func (b *Broadcaster) BroadcastCustomCommands(commands []string) {
	b.publish(wire.ServerEnvelope{
		Kind:    wire.KindCustomCommands,
		Payload: commands,
	})
}

// BroadcastAutoRunState pushes batch-run progress and retains the latest
// state per session while the run is active. The snapshot is purged the
// moment the run stops, so stale progress never outlives a run.
func (b *Broadcaster) BroadcastAutoRunState(sessionID string, state wire.AutoRunState) {
	b.mu.Lock()
	if state.IsRunning {
		b.autoRun[sessionID] = state
	} else {
		delete(b.autoRun, sessionID)
	}
	b.mu.Unlock()

	b.publish(wire.ServerEnvelope{
		Kind:      wire.KindAutoRunState,
		SessionID: sessionID,
		Payload:   state,
	})
}

// AutoRunSnapshot returns the retained state for a session, if a run is
// active.
func (b *Broadcaster) AutoRunSnapshot(sessionID string) (wire.AutoRunState, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	state, ok := b.autoRun[sessionID]
	return state, ok
}

// AutoRunSnapshots returns all retained run states keyed by session id.
func (b *Broadcaster) AutoRunSnapshots() map[string]wire.AutoRunState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]wire.AutoRunState, len(b.autoRun))
	for id, state := range b.autoRun {
		out[id] = state
	}
	return out
}

// BroadcastUserInput echoes user-submitted text to the session's
// viewers so all mirrors converge on what was typed.
func (b *Broadcaster) BroadcastUserInput(sessionID, text string) {
	b.publish(wire.ServerEnvelope{
		Kind:      wire.KindUserInput,
		SessionID: sessionID,
		Payload:   text,
	})
}

// publish fans one envelope out to all in-scope clients. One client's
// failure or slowness must not block delivery to the others.
func (b *Broadcaster) publish(msg wire.ServerEnvelope) {
	b.mu.RLock()
	clients := make([]*Client, 0, len(b.clients))
	for _, client := range b.clients {
		clients = append(clients, client)
	}
	b.mu.RUnlock()

	metrics.BroadcastsTotal.WithLabelValues(string(msg.Kind)).Inc()

	for _, client := range clients {
		if !client.InScope(msg.SessionID) {
			continue
		}
		if client.Queue(msg) {
			continue
		}
		metrics.DroppedClients.Inc()
		b.RemoveClient(client.ID())
	}
}
