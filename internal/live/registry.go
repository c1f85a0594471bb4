// Package live tracks which sessions are currently visible to remote
// web clients.
package live

import (
	"sort"
	"sync"
	"time"
)

// SessionInfo is one live-session entry. AgentSessionID is the agent's
// own continuity id, distinct from the internal session id.
type SessionInfo struct {
	SessionID      string
	AgentSessionID string
	EnabledAt      time.Time
}

// Registry is the process-wide live-session set. SetLive overwrites, so
// marking a session live twice keeps exactly one entry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]SessionInfo
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]SessionInfo)}
}

// SetLive marks the session visible to remote clients.
func (r *Registry) SetLive(sessionID, agentSessionID string) SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := SessionInfo{
		SessionID:      sessionID,
		AgentSessionID: agentSessionID,
		EnabledAt:      time.Now().UTC(),
	}
	r.sessions[sessionID] = info
	return info
}

// SetOffline removes the session. Reports whether it was live.
func (r *Registry) SetOffline(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	return ok
}

// IsLive reports whether the session is visible to remote clients.
func (r *Registry) IsLive(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// Get returns the entry for a session.
func (r *Registry) Get(sessionID string) (SessionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.sessions[sessionID]
	return info, ok
}

// List returns all live sessions ordered by session id.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, info := range r.sessions {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// OfflineAll clears the registry and returns the ids that were live.
// Called on server shutdown so every session is force-offlined.
func (r *Registry) OfflineAll() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	r.sessions = make(map[string]SessionInfo)
	return ids
}
