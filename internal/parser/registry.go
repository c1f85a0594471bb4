package parser

import "sync"

// Registry maps agent ids to adapter instances. Register overwrites, so
// re-registering an agent is idempotent; Get returns nil for unknown ids
// so callers can fail soft.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]AgentOutputParser
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]AgentOutputParser)}
}

// Register installs the adapter under its own agent id.
func (r *Registry) Register(p AgentOutputParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[p.AgentID()] = p
}

// Get resolves an adapter. Unknown ids return nil.
func (r *Registry) Get(agentID string) AgentOutputParser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[agentID]
}

// IDs lists the registered agent ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	return ids
}

// Clear removes every adapter. Intended for test isolation.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[string]AgentOutputParser)
}
