// Package metrics exposes the bridge's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectedClients tracks currently open WebSocket connections.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agentdeck_connected_clients",
		Help: "Number of connected WebSocket clients.",
	})

	// BroadcastsTotal counts outbound broadcast envelopes by kind.
	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentdeck_broadcasts_total",
		Help: "Broadcast envelopes fanned out, by envelope kind.",
	}, []string{"kind"})

	// DroppedClients counts clients disconnected for a full send queue.
	DroppedClients = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdeck_dropped_clients_total",
		Help: "Clients disconnected because their send queue was full.",
	})

	// ParsedLines counts normalized agent output lines by agent and
	// resulting event type.
	ParsedLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentdeck_parsed_lines_total",
		Help: "Agent output lines normalized, by agent and event type.",
	}, []string{"agent", "type"})
)
