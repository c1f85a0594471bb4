// Package web owns the token-gated HTTP/WebSocket surface of the
// bridge and wires the broadcaster, live-session registry and message
// handler together.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/live"
	"github.com/agentdeck/agentdeck/internal/realtime"
	"github.com/agentdeck/agentdeck/pkg/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the remote-access front door. Every route is namespaced
// under a per-process random token acting as a bearer credential;
// requests outside that namespace see a plain 404.
type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	token       string
	broadcaster *realtime.Broadcaster
	liveReg     *live.Registry
	handler     *MessageHandler
	callbacks   Callbacks

	httpServer *http.Server
}

// NewServer builds the server. The token is regenerated on every
// process start and never persisted.
func NewServer(cfg *config.Config, broadcaster *realtime.Broadcaster, liveReg *live.Registry, callbacks Callbacks, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		token:       uuid.NewString(),
		broadcaster: broadcaster,
		liveReg:     liveReg,
		handler:     NewMessageHandler(callbacks, broadcaster, liveReg),
		callbacks:   callbacks,
	}
}

// Token returns the per-process security token.
func (s *Server) Token() string {
	return s.token
}

// URL returns the token-prefixed base URL for the given listen address.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s/%s", s.cfg.Listen, s.token)
}

// Routes builds the router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Health stays unauthenticated and outside the limiter.
	r.Get("/health", s.handleHealth)

	r.Route("/"+s.token, func(r chi.Router) {
		window := time.Duration(s.cfg.RateLimit.TimeWindow) * time.Second
		if s.cfg.RateLimit.Enabled {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit.Max, window))
		}

		r.Get("/", s.handleDashboard)
		r.Get("/session/{id}", s.handleSessionPage)
		r.Get("/ws", s.handleWebSocket)
		r.Handle("/metrics", promhttp.Handler())

		r.Route("/api", func(r chi.Router) {
			r.Get("/sessions", s.handleListSessions)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Get("/sessions/{id}/history", s.handleHistory)

			// Mutating endpoints carry their own lower threshold.
			r.Group(func(r chi.Router) {
				if s.cfg.RateLimit.Enabled {
					r.Use(httprate.LimitByIP(s.cfg.RateLimit.MaxPost, window))
				}
				r.Post("/sessions/{id}/send", s.handleSend)
				r.Post("/sessions/{id}/interrupt", s.handleInterrupt)
			})
		})
	})

	return r
}

// Start begins listening. A failure to bind surfaces to the caller;
// later serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}

	s.httpServer = &http.Server{Handler: s.Routes()}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("web server stopped", "error", err)
		}
	}()

	s.logger.Info("web server listening", "addr", s.cfg.Listen, "url", s.URL())
	return nil
}

// Stop force-offlines every live session, disconnects all clients and
// shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	for _, id := range s.liveReg.OfflineAll() {
		s.broadcaster.BroadcastSessionOffline(id)
	}
	s.broadcaster.CloseAll()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown web server: %w", err)
	}
	return nil
}

// SetSessionLive marks a session visible to remote clients and
// synchronously broadcasts it so connected clients converge immediately.
func (s *Server) SetSessionLive(sessionID, agentSessionID string) {
	info := s.liveReg.SetLive(sessionID, agentSessionID)
	s.broadcaster.BroadcastSessionLive(wire.LiveSession{
		SessionID:      info.SessionID,
		AgentSessionID: info.AgentSessionID,
		EnabledAt:      info.EnabledAt,
	})
}

// SetSessionOffline removes a session from the live set and broadcasts
// the removal.
func (s *Server) SetSessionOffline(sessionID string) {
	if s.liveReg.SetOffline(sessionID) {
		s.broadcaster.BroadcastSessionOffline(sessionID)
	}
}

// Broadcaster exposes the broadcast operations to the desktop side.
func (s *Server) Broadcaster() *realtime.Broadcaster {
	return s.broadcaster
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := realtime.NewClient(uuid.NewString(), conn)
	s.broadcaster.AddClient(client)
	defer s.broadcaster.RemoveClient(client.ID())

	// A write failure reaps the client immediately instead of leaving a
	// dead connection registered until its queue fills.
	go func() {
		client.WriteLoop()
		s.broadcaster.RemoveClient(client.ID())
	}()

	// Initial sync: the live sessions list plus any in-flight auto-run
	// snapshots, so a client connecting mid-run misses nothing.
	if !client.Queue(wire.ServerEnvelope{
		Kind:    wire.KindSessionsList,
		Payload: s.handler.liveSessionList(),
	}) {
		return
	}
	for sessionID, state := range s.broadcaster.AutoRunSnapshots() {
		if !client.Queue(wire.ServerEnvelope{
			Kind:      wire.KindAutoRunState,
			SessionID: sessionID,
			Payload:   state,
		}) {
			return
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !s.handler.Handle(client, raw) {
			return
		}
	}
}
