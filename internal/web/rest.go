package web

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentdeck/agentdeck/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type sendRequest struct {
	TabID string `json:"tabId,omitempty"`
	Text  string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.handler.liveSessionList())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.liveReg.IsLive(id) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	if s.callbacks.GetSessionDetail == nil {
		writeError(w, http.StatusServiceUnavailable, "session detail unavailable", "")
		return
	}
	detail := s.callbacks.GetSessionDetail(id)
	if detail == nil {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.liveReg.IsLive(id) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	if s.callbacks.GetHistory == nil {
		writeJSON(w, http.StatusOK, []domain.ParsedEvent{})
		return
	}
	events := s.callbacks.GetHistory(id)
	if events == nil {
		events = []domain.ParsedEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.liveReg.IsLive(id) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required", "")
		return
	}

	if s.callbacks.ExecuteCommand == nil {
		writeError(w, http.StatusServiceUnavailable, "command execution unavailable", "")
		return
	}
	if !s.callbacks.ExecuteCommand(id, req.TabID, req.Text) {
		writeError(w, http.StatusConflict, "command rejected", "")
		return
	}

	s.broadcaster.BroadcastUserInput(id, req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInterrupt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.liveReg.IsLive(id) {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	if s.callbacks.Interrupt == nil {
		writeError(w, http.StatusServiceUnavailable, "interrupt unavailable", "")
		return
	}
	if !s.callbacks.Interrupt(id) {
		writeError(w, http.StatusConflict, "interrupt rejected", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// The dashboard and session pages are intentionally minimal shells: the
// session chrome itself is owned by the desktop application.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><title>agentdeck</title><h1>agentdeck</h1><p>%d live session(s). Connect via <code>/%s/ws</code>.</p>`,
		len(s.liveReg.List()), s.token)
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.liveReg.IsLive(id) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><title>agentdeck session</title><h1>Session %s</h1>`, html.EscapeString(id))
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message, details string) {
	resp := errorResponse{Error: message}
	if details != "" {
		resp.Details = details
	}
	writeJSON(w, code, resp)
}
