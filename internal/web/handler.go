package web

import (
	"encoding/json"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/live"
	"github.com/agentdeck/agentdeck/internal/realtime"
	"github.com/agentdeck/agentdeck/pkg/wire"
)

// Callbacks are the desktop-side hooks inbound client commands dispatch
// to. Every slot is optional: an unset slot produces a deterministic
// negative reply instead of a panic, so a partially-initialized server
// degrades gracefully.
type Callbacks struct {
	ExecuteCommand   func(sessionID, tabID, text string) bool
	Interrupt        func(sessionID string) bool
	SwitchMode       func(sessionID, mode string) bool
	SelectSession    func(sessionID string) bool
	SelectTab        func(sessionID, tabID string) bool
	NewTab           func(sessionID string) string
	CloseTab         func(sessionID, tabID string) bool
	RenameTab        func(sessionID, tabID, name string) bool
	GetSessionDetail func(sessionID string) *wire.SessionData
	GetSessions      func() []wire.SessionData
	GetHistory       func(sessionID string) []domain.ParsedEvent
}

// MessageHandler routes inbound client messages to callback slots and
// writes the reply back through the client's send queue. It is a pure
// router: it owns no session state of its own.
type MessageHandler struct {
	callbacks   Callbacks
	broadcaster *realtime.Broadcaster
	liveReg     *live.Registry
}

// NewMessageHandler wires a handler to its collaborators.
func NewMessageHandler(callbacks Callbacks, broadcaster *realtime.Broadcaster, liveReg *live.Registry) *MessageHandler {
	return &MessageHandler{
		callbacks:   callbacks,
		broadcaster: broadcaster,
		liveReg:     liveReg,
	}
}

// Handle dispatches one raw inbound message. Returns false when the
// client's send queue is full and the connection should be dropped.
func (h *MessageHandler) Handle(client *realtime.Client, raw []byte) bool {
	var msg wire.ClientEnvelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		return client.Queue(wire.ServerEnvelope{
			Kind:    wire.KindError,
			Message: "invalid message",
		})
	}

	switch msg.Type {
	case wire.CommandSubscribe:
		client.SetScope(msg.SessionID)
		return h.reply(client, msg.ID, true, nil)

	case wire.CommandExecute:
		if h.callbacks.ExecuteCommand == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		ok := h.callbacks.ExecuteCommand(msg.SessionID, msg.TabID, msg.Text)
		if ok {
			// Echo what was typed so all mirrors of the session converge.
			h.broadcaster.BroadcastUserInput(msg.SessionID, msg.Text)
		}
		return h.reply(client, msg.ID, ok, nil)

	case wire.CommandInterrupt:
		if h.callbacks.Interrupt == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		return h.reply(client, msg.ID, h.callbacks.Interrupt(msg.SessionID), nil)

	case wire.CommandSwitchMode:
		if h.callbacks.SwitchMode == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		return h.reply(client, msg.ID, h.callbacks.SwitchMode(msg.SessionID, msg.Mode), nil)

	case wire.CommandSelectSession:
		if h.callbacks.SelectSession == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		return h.reply(client, msg.ID, h.callbacks.SelectSession(msg.SessionID), nil)

	case wire.CommandSelectTab:
		if h.callbacks.SelectTab == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		return h.reply(client, msg.ID, h.callbacks.SelectTab(msg.SessionID, msg.TabID), nil)

	case wire.CommandNewTab:
		if h.callbacks.NewTab == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		tabID := h.callbacks.NewTab(msg.SessionID)
		return h.reply(client, msg.ID, tabID != "", tabID)

	case wire.CommandCloseTab:
		if h.callbacks.CloseTab == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		return h.reply(client, msg.ID, h.callbacks.CloseTab(msg.SessionID, msg.TabID), nil)

	case wire.CommandRenameTab:
		if h.callbacks.RenameTab == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		return h.reply(client, msg.ID, h.callbacks.RenameTab(msg.SessionID, msg.TabID, msg.Name), nil)

	case wire.CommandGetSessionDetail:
		if h.callbacks.GetSessionDetail == nil {
			return h.reply(client, msg.ID, false, nil)
		}
		detail := h.callbacks.GetSessionDetail(msg.SessionID)
		return h.reply(client, msg.ID, detail != nil, detail)

	case wire.CommandGetSessions:
		return h.reply(client, msg.ID, true, h.liveSessionList())

	case wire.CommandGetLiveSessions:
		return h.reply(client, msg.ID, true, h.liveSessions())

	default:
		return client.Queue(wire.ServerEnvelope{
			Kind:    wire.KindError,
			Message: "unsupported message type: " + string(msg.Type),
		})
	}
}

func (h *MessageHandler) reply(client *realtime.Client, id string, ok bool, result any) bool {
	return client.Queue(wire.ServerEnvelope{
		Kind:    wire.KindReply,
		Payload: wire.Reply{ID: id, OK: ok, Result: result},
	})
}

// liveSessionList projects the authoritative sessions through the live
// registry: sessions not marked live never reach a remote client.
func (h *MessageHandler) liveSessionList() []wire.SessionData {
	if h.callbacks.GetSessions == nil {
		return []wire.SessionData{}
	}
	all := h.callbacks.GetSessions()
	out := make([]wire.SessionData, 0, len(all))
	for _, s := range all {
		if h.liveReg.IsLive(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

func (h *MessageHandler) liveSessions() []wire.LiveSession {
	infos := h.liveReg.List()
	out := make([]wire.LiveSession, len(infos))
	for i, info := range infos {
		out[i] = wire.LiveSession{
			SessionID:      info.SessionID,
			AgentSessionID: info.AgentSessionID,
			EnabledAt:      info.EnabledAt,
		}
	}
	return out
}
