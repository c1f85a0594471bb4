// Package wire defines the JSON envelopes exchanged with remote web
// clients. These are read-only projections shaped for transmission; the
// broadcast layer never mutates the authoritative state behind them.
package wire

import "time"

// ServerMessageKind discriminates outbound envelopes.
type ServerMessageKind string

const (
	KindSessionLive    ServerMessageKind = "session_live"
	KindSessionOffline ServerMessageKind = "session_offline"
	KindSessionsList   ServerMessageKind = "sessions_list"
	KindSessionState   ServerMessageKind = "session_state"
	KindTabsChange     ServerMessageKind = "tabs_change"
	KindThemeChange    ServerMessageKind = "theme_change"
	KindCustomCommands ServerMessageKind = "custom_commands"
	KindAutoRunState   ServerMessageKind = "auto_run_state"
	KindUserInput      ServerMessageKind = "user_input"
	KindReply          ServerMessageKind = "reply"
	KindError          ServerMessageKind = "error"
)

// ServerEnvelope is one outbound broadcast or reply.
type ServerEnvelope struct {
	Kind      ServerMessageKind `json:"kind"`
	SessionID string            `json:"sessionId,omitempty"`
	Payload   any               `json:"payload,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// ClientCommand discriminates inbound client messages.
type ClientCommand string

const (
	CommandSubscribe        ClientCommand = "subscribe"
	CommandExecute          ClientCommand = "execute_command"
	CommandInterrupt        ClientCommand = "interrupt"
	CommandSwitchMode       ClientCommand = "switch_mode"
	CommandSelectSession    ClientCommand = "select_session"
	CommandSelectTab        ClientCommand = "select_tab"
	CommandNewTab           ClientCommand = "new_tab"
	CommandCloseTab         ClientCommand = "close_tab"
	CommandRenameTab        ClientCommand = "rename_tab"
	CommandGetSessionDetail ClientCommand = "get_session_detail"
	CommandGetSessions      ClientCommand = "get_sessions"
	CommandGetLiveSessions  ClientCommand = "get_live_sessions"
)

// ClientEnvelope is one inbound client message. ID is echoed on the
// reply for request correlation.
type ClientEnvelope struct {
	ID        string        `json:"id,omitempty"`
	Type      ClientCommand `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	TabID     string        `json:"tabId,omitempty"`
	Text      string        `json:"text,omitempty"`
	Mode      string        `json:"mode,omitempty"`
	Name      string        `json:"name,omitempty"`
}

// Reply acknowledges one client command.
type Reply struct {
	ID     string `json:"id,omitempty"`
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
}

// SessionData is the client-facing projection of one session.
type SessionData struct {
	ID             string    `json:"id"`
	AgentID        string    `json:"agentId,omitempty"`
	AgentSessionID string    `json:"agentSessionId,omitempty"`
	Title          string    `json:"title,omitempty"`
	WorkingDir     string    `json:"workingDir,omitempty"`
	State          string    `json:"state,omitempty"`
	Tabs           []TabData `json:"tabs,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// TabData is the client-facing projection of one conversational tab.
type TabData struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	AgentID string `json:"agentId,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Active  bool   `json:"active,omitempty"`
}

// AutoRunState reports per-session batch-run progress.
type AutoRunState struct {
	IsRunning      bool `json:"isRunning"`
	CompletedTasks int  `json:"completedTasks"`
	TotalTasks     int  `json:"totalTasks"`
	IsStopping     bool `json:"isStopping,omitempty"`
}

// LiveSession mirrors one entry of the live session registry.
type LiveSession struct {
	SessionID      string    `json:"sessionId"`
	AgentSessionID string    `json:"agentSessionId,omitempty"`
	EnabledAt      time.Time `json:"enabledAt"`
}
