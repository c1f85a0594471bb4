package domain

import "time"

// EventType discriminates the canonical, agent-agnostic event union.
type EventType string

const (
	EventInit    EventType = "init"
	EventText    EventType = "text"
	EventToolUse EventType = "tool_use"
	EventResult  EventType = "result"
	EventError   EventType = "error"
	EventUsage   EventType = "usage"
	EventSystem  EventType = "system"
)

// ToolStatus tracks a tool invocation through its lifecycle.
type ToolStatus string

const (
	ToolRunning   ToolStatus = "running"
	ToolCompleted ToolStatus = "completed"
)

// ToolState carries the progress of a single tool invocation.
type ToolState struct {
	Status ToolStatus `json:"status"`
	Input  any        `json:"input,omitempty"`
	Output string     `json:"output,omitempty"`
}

// ToolUseBlock is one tool invocation embedded in a text message. Agents
// may run several in parallel inside one assistant turn.
type ToolUseBlock struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Input any    `json:"input,omitempty"`
}

// ParsedEvent is the canonical representation of one unit of agent output.
// Exactly one semantic payload is populated per Type; Raw always carries
// the original decoded payload (or the raw line when decoding failed) so
// diagnostics never lose information.
type ParsedEvent struct {
	Type          EventType      `json:"type"`
	SessionID     string         `json:"sessionId,omitempty"`
	Text          string         `json:"text,omitempty"`
	IsPartial     bool           `json:"isPartial,omitempty"`
	ToolName      string         `json:"toolName,omitempty"`
	ToolState     *ToolState     `json:"toolState,omitempty"`
	ToolUseBlocks []ToolUseBlock `json:"toolUseBlocks,omitempty"`
	Usage         *UsageStats    `json:"usage,omitempty"`
	SlashCommands []string       `json:"slashCommands,omitempty"`
	Raw           any            `json:"raw"`
}

// UsageStats folds the heterogeneous token and cost fields the agents
// report into one numeric record. OutputTokens is inclusive of reasoning
// tokens; CostUSD and ReasoningTokens stay nil when the agent does not
// report them.
type UsageStats struct {
	InputTokens         int64    `json:"inputTokens"`
	OutputTokens        int64    `json:"outputTokens"`
	CacheReadTokens     int64    `json:"cacheReadTokens"`
	CacheCreationTokens int64    `json:"cacheCreationTokens"`
	ContextWindow       int64    `json:"contextWindow,omitempty"`
	CostUSD             *float64 `json:"costUsd,omitempty"`
	ReasoningTokens     *int64   `json:"reasoningTokens,omitempty"`
}

// ErrorType classifies agent failures.
type ErrorType string

const (
	ErrorAuth            ErrorType = "auth"
	ErrorRateLimit       ErrorType = "rate_limit"
	ErrorContextOverflow ErrorType = "context_overflow"
	ErrorNetwork         ErrorType = "network"
	ErrorInvalidRequest  ErrorType = "invalid_request"
	ErrorAgentCrashed    ErrorType = "agent_crashed"
	ErrorUnknown         ErrorType = "unknown"
)

// ExitInfo preserves the evidence of a subprocess exit for diagnostics.
type ExitInfo struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// AgentError is a classified failure from one agent. Raw holds either the
// offending line or an ExitInfo.
type AgentError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
	AgentID     string    `json:"agentId"`
	Timestamp   time.Time `json:"timestamp"`
	Raw         any       `json:"raw,omitempty"`
}

// NewTextEvent wraps raw text output, typically a line that failed to
// decode as JSON. IsPartial stays unset so it is never mistaken for
// streamed model output.
func NewTextEvent(text string, raw any) *ParsedEvent {
	return &ParsedEvent{Type: EventText, Text: text, Raw: raw}
}

// NewSystemEvent records an agent message that carries no payload we map.
func NewSystemEvent(sessionID string, raw any) *ParsedEvent {
	return &ParsedEvent{Type: EventSystem, SessionID: sessionID, Raw: raw}
}
