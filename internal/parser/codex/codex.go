// Package codex adapts the `codex exec --json` JSONL output to the
// canonical event model.
package codex

import (
	"strings"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/errmatch"
	"github.com/agentdeck/agentdeck/internal/metrics"
	"github.com/agentdeck/agentdeck/internal/parser"
)

const AgentID = "codex"

// Event types emitted by codex exec --json.
const (
	eventThreadStarted = "thread.started"
	eventTurnStarted   = "turn.started"
	eventTurnCompleted = "turn.completed"
	eventTurnFailed    = "turn.failed"
	eventItemCompleted = "item.completed"
	eventError         = "error"
)

// Item types within a turn.
const (
	itemReasoning    = "reasoning"
	itemAgentMessage = "agent_message"
	itemToolCall     = "tool_call"
	itemToolResult   = "tool_result"
)

// Known context window sizes by model. Prefix matches cover dated
// snapshot names like gpt-5-codex-2025-06-01.
var contextWindows = map[string]int64{
	"gpt-5-codex": 272000,
	"gpt-5":       272000,
	"o3":          200000,
	"o4-mini":     200000,
	"gpt-4.1":     1047576,
	"gpt-4o":      128000,
}

const defaultContextWindow = 272000

// Config carries adapter construction options.
type Config struct {
	// Model selects the context window from the known table.
	Model string
	// ContextWindow overrides any model lookup when positive.
	ContextWindow int64
}

// Parser implements the adapter contract for Codex.
type Parser struct {
	errors *errmatch.Matcher

	// contextWindow is resolved once at construction and never
	// re-resolved per message.
	contextWindow int64
}

var _ parser.AgentOutputParser = (*Parser)(nil)

// New returns a Codex adapter with its context window resolved from cfg.
func New(cfg Config) *Parser {
	return &Parser{
		errors:        errmatch.New(AgentID, errmatch.CommonRules()),
		contextWindow: resolveContextWindow(cfg),
	}
}

// resolveContextWindow picks, in priority order: the explicit override,
// an exact model match, the longest prefix match, then the default.
func resolveContextWindow(cfg Config) int64 {
	if cfg.ContextWindow > 0 {
		return cfg.ContextWindow
	}
	if cfg.Model != "" {
		if window, ok := contextWindows[cfg.Model]; ok {
			return window
		}
		bestLen := 0
		var best int64
		for name, window := range contextWindows {
			if strings.HasPrefix(cfg.Model, name) && len(name) > bestLen {
				bestLen = len(name)
				best = window
			}
		}
		if bestLen > 0 {
			return best
		}
	}
	return defaultContextWindow
}

func (p *Parser) AgentID() string {
	return AgentID
}

// ContextWindow reports the resolved window size.
func (p *Parser) ContextWindow() int64 {
	return p.contextWindow
}

func (p *Parser) ParseLine(line string) *domain.ParsedEvent {
	ev := p.parseLine(line)
	if ev != nil {
		metrics.ParsedLines.WithLabelValues(AgentID, string(ev.Type)).Inc()
	}
	return ev
}

func (p *Parser) parseLine(line string) *domain.ParsedEvent {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	msg, err := parser.DecodeMessage(line)
	if err != nil {
		return domain.NewTextEvent(line, line)
	}

	msgType, _ := msg.GetString("type")

	switch msgType {
	case eventThreadStarted:
		// Codex's continuity id is the thread id.
		threadID, _ := msg.GetString("thread_id")
		return &domain.ParsedEvent{
			Type:      domain.EventInit,
			SessionID: threadID,
			Raw:       msg.Data,
		}

	case eventTurnStarted:
		return domain.NewSystemEvent("", msg.Data)

	case eventItemCompleted:
		return p.parseItem(msg)

	case eventTurnCompleted:
		// Ends the turn but is not the result; only usage comes out of it.
		return &domain.ParsedEvent{
			Type:  domain.EventUsage,
			Usage: p.turnUsage(msg),
			Raw:   msg.Data,
		}

	case eventTurnFailed, eventError:
		text, _ := msg.GetString("error", "message")
		if text == "" {
			text, _ = msg.GetString("message")
		}
		return &domain.ParsedEvent{
			Type: domain.EventError,
			Text: text,
			Raw:  msg.Data,
		}

	default:
		return domain.NewSystemEvent("", msg.Data)
	}
}

func (p *Parser) parseItem(msg parser.Message) *domain.ParsedEvent {
	itemType, _ := msg.GetString("item", "type")

	switch itemType {
	case itemReasoning:
		// The model's visible reasoning trace streams as partial text.
		text, _ := msg.GetString("item", "text")
		return &domain.ParsedEvent{
			Type:      domain.EventText,
			Text:      text,
			IsPartial: true,
			Raw:       msg.Data,
		}

	case itemAgentMessage:
		// This, not turn.completed, is the authoritative response.
		text, _ := msg.GetString("item", "text")
		return &domain.ParsedEvent{
			Type: domain.EventResult,
			Text: text,
			Raw:  msg.Data,
		}

	case itemToolCall:
		toolName, _ := msg.GetString("item", "tool")
		args, _ := msg.Data["item"].(map[string]any)
		var input any
		if args != nil {
			input = args["args"]
		}
		return &domain.ParsedEvent{
			Type:     domain.EventToolUse,
			ToolName: toolName,
			ToolState: &domain.ToolState{
				Status: domain.ToolRunning,
				Input:  input,
			},
			Raw: msg.Data,
		}

	case itemToolResult:
		toolName, _ := msg.GetString("item", "tool")
		return &domain.ParsedEvent{
			Type:     domain.EventToolUse,
			ToolName: toolName,
			ToolState: &domain.ToolState{
				Status: domain.ToolCompleted,
				Output: decodeOutput(msg),
			},
			Raw: msg.Data,
		}

	default:
		return domain.NewSystemEvent("", msg.Data)
	}
}

// decodeOutput handles tool output that arrives either as a string or as
// a JSON array of byte values. The array form is rebuilt byte by byte;
// expanding it as variadic arguments would risk stack overflow on large
// outputs.
func decodeOutput(msg parser.Message) string {
	if text, ok := msg.GetString("item", "output"); ok {
		return text
	}
	arr, ok := msg.GetArray("item", "output")
	if !ok {
		return ""
	}
	buf := make([]byte, 0, len(arr))
	for _, v := range arr {
		if n, ok := v.(float64); ok {
			buf = append(buf, byte(int64(n)))
		}
	}
	return string(buf)
}

// turnUsage folds turn.completed token counts. Reasoning tokens are
// included in OutputTokens and also exposed separately; cached tokens are
// a subset of input tokens here, so context-window math must use
// inputTokens + outputTokens only.
func (p *Parser) turnUsage(msg parser.Message) *domain.UsageStats {
	flat, ok := msg.GetMap("usage")
	if !ok {
		return nil
	}

	stats := &domain.UsageStats{ContextWindow: p.contextWindow}
	if v, ok := flat["input_tokens"].(float64); ok {
		stats.InputTokens = int64(v)
	}
	if v, ok := flat["cached_input_tokens"].(float64); ok {
		stats.CacheReadTokens = int64(v)
	}
	var output, reasoning int64
	if v, ok := flat["output_tokens"].(float64); ok {
		output = int64(v)
	}
	if v, ok := flat["reasoning_output_tokens"].(float64); ok {
		reasoning = int64(v)
		stats.ReasoningTokens = &reasoning
	}
	stats.OutputTokens = output + reasoning
	return stats
}

func (p *Parser) IsResultMessage(ev *domain.ParsedEvent) bool {
	return ev != nil && ev.Type == domain.EventResult
}

func (p *Parser) ExtractSessionID(ev *domain.ParsedEvent) string {
	if ev == nil {
		return ""
	}
	return ev.SessionID
}

func (p *Parser) ExtractUsage(ev *domain.ParsedEvent) *domain.UsageStats {
	if ev == nil {
		return nil
	}
	return ev.Usage
}

// ExtractSlashCommands always returns nil: Codex has no discoverable
// slash-command concept and the adapter must not fabricate one.
func (p *Parser) ExtractSlashCommands(ev *domain.ParsedEvent) []string {
	return nil
}

func (p *Parser) DetectErrorFromLine(line string) *domain.AgentError {
	msg, err := parser.DecodeMessage(line)
	if err != nil {
		return nil
	}

	msgType, _ := msg.GetString("type")
	if msgType != eventError && msgType != eventTurnFailed {
		return nil
	}

	text, ok := msg.GetString("error", "message")
	if !ok {
		if text, ok = msg.GetString("message"); !ok {
			text, _ = msg.GetString("error")
		}
	}

	if matched := p.errors.Match(text, line); matched != nil {
		return matched
	}
	return p.errors.Unmatched(text, line)
}

func (p *Parser) DetectErrorFromExit(exitCode int, stderr, stdout string) *domain.AgentError {
	return p.errors.MatchExit(exitCode, stderr, stdout)
}
