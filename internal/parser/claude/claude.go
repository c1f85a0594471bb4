// Package claude adapts the Claude Code CLI stream-json output to the
// canonical event model.
package claude

import (
	"strings"

	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/errmatch"
	"github.com/agentdeck/agentdeck/internal/metrics"
	"github.com/agentdeck/agentdeck/internal/parser"
	"github.com/agentdeck/agentdeck/internal/usage"
)

const AgentID = "claude"

// Parser implements the adapter contract for Claude Code.
type Parser struct {
	errors *errmatch.Matcher
	usage  *usage.Aggregator
}

var _ parser.AgentOutputParser = (*Parser)(nil)

// New returns a Claude adapter.
func New() *Parser {
	return &Parser{
		errors: errmatch.New(AgentID, errmatch.CommonRules()),
		usage:  usage.New(),
	}
}

func (p *Parser) AgentID() string {
	return AgentID
}

// ParseLine maps one stream-json line to an event. Unknown message types
// degrade to system events so new upstream types are never dropped.
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

	sessionID, _ := msg.GetString("session_id")
	msgType, _ := msg.GetString("type")

	switch msgType {
	case "system":
		if subtype, _ := msg.GetString("subtype"); subtype == "init" {
			return &domain.ParsedEvent{
				Type:          domain.EventInit,
				SessionID:     sessionID,
				SlashCommands: msg.GetStringSlice("slash_commands"),
				Raw:           msg.Data,
			}
		}
		return domain.NewSystemEvent(sessionID, msg.Data)

	case "result":
		text, ok := msg.GetString("result")
		if !ok {
			text = concatTextBlocks(msg, false)
		}
		return &domain.ParsedEvent{
			Type:      domain.EventResult,
			SessionID: sessionID,
			Text:      text,
			Usage:     p.foldUsage(msg),
			Raw:       msg.Data,
		}

	case "assistant":
		return &domain.ParsedEvent{
			Type:          domain.EventText,
			SessionID:     sessionID,
			Text:          concatTextBlocks(msg, true),
			IsPartial:     true,
			ToolUseBlocks: toolUseBlocks(msg),
			Raw:           msg.Data,
		}

	case "error":
		text, _ := msg.GetString("message")
		if text == "" {
			text, _ = msg.GetString("error", "message")
		}
		return &domain.ParsedEvent{
			Type:      domain.EventError,
			SessionID: sessionID,
			Text:      text,
			Raw:       msg.Data,
		}

	case "":
		// Some messages carry only usage/cost fields and no discriminant.
		if usage.HasUsageFields(msg.Data) {
			return &domain.ParsedEvent{
				Type:      domain.EventUsage,
				SessionID: sessionID,
				Usage:     p.foldUsage(msg),
				Raw:       msg.Data,
			}
		}
		return domain.NewSystemEvent(sessionID, msg.Data)

	default:
		return domain.NewSystemEvent(sessionID, msg.Data)
	}
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

func (p *Parser) ExtractSlashCommands(ev *domain.ParsedEvent) []string {
	if ev == nil {
		return nil
	}
	return ev.SlashCommands
}

// DetectErrorFromLine classifies structured error lines only. A line
// whose type is not "error" never yields an error, no matter what its
// text mentions.
func (p *Parser) DetectErrorFromLine(line string) *domain.AgentError {
	msg, err := parser.DecodeMessage(line)
	if err != nil {
		return nil
	}
	if msgType, _ := msg.GetString("type"); msgType != "error" {
		return nil
	}

	text, ok := msg.GetString("message")
	if !ok {
		if text, ok = msg.GetString("error", "message"); !ok {
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

func (p *Parser) foldUsage(msg parser.Message) *domain.UsageStats {
	modelUsage, _ := msg.GetMap("modelUsage")
	flat, _ := msg.GetMap("usage")
	if flat == nil {
		flat, _ = msg.GetMap("message", "usage")
	}
	cost, hasCost := msg.GetFloat("total_cost_usd")
	if !hasCost {
		cost = -1
	}
	return p.usage.Fold(modelUsage, flat, cost)
}

// concatTextBlocks joins text-type content blocks. Thinking blocks are a
// separate, UI-gated channel and never leak into the text payload.
func concatTextBlocks(msg parser.Message, fromMessage bool) string {
	path := []string{"content"}
	if fromMessage {
		path = []string{"message", "content"}
	}
	blocks, ok := msg.GetArray(path...)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, block := range blocks {
		b, ok := block.(map[string]any)
		if !ok {
			continue
		}
		if blockType, _ := b["type"].(string); blockType != "text" {
			continue
		}
		if text, ok := b["text"].(string); ok {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// toolUseBlocks hoists tool_use content blocks out of an assistant
// message so parallel tool invocations survive normalization.
func toolUseBlocks(msg parser.Message) []domain.ToolUseBlock {
	blocks, ok := msg.GetArray("message", "content")
	if !ok {
		return nil
	}

	var out []domain.ToolUseBlock
	for _, block := range blocks {
		b, ok := block.(map[string]any)
		if !ok {
			continue
		}
		if blockType, _ := b["type"].(string); blockType != "tool_use" {
			continue
		}
		tub := domain.ToolUseBlock{}
		tub.ID, _ = b["id"].(string)
		tub.Name, _ = b["name"].(string)
		tub.Input = b["input"]
		out = append(out, tub)
	}
	return out
}
