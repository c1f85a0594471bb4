package claude

import (
	"testing"

	"github.com/agentdeck/agentdeck/internal/domain"
)

func TestParser_ParseLine(t *testing.T) {
	p := New()

	t.Run("blank line", func(t *testing.T) {
		if got := p.ParseLine("   "); got != nil {
			t.Fatalf("ParseLine(blank) = %+v, want nil", got)
		}
	})

	t.Run("non-JSON degrades to text", func(t *testing.T) {
		got := p.ParseLine("plain progress output")
		if got == nil || got.Type != domain.EventText {
			t.Fatalf("ParseLine() = %+v, want text event", got)
		}
		if got.Text != "plain progress output" {
			t.Errorf("Text = %q", got.Text)
		}
		if got.IsPartial {
			t.Error("IsPartial = true for degraded raw line, want false")
		}
	})

	t.Run("system init", func(t *testing.T) {
		line := `{"type":"system","subtype":"init","session_id":"abc","slash_commands":["compact","review"]}`
		got := p.ParseLine(line)
		if got == nil || got.Type != domain.EventInit {
			t.Fatalf("ParseLine() = %+v, want init event", got)
		}
		if got.SessionID != "abc" {
			t.Errorf("SessionID = %q, want abc", got.SessionID)
		}
		if len(got.SlashCommands) != 2 || got.SlashCommands[0] != "compact" {
			t.Errorf("SlashCommands = %v", got.SlashCommands)
		}
	})

	t.Run("other system subtype", func(t *testing.T) {
		got := p.ParseLine(`{"type":"system","subtype":"hook","session_id":"abc"}`)
		if got == nil || got.Type != domain.EventSystem {
			t.Fatalf("ParseLine() = %+v, want system event", got)
		}
	})

	t.Run("assistant text excludes thinking blocks", func(t *testing.T) {
		line := `{"type":"assistant","session_id":"abc","message":{"content":[{"type":"thinking","thinking":"x"},{"type":"text","text":"y"}]}}`
		got := p.ParseLine(line)
		if got == nil || got.Type != domain.EventText {
			t.Fatalf("ParseLine() = %+v, want text event", got)
		}
		if got.Text != "y" {
			t.Errorf("Text = %q, want y", got.Text)
		}
		if !got.IsPartial {
			t.Error("IsPartial = false, want true")
		}
	})

	t.Run("assistant hoists tool_use blocks", func(t *testing.T) {
		line := `{"type":"assistant","session_id":"abc","message":{"content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}},{"type":"tool_use","id":"t2","name":"Read","input":{"file":"x"}}]}}`
		got := p.ParseLine(line)
		if got == nil || len(got.ToolUseBlocks) != 2 {
			t.Fatalf("ParseLine() tool blocks = %+v, want 2", got)
		}
		if got.ToolUseBlocks[0].ID != "t1" || got.ToolUseBlocks[0].Name != "Bash" {
			t.Errorf("block[0] = %+v", got.ToolUseBlocks[0])
		}
		if got.ToolUseBlocks[1].Name != "Read" {
			t.Errorf("block[1] = %+v", got.ToolUseBlocks[1])
		}
	})

	t.Run("result with usage and cost", func(t *testing.T) {
		line := `{"type":"result","session_id":"abc","result":"done","total_cost_usd":0.42,"usage":{"input_tokens":100,"output_tokens":20}}`
		got := p.ParseLine(line)
		if got == nil || got.Type != domain.EventResult {
			t.Fatalf("ParseLine() = %+v, want result event", got)
		}
		if got.Text != "done" {
			t.Errorf("Text = %q, want done", got.Text)
		}
		if got.Usage == nil {
			t.Fatal("Usage = nil")
		}
		if got.Usage.InputTokens != 100 || got.Usage.OutputTokens != 20 {
			t.Errorf("Usage tokens = %d/%d", got.Usage.InputTokens, got.Usage.OutputTokens)
		}
		if got.Usage.CostUSD == nil || *got.Usage.CostUSD != 0.42 {
			t.Errorf("CostUSD = %v, want 0.42", got.Usage.CostUSD)
		}
		if !p.IsResultMessage(got) {
			t.Error("IsResultMessage() = false, want true")
		}
	})

	t.Run("result with model breakdown", func(t *testing.T) {
		line := `{"type":"result","session_id":"abc","result":"ok","modelUsage":{"claude-sonnet-4-5":{"inputTokens":500,"outputTokens":40,"contextWindow":200000}}}`
		got := p.ParseLine(line)
		if got == nil || got.Usage == nil {
			t.Fatalf("ParseLine() = %+v, want usage", got)
		}
		if got.Usage.InputTokens != 500 || got.Usage.ContextWindow != 200000 {
			t.Errorf("Usage = %+v", got.Usage)
		}
	})

	t.Run("error message", func(t *testing.T) {
		got := p.ParseLine(`{"type":"error","message":"rate limit exceeded"}`)
		if got == nil || got.Type != domain.EventError {
			t.Fatalf("ParseLine() = %+v, want error event", got)
		}
		if got.Text != "rate limit exceeded" {
			t.Errorf("Text = %q", got.Text)
		}
	})

	t.Run("typeless usage-only message", func(t *testing.T) {
		got := p.ParseLine(`{"total_cost_usd":0.02,"usage":{"input_tokens":5}}`)
		if got == nil || got.Type != domain.EventUsage {
			t.Fatalf("ParseLine() = %+v, want usage event", got)
		}
		if got.Usage == nil || got.Usage.InputTokens != 5 {
			t.Errorf("Usage = %+v", got.Usage)
		}
	})

	t.Run("unknown type degrades to system", func(t *testing.T) {
		got := p.ParseLine(`{"type":"brand_new_thing","session_id":"abc"}`)
		if got == nil || got.Type != domain.EventSystem {
			t.Fatalf("ParseLine() = %+v, want system event", got)
		}
		if got.SessionID != "abc" {
			t.Errorf("SessionID = %q", got.SessionID)
		}
	})
}

func TestParser_Extractors(t *testing.T) {
	p := New()

	ev := p.ParseLine(`{"type":"system","subtype":"init","session_id":"s1","slash_commands":["a"]}`)
	if got := p.ExtractSessionID(ev); got != "s1" {
		t.Errorf("ExtractSessionID() = %q, want s1", got)
	}
	if got := p.ExtractSlashCommands(ev); len(got) != 1 || got[0] != "a" {
		t.Errorf("ExtractSlashCommands() = %v", got)
	}
	if p.IsResultMessage(ev) {
		t.Error("IsResultMessage(init) = true")
	}
	if got := p.ExtractSessionID(nil); got != "" {
		t.Errorf("ExtractSessionID(nil) = %q", got)
	}
	if got := p.ExtractUsage(nil); got != nil {
		t.Errorf("ExtractUsage(nil) = %v", got)
	}
}

func TestParser_DetectErrorFromLine(t *testing.T) {
	p := New()

	tests := []struct {
		name     string
		line     string
		wantType domain.ErrorType
		wantNil  bool
	}{
		{
			name:     "structured rate limit",
			line:     `{"type":"error","message":"rate limit exceeded"}`,
			wantType: domain.ErrorRateLimit,
		},
		{
			name:     "nested error message",
			line:     `{"type":"error","error":{"message":"Invalid API key"}}`,
			wantType: domain.ErrorAuth,
		},
		{
			name:     "unmatched structured error",
			line:     `{"type":"error","message":"mystery failure"}`,
			wantType: domain.ErrorUnknown,
		},
		{
			// Conversational text never trips error detection, no matter
			// what failure phrases it mentions.
			name:    "assistant text mentioning rate limit",
			line:    `{"type":"assistant","message":{"content":[{"type":"text","text":"you hit a rate limit"}]}}`,
			wantNil: true,
		},
		{
			name:    "non-JSON line",
			line:    "rate limit exceeded",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.DetectErrorFromLine(tt.line)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("DetectErrorFromLine() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("DetectErrorFromLine() = nil, want error")
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %v, want %v", got.Type, tt.wantType)
			}
			if got.AgentID != AgentID {
				t.Errorf("agentID = %q, want %q", got.AgentID, AgentID)
			}
		})
	}
}

func TestParser_DetectErrorFromExit(t *testing.T) {
	p := New()

	if got := p.DetectErrorFromExit(0, "", ""); got != nil {
		t.Fatalf("DetectErrorFromExit(0) = %+v, want nil", got)
	}

	got := p.DetectErrorFromExit(1, "Error: prompt is too long", "")
	if got == nil || got.Type != domain.ErrorContextOverflow {
		t.Fatalf("DetectErrorFromExit() = %+v, want context_overflow", got)
	}
	if got.Recoverable {
		t.Error("context overflow recoverable = true, want false")
	}
}
