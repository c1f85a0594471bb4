package parser

import (
	"testing"

	"github.com/agentdeck/agentdeck/internal/domain"
)

type stubParser struct {
	id string
}

func (s *stubParser) AgentID() string                                 { return s.id }
func (s *stubParser) ParseLine(line string) *domain.ParsedEvent       { return nil }
func (s *stubParser) IsResultMessage(ev *domain.ParsedEvent) bool     { return false }
func (s *stubParser) ExtractSessionID(ev *domain.ParsedEvent) string  { return "" }
func (s *stubParser) ExtractUsage(ev *domain.ParsedEvent) *domain.UsageStats {
	return nil
}
func (s *stubParser) ExtractSlashCommands(ev *domain.ParsedEvent) []string { return nil }
func (s *stubParser) DetectErrorFromLine(line string) *domain.AgentError   { return nil }
func (s *stubParser) DetectErrorFromExit(exitCode int, stderr, stdout string) *domain.AgentError {
	return nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if got := r.Get("claude"); got != nil {
		t.Fatalf("Get() on empty registry = %v, want nil", got)
	}

	first := &stubParser{id: "claude"}
	r.Register(first)

	if got := r.Get("claude"); got != first {
		t.Errorf("Get() = %v, want the registered adapter", got)
	}
	if got := r.Get("unknown"); got != nil {
		t.Errorf("Get(unknown) = %v, want nil", got)
	}

	// Re-registering the same agent id replaces the previous adapter.
	second := &stubParser{id: "claude"}
	r.Register(second)

	if got := r.Get("claude"); got != second {
		t.Errorf("Get() after re-register = %v, want replacement", got)
	}
	if got := len(r.IDs()); got != 1 {
		t.Errorf("IDs() length = %d, want 1", got)
	}

	r.Register(&stubParser{id: "codex"})
	if got := len(r.IDs()); got != 2 {
		t.Errorf("IDs() length = %d, want 2", got)
	}

	r.Clear()
	if got := len(r.IDs()); got != 0 {
		t.Errorf("IDs() after Clear = %d, want 0", got)
	}
}
