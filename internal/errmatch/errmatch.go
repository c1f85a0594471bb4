// Package errmatch classifies raw agent error text into the error
// taxonomy. Rules are only ever applied to structured error payloads or
// to captured stderr/stdout after a non-zero exit — never to
// conversational model output.
package errmatch

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agentdeck/agentdeck/internal/domain"
)

// Rule matches one failure signature. Pattern takes priority over
// Substring when both are set; Substring matches case-insensitively.
type Rule struct {
	Substring   string
	Pattern     *regexp.Regexp
	Type        domain.ErrorType
	Recoverable bool
}

// Matcher holds the rule table for one agent.
type Matcher struct {
	agentID string
	rules   []Rule
}

// New builds a matcher for the given agent. Rules are evaluated in order;
// the first hit wins.
func New(agentID string, rules []Rule) *Matcher {
	return &Matcher{agentID: agentID, rules: rules}
}

// AgentID reports which agent this matcher classifies for.
func (m *Matcher) AgentID() string {
	return m.agentID
}

// Match classifies text against the rule table. Returns nil when no rule
// matches.
func (m *Matcher) Match(text string, raw any) *domain.AgentError {
	lower := strings.ToLower(text)
	for _, r := range m.rules {
		if r.Pattern != nil {
			if !r.Pattern.MatchString(text) {
				continue
			}
		} else if r.Substring == "" || !strings.Contains(lower, strings.ToLower(r.Substring)) {
			continue
		}
		return &domain.AgentError{
			Type:        r.Type,
			Message:     text,
			Recoverable: r.Recoverable,
			AgentID:     m.agentID,
			Timestamp:   time.Now().UTC(),
			Raw:         raw,
		}
	}
	return nil
}

// Unmatched wraps a structured error that hit no rule. It still surfaces
// as a modeled error, classified unknown and treated as fatal.
func (m *Matcher) Unmatched(text string, raw any) *domain.AgentError {
	return &domain.AgentError{
		Type:        domain.ErrorUnknown,
		Message:     text,
		Recoverable: false,
		AgentID:     m.agentID,
		Timestamp:   time.Now().UTC(),
		Raw:         raw,
	}
}

// MatchExit classifies a subprocess exit. Exit code 0 is never an error.
// A non-zero exit that matches no rule degrades to agent_crashed with
// Recoverable set, signalling the caller may retry.
func (m *Matcher) MatchExit(exitCode int, stderr, stdout string) *domain.AgentError {
	if exitCode == 0 {
		return nil
	}

	raw := domain.ExitInfo{ExitCode: exitCode, Stdout: stdout, Stderr: stderr}
	if err := m.Match(stderr+"\n"+stdout, raw); err != nil {
		return err
	}

	return &domain.AgentError{
		Type:        domain.ErrorAgentCrashed,
		Message:     fmt.Sprintf("agent exited with code %d", exitCode),
		Recoverable: true,
		AgentID:     m.agentID,
		Timestamp:   time.Now().UTC(),
		Raw:         raw,
	}
}

// CommonRules covers failure signatures shared by the CLI agents.
func CommonRules() []Rule {
	return []Rule{
		{Substring: "rate limit", Type: domain.ErrorRateLimit, Recoverable: true},
		{Substring: "too many requests", Type: domain.ErrorRateLimit, Recoverable: true},
		{Substring: "overloaded", Type: domain.ErrorRateLimit, Recoverable: true},
		{Substring: "invalid api key", Type: domain.ErrorAuth, Recoverable: true},
		{Substring: "unauthorized", Type: domain.ErrorAuth, Recoverable: true},
		{Substring: "authentication", Type: domain.ErrorAuth, Recoverable: true},
		{Substring: "not logged in", Type: domain.ErrorAuth, Recoverable: true},
		{Substring: "context length", Type: domain.ErrorContextOverflow, Recoverable: false},
		{Substring: "context window", Type: domain.ErrorContextOverflow, Recoverable: false},
		{Substring: "prompt is too long", Type: domain.ErrorContextOverflow, Recoverable: false},
		{Pattern: regexp.MustCompile(`(?i)\b(ECONNREFUSED|ETIMEDOUT|ENOTFOUND|connection (refused|reset))\b`), Type: domain.ErrorNetwork, Recoverable: true},
		{Substring: "invalid_request", Type: domain.ErrorInvalidRequest, Recoverable: false},
	}
}
