// Package parser defines the contract every agent output adapter
// implements and the registry the process manager resolves adapters from.
package parser

import "github.com/agentdeck/agentdeck/internal/domain"

// AgentOutputParser normalizes one agent's JSONL stdout stream into
// canonical events. Implementations are stateless across calls except for
// read-once construction-time configuration; no method may block or
// perform I/O, and none may panic past the adapter boundary.
type AgentOutputParser interface {
	// AgentID identifies the agent this adapter speaks for.
	AgentID() string

	// ParseLine turns one stdout line into an event. Blank or
	// whitespace-only input yields nil. Input that is not valid JSON
	// degrades to a text event carrying the line verbatim.
	ParseLine(line string) *domain.ParsedEvent

	// IsResultMessage reports whether the event is the authoritative
	// response for a turn.
	IsResultMessage(ev *domain.ParsedEvent) bool

	// ExtractSessionID returns the agent's continuity id, if the event
	// carries one.
	ExtractSessionID(ev *domain.ParsedEvent) string

	// ExtractUsage returns token/cost stats, if the event carries any.
	ExtractUsage(ev *domain.ParsedEvent) *domain.UsageStats

	// ExtractSlashCommands returns the discoverable slash commands, if
	// the agent advertises any. Adapters for agents without the concept
	// return nil.
	ExtractSlashCommands(ev *domain.ParsedEvent) []string

	// DetectErrorFromLine classifies a structured error line. Free-text
	// conversational content never matches.
	DetectErrorFromLine(line string) *domain.AgentError

	// DetectErrorFromExit classifies a subprocess exit. Exit code 0 is
	// never an error.
	DetectErrorFromExit(exitCode int, stderr, stdout string) *domain.AgentError
}
