// Package usage folds the token and cost fields agents report in
// several competing shapes into one UsageStats record.
package usage

import "github.com/agentdeck/agentdeck/internal/domain"

// Aggregator reconciles a per-model breakdown, a flat usage object and a
// cost scalar. All inputs are permissive maps decoded from JSON; absent
// fields contribute nothing.
type Aggregator struct{}

// New returns an Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Fold merges the three Claude-style usage sources into one record.
// modelUsage is a map of model name to usage breakdown; when present it
// takes priority for token counts and context window. costUSD below zero
// means "not reported" and leaves CostUSD nil.
func (a *Aggregator) Fold(modelUsage map[string]any, flat map[string]any, costUSD float64) *domain.UsageStats {
	if len(modelUsage) == 0 && len(flat) == 0 && costUSD < 0 {
		return nil
	}

	stats := &domain.UsageStats{}

	for _, v := range modelUsage {
		breakdown, ok := v.(map[string]any)
		if !ok {
			continue
		}
		stats.InputTokens += getInt(breakdown, "inputTokens", "input_tokens")
		stats.OutputTokens += getInt(breakdown, "outputTokens", "output_tokens")
		stats.CacheReadTokens += getInt(breakdown, "cacheReadInputTokens", "cache_read_input_tokens")
		stats.CacheCreationTokens += getInt(breakdown, "cacheCreationInputTokens", "cache_creation_input_tokens")
		if w := getInt(breakdown, "contextWindow", "context_window"); w > stats.ContextWindow {
			stats.ContextWindow = w
		}
		if cost, ok := getFloat(breakdown, "costUSD", "cost_usd"); ok {
			addCost(stats, cost)
		}
	}

	// The flat object fills whatever the breakdown left at zero.
	if len(flat) > 0 {
		if stats.InputTokens == 0 {
			stats.InputTokens = getInt(flat, "input_tokens", "inputTokens")
		}
		if stats.OutputTokens == 0 {
			stats.OutputTokens = getInt(flat, "output_tokens", "outputTokens")
		}
		if stats.CacheReadTokens == 0 {
			stats.CacheReadTokens = getInt(flat, "cache_read_input_tokens", "cacheReadTokens")
		}
		if stats.CacheCreationTokens == 0 {
			stats.CacheCreationTokens = getInt(flat, "cache_creation_input_tokens", "cacheCreationTokens")
		}
	}

	if costUSD >= 0 {
		stats.CostUSD = &costUSD
	}

	return stats
}

// HasUsageFields reports whether the decoded message carries any of the
// fields Fold understands. Used to recognize usage-only messages that
// arrive without a type discriminant.
func HasUsageFields(data map[string]any) bool {
	if data == nil {
		return false
	}
	for _, key := range []string{"modelUsage", "usage", "total_cost_usd"} {
		if _, ok := data[key]; ok {
			return true
		}
	}
	return false
}

func addCost(stats *domain.UsageStats, cost float64) {
	if stats.CostUSD == nil {
		stats.CostUSD = &cost
		return
	}
	total := *stats.CostUSD + cost
	stats.CostUSD = &total
}

func getInt(m map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return int64(v)
		case int64:
			return v
		case int:
			return int64(v)
		}
	}
	return 0
}

func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}
