package parser

import (
	"encoding/json"
	"fmt"
)

// Message is one decoded JSONL payload with flexible field access. Agent
// wire formats are duck-typed with optional fields that can co-occur, so
// everything is decoded into a permissive map and read defensively.
type Message struct {
	Data map[string]any
	raw  string
}

// DecodeMessage parses a single JSONL line.
func DecodeMessage(line string) (Message, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return Message{Data: data, raw: line}, nil
}

// Raw returns the original line.
func (m Message) Raw() string {
	return m.raw
}

// GetString safely extracts a string value at the given path.
func (m Message) GetString(path ...string) (string, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetInt safely extracts an integer value at the given path.
func (m Message) GetInt(path ...string) (int64, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// GetFloat safely extracts a float value at the given path.
func (m Message) GetFloat(path ...string) (float64, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// GetMap safely extracts a map value at the given path.
func (m Message) GetMap(path ...string) (map[string]any, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return nil, false
	}
	mapVal, ok := value.(map[string]any)
	return mapVal, ok
}

// GetArray safely extracts an array value at the given path.
func (m Message) GetArray(path ...string) ([]any, bool) {
	value, ok := m.getValue(path...)
	if !ok {
		return nil, false
	}
	arrVal, ok := value.([]any)
	return arrVal, ok
}

func (m Message) getValue(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	current := any(m.Data)
	for _, key := range path {
		mapVal, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = mapVal[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetStringSlice extracts an array of strings, skipping non-string items.
func (m Message) GetStringSlice(path ...string) []string {
	arr, ok := m.GetArray(path...)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
