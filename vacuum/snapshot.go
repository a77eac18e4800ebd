package vacuum

import (
	"bytes"
	"encoding/json"
)

// Attributes maps attribute names to their raw JSON value as reported by the state store
type Attributes map[string]json.RawMessage

// Snapshot is a point in time read of a single entity
type Snapshot struct {
	EntityID   Reference  `json:"entity_id"`
	State      string     `json:"state"`
	Attributes Attributes `json:"attributes"`
}

// Get decodes the attribute into K, returning fallback if it is missing, null or of another type
func Get[K any](attrs Attributes, key string, fallback K) K {
	raw, ok := attrs[key]
	if !ok || isNull(raw) {
		return fallback
	}

	var value K
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback
	}

	return value
}

func (s *Snapshot) StateOr(fallback string) string {
	if s.State == "" {
		return fallback
	}

	return s.State
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// isEmpty reports whether the value would be considered empty by the state store,
// i.e. null, an empty string, an empty list, an empty object, false or zero
func isEmpty(raw json.RawMessage) bool {
	if isNull(raw) {
		return true
	}

	switch string(bytes.TrimSpace(raw)) {
	case `""`, `[]`, `{}`, `false`, `0`:
		return true
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case float64:
		return v == 0
	case bool:
		return !v
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}

	return false
}
