package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExecutionContext is what action executors receive: identity of the running
// execution plus the trigger context captured at dispatch time. The context is
// the only data an action may read; it round-trips JSON persistence, so
// numbers always arrive as float64.
type ExecutionContext struct {
	ExecutionID string         `json:"execution_id"`
	WorkflowID  string         `json:"workflow_id"`
	Trigger     TriggerKind    `json:"trigger"`
	Context     map[string]any `json:"context"`
}

// ResolvePath walks a dot-separated path through nested maps. The second
// return is false when any segment is missing, not a map, or resolves to nil.
func ResolvePath(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}

	return current, true
}

// Stringify renders a context value the way it appears in message bodies.
// Floats that carry no fractional part print without one, so numbers that
// round-tripped JSON persistence still read naturally.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(encoded)
	}
}

// StringAt resolves a path and returns it as a string, or "" when absent or
// not a string.
func StringAt(data map[string]any, path string) string {
	value, ok := ResolvePath(data, path)
	if !ok {
		return ""
	}

	s, ok := value.(string)
	if !ok {
		return ""
	}

	return s
}
