package source

import (
	"strconv"
	"strings"
)

// GetString reads a string field, accepting numbers for providers that are
// loose with types.
func GetString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return ""
	}
	switch typed := raw.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

func GetInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	switch typed := src[key].(type) {
	case float64:
		return int64(typed)
	case float32:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

// GetMap reads a nested object. Relations wrapped in {"data": {...}} are
// unwrapped.
func GetMap(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	obj, ok := src[key].(map[string]any)
	if !ok {
		return nil
	}
	if data, ok := obj["data"].(map[string]any); ok {
		return data
	}
	return obj
}

// GetSlice reads a nested array of objects, skipping non-object items.
// Relations wrapped in {"data": [...]} are unwrapped.
func GetSlice(src map[string]any, key string) []map[string]any {
	if src == nil {
		return nil
	}
	raw := src[key]
	if obj, ok := raw.(map[string]any); ok {
		raw = obj["data"]
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func FirstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}
