package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Arguments arrive as decoded JSON, so numbers are float64 and lists []any.

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), val == math.Trunc(val)
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

type args map[string]any

func (a args) has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a args) str(key string) string {
	return strings.TrimSpace(asString(a[key]))
}

// required returns a non-empty string argument or an error naming it.
func (a args) required(key string) (string, error) {
	s := a.str(key)
	if s == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return s, nil
}

func (a args) integer(key string, def int) (int, error) {
	if !a.has(key) {
		return def, nil
	}
	n, ok := asInt(a[key])
	if !ok {
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
	return n, nil
}

func (a args) requiredInt(key string) (int, error) {
	if !a.has(key) {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	return a.integer(key, 0)
}

// limit reads the "limit" argument; non-positive values fall back to def.
func (a args) limit(def int) (int, error) {
	n, err := a.integer("limit", def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return def, nil
	}
	return n, nil
}

func (a args) list(key string) []string {
	return asStrings(a[key])
}

// formatResult renders a tool result: strings pass through, everything else
// becomes indented JSON.
func formatResult(data any) (string, error) {
	if s, ok := data.(string); ok {
		return s, nil
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(out), nil
}
