package platform

import (
	"encoding/json"
	"math"
	"unicode"
	"unicode/utf8"
)

// Args is the decoded argument map of a method call.
type Args map[string]any

// ArgsFrom converts decoded call arguments into Args. Anything other than
// an object yields an empty map, so every lookup reports "missing".
func ArgsFrom(value any) Args {
	return Args(parseMap(value))
}

// String returns the string argument key.
func (a Args) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Int64 returns the numeric argument key truncated to an integer.
func (a Args) Int64(key string) (int64, bool) {
	return toInt64(a[key])
}

// Float64 returns the numeric argument key.
func (a Args) Float64(key string) (float64, bool) {
	return toFloat64(a[key])
}

// Bool returns the boolean argument key. Strings are not coerced.
func (a Args) Bool(key string) (bool, bool) {
	b, ok := a[key].(bool)
	return b, ok
}

// RequireString is String with a ready-made INVALID_ARGUMENT error.
func (a Args) RequireString(key string) (string, error) {
	v, ok := a.String(key)
	if !ok {
		return "", MissingArgument(key)
	}
	return v, nil
}

// RequireInt64 is Int64 with a ready-made INVALID_ARGUMENT error.
func (a Args) RequireInt64(key string) (int64, error) {
	v, ok := a.Int64(key)
	if !ok {
		return 0, MissingArgument(key)
	}
	return v, nil
}

// RequireFloat64 is Float64 with a ready-made INVALID_ARGUMENT error.
func (a Args) RequireFloat64(key string) (float64, error) {
	v, ok := a.Float64(key)
	if !ok {
		return 0, MissingArgument(key)
	}
	return v, nil
}

// RequireBool is Bool with a ready-made INVALID_ARGUMENT error.
func (a Args) RequireBool(key string) (bool, error) {
	v, ok := a.Bool(key)
	if !ok {
		return false, MissingArgument(key)
	}
	return v, nil
}

// MissingArgument builds the INVALID_ARGUMENT error for a missing or
// mistyped field, e.g. "Source is required".
func MissingArgument(field string) *ChannelError {
	return NewChannelError(CodeInvalidArgument, capitalize(field)+" is required")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// toInt64 converts various numeric types to int64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return finiteInt(float64(n))
	case float64:
		return finiteInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finiteInt(f)
	default:
		return 0, false
	}
}

// finiteInt truncates f, rejecting values int64 cannot hold.
func finiteInt(f float64) (int64, bool) {
	if math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// toFloat64 converts various numeric types to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parseMap extracts a map[string]any from an any value.
func parseMap(value any) map[string]any {
	switch m := value.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return m
	case Args:
		return m
	case map[any]any:
		converted := make(map[string]any, len(m))
		for key, val := range m {
			if ks, ok := key.(string); ok {
				converted[ks] = val
			}
		}
		return converted
	default:
		return map[string]any{}
	}
}
