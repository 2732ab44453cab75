package geolocation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// toFloat64 converts numeric values decoded from native payloads, YAML or
// JSON to float64. NaN is rejected so callers treat it as "not a number".
func toFloat64(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case time.Duration:
		f = float64(n.Milliseconds())
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// toInt converts numeric and numeric-string values to int.
func toInt(v any) (int, bool) {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		return n, err == nil
	}
	f, ok := toFloat64(v)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// truthy reports whether v counts as true when a caller supplied a loosely
// typed flag: booleans as is, non-zero numbers, and non-empty strings other
// than "false" and "0".
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		s := strings.TrimSpace(strings.ToLower(b))
		return s != "" && s != "false" && s != "0"
	}
	if f, ok := toFloat64(v); ok {
		return f != 0
	}
	return true
}

// parseString extracts a string from an any value.
func parseString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// parseMap extracts a map[string]any from an any value.
func parseMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case RawPosition:
		return m
	case map[any]any:
		converted := make(map[string]any, len(m))
		for key, val := range m {
			if keyString, ok := key.(string); ok {
				converted[keyString] = val
			}
		}
		return converted
	}
	return nil
}

// parseTimestamp converts a native timestamp: time.Time values are used as
// is, numbers are epoch milliseconds and strings are RFC 3339 datetimes.
// Absent or unreadable values yield now.
func parseTimestamp(value any, now time.Time) time.Time {
	switch v := value.(type) {
	case nil:
		return now
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
		return now
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(millis)
		}
		return now
	}
	f, ok := toFloat64(value)
	if !ok || math.IsInf(f, 0) {
		return now
	}
	return time.UnixMilli(int64(f))
}

// optionalFloat returns a pointer to the numeric value of v, or nil when v is
// absent or not a number. Native plugins send null for readings they lack.
func optionalFloat(v any) *float64 {
	f, ok := toFloat64(v)
	if !ok {
		return nil
	}
	return &f
}
