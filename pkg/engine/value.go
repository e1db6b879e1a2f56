package engine

import "strings"

// placeholderSentinel is the value UI clients submit for untouched form
// fields. It counts as empty.
const placeholderSentinel = "(Default)"

// isEmptyValue reports whether a submitted value counts as "not provided":
// absent (nil), an empty or blank string, the placeholder sentinel, or an
// empty list.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		if val == "" || val == placeholderSentinel {
			return true
		}
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}

// asNumber converts a submitted value to float64. JSON decoding produces
// float64, but callers may also pass native ints in tests and embedded
// use.
func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// asString converts a submitted value to its string form, if it is one.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
