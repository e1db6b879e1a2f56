package taxonomy

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Substitute replaces {name} references in a template with values from the
// variable bag. If any referenced variable is absent, the raw template is
// returned unchanged: a half-substituted fix suggestion is worse than the
// template itself.
func Substitute(template string, variables map[string]any) string {
	if template == "" || !strings.Contains(template, "{") {
		return template
	}

	var out strings.Builder
	rest := template
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			out.WriteString(rest)
			break
		}
		close := strings.Index(rest[open:], "}")
		if close < 0 {
			out.WriteString(rest)
			break
		}
		close += open

		name := rest[open+1 : close]
		value, ok := variables[name]
		if !ok || value == nil {
			return template
		}

		out.WriteString(rest[:open])
		out.WriteString(formatValue(value))
		rest = rest[close+1:]
	}

	return out.String()
}

// formatValue renders a variable value for template text. Whole numbers
// drop their decimal point; lists join with commas.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return formatValue(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
