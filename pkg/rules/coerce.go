package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// isEmpty mirrors the emptiness check used by required rules: only nil and
// the empty string count as empty, so 0 and false are legitimate values.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// isFalsy reports whether a value should skip non-required constraints.
// Empty optional fields are the concern of required rules alone, so nil,
// "", false and numeric zero all pass length, pattern, bound and date
// checks.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	default:
		if n, ok := toNumber(value); ok {
			return n == 0
		}
		return false
	}
}

// stringify renders a value the way it would appear in a form input. nil
// becomes the empty string; floats drop an integral ".0" so JSON numbers
// round-trip cleanly.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// toNumber coerces a value to float64. Strings parse with surrounding
// whitespace trimmed; booleans map to 0/1. The second return is false when
// no numeric interpretation exists, in which case numeric rules skip.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// parseDate attempts to interpret a value as a calendar date. Unparseable
// values make date rules skip rather than fail.
func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// dayOf truncates a time to midnight in its own location, giving the
// day-level granularity used when comparing against "today".
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ResolveRef looks up a field reference in a value map. Bare ids resolve
// directly; dotted "group.field" paths first traverse nested maps and then
// fall back to the final segment, so both flat and grouped shapes work.
// The boolean reports whether the reference resolved at all.
func ResolveRef(values map[string]any, ref string) (any, bool) {
	if len(values) == 0 || ref == "" {
		return nil, false
	}
	if v, ok := values[ref]; ok {
		return v, true
	}
	if !strings.Contains(ref, ".") {
		return nil, false
	}

	segments := strings.Split(ref, ".")
	current := any(values)
	resolved := true
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			resolved = false
			break
		}
		next, ok := node[segment]
		if !ok {
			resolved = false
			break
		}
		current = next
	}
	if resolved {
		return current, true
	}

	last := segments[len(segments)-1]
	if v, ok := values[last]; ok {
		return v, true
	}
	return nil, false
}
