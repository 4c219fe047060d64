// Package values holds the working representations of form data: the flat
// map keyed by field id, the grouped map keyed by group then field, and
// the error map that mirrors the grouped shape. Conversions between the
// two shapes treat the form definition as authoritative: flat keys that do
// not correspond to a defined field are dropped on the way to the grouped
// shape and therefore lost on a round trip. That asymmetry is intentional;
// stray keys from stale payloads must not leak back out.
package values

import (
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Flat is the external shape: field id to value.
type Flat = map[string]any

// Grouped is the internal shape: group id to field id to value.
type Grouped = map[string]map[string]any

// ToGrouped converts a flat value map into the grouped shape. Every
// non-empty group of the definition gets an entry; only values for defined
// fields survive.
func ToGrouped(flat Flat, def *schema.FormDefinition) Grouped {
	grouped := make(Grouped)
	if def == nil {
		return grouped
	}
	for gi := range def.Groups {
		group := &def.Groups[gi]
		if group.Empty() {
			continue
		}
		bucket := make(map[string]any)
		for fi := range group.Fields {
			id := group.Fields[fi].ID
			if v, ok := flat[id]; ok {
				bucket[id] = v
			}
		}
		grouped[group.ID] = bucket
	}
	return grouped
}

// ToFlat flattens a grouped value map. Field ids are unique across the
// form, so no collision handling is needed.
func ToFlat(grouped Grouped) Flat {
	flat := make(Flat)
	for _, bucket := range grouped {
		for id, v := range bucket {
			flat[id] = v
		}
	}
	return flat
}

// Clone deep-copies a value built from JSON-shaped data (maps, slices,
// scalars). Snapshot and working copies must never share mutable
// sub-structures.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = Clone(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = Clone(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// CloneFlat deep-copies a flat value map, returning an empty map for nil
// input so callers can mutate the result unconditionally.
func CloneFlat(flat Flat) Flat {
	if len(flat) == 0 {
		return make(Flat)
	}
	out := make(Flat, len(flat))
	for k, v := range flat {
		out[k] = Clone(v)
	}
	return out
}

// Equal reports deep structural equality between two JSON-shaped values.
// Map comparison is order-insensitive; numeric values compare by their
// float64 representation since that is how JSON numbers decode.
func Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}

	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, present := bv[k]
			if !present || !Equal(v, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bv, ok := numeric(b)
		if !ok {
			return false
		}
		return av == bv
	case int:
		bv, ok := numeric(b)
		if !ok {
			return false
		}
		return float64(av) == bv
	default:
		return a == b
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
