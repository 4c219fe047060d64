// Package visibility decides whether a field should be shown given the
// current form values. Rules are structured (dependsOn plus an expected
// value or a non-empty check) rather than an expression language, so
// evaluation is a pure function; the Evaluator adds an optional bounded
// cache on top for callers that re-evaluate entire forms on every change.
package visibility

import (
	"encoding/json"

	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Visible applies a field's visibility rule to the resolved dependency
// value. A field without a rule is always visible. ValueNotEmpty takes
// precedence over Value; a rule with neither set keeps the field visible.
// Comparison against Value is strict and case-sensitive.
func Visible(field *schema.FieldDefinition, dependsOnValue any) bool {
	if field == nil || field.Visibility == nil {
		return true
	}

	rule := field.Visibility
	if rule.ValueNotEmpty {
		s, isString := dependsOnValue.(string)
		return dependsOnValue != nil && (!isString || s != "")
	}

	if rule.Value != nil {
		s, isString := dependsOnValue.(string)
		return isString && s == *rule.Value
	}

	return true
}

// Evaluator resolves a field's dependency against a value map and applies
// Visible, memoizing results. Each evaluator owns its cache; concurrent
// forms must not share entries, so there is no package-level instance.
type Evaluator struct {
	cache *boundedCache
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCacheSize bounds the memoization cache. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(e *Evaluator) {
		if size > 0 {
			e.cache = newBoundedCache(size)
		} else {
			e.cache = nil
		}
	}
}

// New constructs an evaluator with the default cache size.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{cache: newBoundedCache(defaultCacheSize)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Visible resolves the field's dependency from values (bare id or dotted
// path, missing references read as absent) and applies the rule. Results
// are cached keyed by field id plus a serialization of the values map, so
// any value change produces a fresh evaluation.
func (e *Evaluator) Visible(field *schema.FieldDefinition, values map[string]any) bool {
	if field == nil || field.Visibility == nil {
		return true
	}

	var key string
	if e != nil && e.cache != nil {
		key = cacheKey(field.ID, values)
		if cached, ok := e.cache.get(key); ok {
			return cached
		}
	}

	dependsOnValue, _ := rules.ResolveRef(values, field.Visibility.DependsOn)
	visible := Visible(field, dependsOnValue)

	if e != nil && e.cache != nil {
		e.cache.put(key, visible)
	}
	return visible
}

func cacheKey(fieldID string, values map[string]any) string {
	// json.Marshal sorts map keys, making the serialization stable for
	// equal value sets.
	serialized, err := json.Marshal(values)
	if err != nil {
		return fieldID
	}
	return fieldID + "\x00" + string(serialized)
}
