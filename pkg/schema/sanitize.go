package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// Sanitize strips markup from every user-visible string in the definition.
// Definitions are externally supplied data; labels and descriptions end up
// in rendered output, so they pass through a strict policy that allows no
// elements at all. Field ids, rule parameters and values are left alone.
func Sanitize(def *FormDefinition) {
	if def == nil {
		return
	}
	policy := sanitizer()

	def.Title = sanitizeText(policy, def.Title)
	def.Description = sanitizeText(policy, def.Description)
	def.SubmitLabel = sanitizeText(policy, def.SubmitLabel)

	for gi := range def.Groups {
		group := &def.Groups[gi]
		group.Label = sanitizeText(policy, group.Label)
		group.Description = sanitizeText(policy, group.Description)
		for fi := range group.Fields {
			field := &group.Fields[fi]
			field.Label = sanitizeText(policy, field.Label)
			field.Placeholder = sanitizeText(policy, field.Placeholder)
			for oi := range field.Options {
				field.Options[oi] = sanitizeText(policy, field.Options[oi])
			}
		}
	}
}

func sanitizeText(policy *bluemonday.Policy, raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(raw))
}
