// Package dynform is a dynamic form engine: declarative form definitions
// with rule-based validation, conditional visibility, a compiled
// whole-form validation schema, and an edit/save/cancel session with
// rollback. The root package re-exports the common types and offers
// one-call entry points; the pkg subpackages hold the implementations.
package dynform

import (
	"github.com/goliatone/go-dynform/pkg/compiler"
	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
)

// FormDefinition is the root of a declarative form.
type FormDefinition = schema.FormDefinition

// GroupDefinition is a titled collection of fields.
type GroupDefinition = schema.GroupDefinition

// FieldDefinition describes one input of a form.
type FieldDefinition = schema.FieldDefinition

// Rule is a single validation constraint.
type Rule = rules.Rule

// Session drives a form through view and edit modes.
type Session = session.Session

// SessionOption configures a session created through Open or New.
type SessionOption = session.Option

// Parse decodes a JSON or YAML form definition and sanitizes its
// user-visible text.
func Parse(data []byte) (*FormDefinition, error) {
	return schema.Parse(data)
}

// Compile builds the validation schema for a definition.
func Compile(def *FormDefinition, opts ...compiler.Option) *compiler.Schema {
	return compiler.Compile(def, opts...)
}

// NewSession creates an edit session over an already parsed definition.
func NewSession(def *FormDefinition, flat map[string]any, opts ...SessionOption) *Session {
	return session.New(def, flat, opts...)
}

// Open parses a raw definition and creates a session over it in one call,
// the common path for callers holding a JSON document and a value map.
func Open(data []byte, flat map[string]any, opts ...SessionOption) (*Session, error) {
	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return session.New(def, flat, opts...), nil
}
