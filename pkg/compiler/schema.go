package compiler

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/values"
)

// Schema is a compiled, immutable validation schema for one form
// definition. It validates individual fields by id or the whole flat value
// map at once.
type Schema struct {
	evaluator *rules.Evaluator
	logger    *zap.Logger

	fields  map[string]*FieldSchema
	order   []string
	matches []matchConstraint
}

// Report is the outcome of whole-form validation. Errors maps field id to
// the first failing message; Grouped mirrors it in the group/field shape;
// First is the first failing field in definition order (group order, then
// field order), not error-insertion order.
type Report struct {
	Valid   bool
	Errors  map[string]string
	Grouped values.FieldErrors
	First   string
}

// Empty reports whether the schema carries no field shapes, which is the
// degraded fallback produced when compilation fails.
func (s *Schema) Empty() bool {
	return s == nil || len(s.fields) == 0
}

// Field returns the compiled shape for a field id.
func (s *Schema) Field(id string) (*FieldSchema, bool) {
	if s == nil {
		return nil, false
	}
	fs, ok := s.fields[id]
	return fs, ok
}

// ValidateField validates a single field's value in isolation. Fields
// unknown to the schema are valid; cross-field match rules are not part of
// per-field validation and only run through Validate.
func (s *Schema) ValidateField(id string, value any, flat map[string]any) rules.Result {
	if s == nil {
		return rules.Result{Valid: true}
	}
	fs, ok := s.fields[id]
	if !ok {
		return rules.Result{Valid: true}
	}
	return s.evaluator.ValidateField(value, fs.constraints, flat)
}

// Validate runs every field shape against the flat value map, then applies
// the whole-form match refinements. A match failure is reported against
// the declaring (source) field, and never overwrites an error that field
// already has.
func (s *Schema) Validate(flat map[string]any) *Report {
	report := &Report{
		Valid:   true,
		Errors:  make(map[string]string),
		Grouped: make(values.FieldErrors),
	}
	if s == nil {
		return report
	}

	for _, id := range s.order {
		fs := s.fields[id]
		result := s.evaluator.ValidateField(flat[id], fs.constraints, flat)
		if !result.Valid {
			report.Errors[id] = result.Message
			report.Grouped.Set(fs.GroupID, id, result.Message)
		}
	}

	for _, match := range s.matches {
		if _, already := report.Errors[match.sourceID]; already {
			continue
		}
		result := s.evaluator.Evaluate(flat[match.sourceID], match.rule, flat)
		if !result.Valid {
			report.Errors[match.sourceID] = result.Message
			report.Grouped.Set(match.groupID, match.sourceID, result.Message)
		}
	}

	if len(report.Errors) > 0 {
		report.Valid = false
		for _, id := range s.order {
			if _, failed := report.Errors[id]; failed {
				report.First = id
				break
			}
		}
	}
	return report
}
