// Package compiler turns a form definition into a compiled validation
// schema: one value shape per field derived from the field type, the
// field's rules filtered down to the constraints that apply to that shape,
// and cross-field match rules hoisted to whole-form refinements. A
// compiled schema validates single fields in isolation or the entire flat
// value map at once, and is immutable; a changed definition means a fresh
// Compile.
//
// Compilation never fails hard. Malformed regular expressions drop the one
// constraint, and a panic anywhere in compilation degrades to an empty
// schema that accepts everything. Both paths log through the configured
// logger so broken definitions are visible without breaking the form.
package compiler

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// ValueKind is the base value shape a field validates as.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
)

// kindOf maps field types onto value shapes. Everything unrecognized
// validates as a string, the permissive default.
func kindOf(fieldType schema.FieldType) ValueKind {
	switch fieldType {
	case schema.FieldTypeNumber:
		return KindNumber
	case schema.FieldTypeCheckbox:
		return KindBool
	default:
		return KindString
	}
}

// FieldSchema is the compiled shape of one field: its value kind, whether
// it is required, and the ordered constraints that survived kind filtering.
type FieldSchema struct {
	ID       string
	GroupID  string
	Kind     ValueKind
	Required bool

	constraints []rules.Rule
}

type matchConstraint struct {
	sourceID string
	groupID  string
	rule     rules.Rule
}

type config struct {
	logger    *zap.Logger
	now       func() time.Time
	evaluator *rules.Evaluator
}

// Option configures compilation.
type Option func(*config)

// WithLogger routes degraded-mode events (skipped constraints, compile
// fallback) to the supplied logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow overrides the clock used by date and age refinements.
func WithNow(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEvaluator supplies the rule evaluator backing the compiled schema,
// typically to make registered custom validators available. It overrides
// WithNow.
func WithEvaluator(evaluator *rules.Evaluator) Option {
	return func(c *config) {
		if evaluator != nil {
			c.evaluator = evaluator
		}
	}
}

// Compile builds the validation schema for a definition. It never returns
// an error: a definition broken badly enough to panic the compiler yields
// an empty schema that accepts everything, keeping the rest of the form
// usable.
func Compile(def *schema.FormDefinition, opts ...Option) (out *Schema) {
	cfg := config{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		evaluator = rules.NewEvaluator(rules.WithNow(cfg.now))
	}

	out = &Schema{
		evaluator: evaluator,
		logger:    cfg.logger,
		fields:    make(map[string]*FieldSchema),
	}

	defer func() {
		if r := recover(); r != nil {
			cfg.logger.Error("compiler: compilation failed, falling back to empty schema",
				zap.Any("panic", r))
			out = &Schema{
				evaluator: evaluator,
				logger:    cfg.logger,
				fields:    make(map[string]*FieldSchema),
			}
		}
	}()

	if def == nil {
		return out
	}

	for _, ref := range def.OrderedFields() {
		fieldSchema, matches := compileField(ref, cfg.logger)
		out.fields[ref.Field.ID] = fieldSchema
		out.order = append(out.order, ref.Field.ID)
		out.matches = append(out.matches, matches...)
	}
	return out
}

// compileField filters a field's normalized rules down to the constraints
// that apply to its value kind, mirroring how a typed schema builder only
// accepts string constraints on string shapes and numeric bounds on
// numbers. Match rules are returned separately for whole-form handling.
func compileField(ref schema.FieldRef, logger *zap.Logger) (*FieldSchema, []matchConstraint) {
	field := ref.Field
	fs := &FieldSchema{
		ID:      field.ID,
		GroupID: ref.GroupID,
		Kind:    kindOf(field.Type),
	}

	var matches []matchConstraint
	for _, rule := range field.Validation.RuleList() {
		switch rule.Kind {
		case rules.KindRequired:
			fs.Required = true
			fs.constraints = append(fs.constraints, rule)

		case rules.KindMinLength, rules.KindMaxLength, rules.KindEmail,
			rules.KindMinDate, rules.KindMaxDate, rules.KindAge:
			if fs.Kind == KindString {
				fs.constraints = append(fs.constraints, rule)
			}

		case rules.KindPattern:
			if fs.Kind != KindString {
				continue
			}
			expr, _ := rule.Value.(string)
			if _, err := regexp.Compile(expr); err != nil {
				logger.Warn("compiler: invalid pattern skipped",
					zap.String("field", field.ID),
					zap.String("pattern", expr),
					zap.Error(err))
				continue
			}
			fs.constraints = append(fs.constraints, rule)

		case rules.KindMin, rules.KindMax:
			if fs.Kind == KindNumber {
				fs.constraints = append(fs.constraints, rule)
			}

		case rules.KindMatch:
			matches = append(matches, matchConstraint{
				sourceID: field.ID,
				groupID:  ref.GroupID,
				rule:     rule,
			})

		case rules.KindCustom:
			fs.constraints = append(fs.constraints, rule)

		default:
			// Unknown kinds produce no constraint.
		}
	}

	return fs, matches
}
