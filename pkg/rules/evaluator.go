package rules

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// genericFailureMessage replaces the rule message when a custom validator
// panics, so broken extensions surface as ordinary validation failures.
const genericFailureMessage = "Validation error occurred"

// CustomFunc is a host-registered predicate backing custom rules. It
// receives the field value and the full value map and reports whether the
// value is acceptable. Implementations must not mutate values.
type CustomFunc func(value any, values map[string]any) bool

// Evaluator applies validation rules to values. It is stateless apart from
// its clock and custom-validator registry, so a single instance can serve
// any number of forms concurrently.
type Evaluator struct {
	now    func() time.Time
	custom map[string]CustomFunc
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithNow overrides the clock used by date and age rules.
func WithNow(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithValidator registers a named custom predicate.
func WithValidator(name string, fn CustomFunc) Option {
	return func(e *Evaluator) {
		e.Register(name, fn)
	}
}

// NewEvaluator constructs an evaluator with the real clock and an empty
// custom-validator registry.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{now: time.Now, custom: make(map[string]CustomFunc)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds or replaces a named custom predicate.
func (e *Evaluator) Register(name string, fn CustomFunc) {
	name = strings.TrimSpace(name)
	if e == nil || name == "" || fn == nil {
		return
	}
	if e.custom == nil {
		e.custom = make(map[string]CustomFunc)
	}
	e.custom[name] = fn
}

// ValidateField applies an ordered rule list to a value, returning the
// first failure. A field with no rules is always valid.
func (e *Evaluator) ValidateField(value any, rls []Rule, values map[string]any) Result {
	for _, rule := range rls {
		if result := e.Evaluate(value, rule, values); !result.Valid {
			return result
		}
	}
	return pass()
}

// Evaluate applies a single rule to a value. values supplies cross-field
// context for match and custom rules; it is read, never written. Rules of
// unknown kind pass, keeping older engines compatible with newer
// definitions.
func (e *Evaluator) Evaluate(value any, rule Rule, values map[string]any) Result {
	switch rule.Kind {
	case KindRequired:
		return evalRequired(value, rule)
	case KindMinLength:
		return evalMinLength(value, rule)
	case KindMaxLength:
		return evalMaxLength(value, rule)
	case KindPattern:
		return evalPattern(value, rule)
	case KindEmail:
		return evalEmail(value, rule)
	case KindMin:
		return evalMin(value, rule)
	case KindMax:
		return evalMax(value, rule)
	case KindMinDate:
		return e.evalMinDate(value, rule)
	case KindMaxDate:
		return e.evalMaxDate(value, rule)
	case KindAge:
		return e.evalAge(value, rule)
	case KindMatch:
		return evalMatch(value, rule, values)
	case KindCustom:
		return e.evalCustom(value, rule, values)
	default:
		return pass()
	}
}

func evalRequired(value any, rule Rule) Result {
	if isEmpty(value) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func evalMinLength(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	min, ok := toNumber(rule.Value)
	if !ok {
		return pass()
	}
	if len([]rune(stringify(value))) < int(min) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func evalMaxLength(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	max, ok := toNumber(rule.Value)
	if !ok {
		return pass()
	}
	if len([]rune(stringify(value))) > int(max) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func evalPattern(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	expr, ok := rule.Value.(string)
	if !ok || expr == "" {
		return pass()
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		// A malformed expression degrades to no constraint; the compiler
		// reports it once at compile time.
		return pass()
	}
	if !re.MatchString(stringify(value)) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func evalEmail(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	if !emailPattern.MatchString(stringify(value)) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func evalMin(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	n, ok := toNumber(value)
	if !ok {
		return pass()
	}
	bound, ok := toNumber(rule.Value)
	if !ok {
		return pass()
	}
	if n < bound {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func evalMax(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	n, ok := toNumber(value)
	if !ok {
		return pass()
	}
	bound, ok := toNumber(rule.Value)
	if !ok {
		return pass()
	}
	if n > bound {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func (e *Evaluator) evalMinDate(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	input, ok := parseDate(value)
	if !ok {
		return pass()
	}
	if literal, _ := rule.Value.(string); literal == "today" {
		// Day-level comparison: a value dated today is on the boundary and
		// passes regardless of time of day.
		if dayOf(input).Before(dayOf(e.now())) {
			return fail(rule.ErrorMessage)
		}
		return pass()
	}
	bound, ok := parseDate(rule.Value)
	if !ok {
		return pass()
	}
	if input.Before(bound) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func (e *Evaluator) evalMaxDate(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	input, ok := parseDate(value)
	if !ok {
		return pass()
	}
	if literal, _ := rule.Value.(string); literal == "today" {
		if dayOf(input).After(dayOf(e.now())) {
			return fail(rule.ErrorMessage)
		}
		return pass()
	}
	bound, ok := parseDate(rule.Value)
	if !ok {
		return pass()
	}
	if input.After(bound) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func (e *Evaluator) evalAge(value any, rule Rule) Result {
	if isFalsy(value) {
		return pass()
	}
	dob, ok := parseDate(value)
	if !ok {
		return pass()
	}
	minYears, ok := toNumber(rule.Value)
	if !ok {
		return pass()
	}
	if ageInYears(dob, e.now()) < int(minYears) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

// ageInYears computes age in whole years, subtracting one when the
// birthday has not yet occurred this year.
func ageInYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func evalMatch(value any, rule Rule, values map[string]any) Result {
	target, found := ResolveRef(values, rule.Field)
	if !found {
		// A dangling reference fails loudly instead of passing silently.
		return fail(rule.ErrorMessage)
	}
	if strings.TrimSpace(stringify(value)) != strings.TrimSpace(stringify(target)) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

func (e *Evaluator) evalCustom(value any, rule Rule, values map[string]any) (result Result) {
	fn, ok := e.custom[strings.TrimSpace(rule.Validator)]
	if !ok {
		return fail(rule.ErrorMessage)
	}
	defer func() {
		if recover() != nil {
			result = fail(genericFailureMessage)
		}
	}()
	if !fn(value, values) {
		return fail(rule.ErrorMessage)
	}
	return pass()
}

var defaultEvaluator = NewEvaluator()

// Evaluate applies a single rule using the package-default evaluator.
func Evaluate(value any, rule Rule, values map[string]any) Result {
	return defaultEvaluator.Evaluate(value, rule, values)
}

// ValidateField applies an ordered rule list using the package-default
// evaluator.
func ValidateField(value any, rls []Rule, values map[string]any) Result {
	return defaultEvaluator.ValidateField(value, rls, values)
}

// HasRequired reports whether the rule list carries a required constraint.
func HasRequired(rls []Rule) bool {
	for _, rule := range rls {
		if rule.Kind == KindRequired {
			return true
		}
	}
	return false
}
