package rules

// Kind identifies a validation rule. Unknown kinds are tolerated end to end:
// the evaluator treats them as passing and the compiler produces no
// constraint, so definitions written against a newer rule set degrade
// instead of breaking.
type Kind string

const (
	KindRequired  Kind = "required"
	KindMinLength Kind = "minLength"
	KindMaxLength Kind = "maxLength"
	KindPattern   Kind = "pattern"
	KindEmail     Kind = "email"
	KindMin       Kind = "min"
	KindMax       Kind = "max"
	KindMinDate   Kind = "minDate"
	KindMaxDate   Kind = "maxDate"
	KindAge       Kind = "age"
	KindMatch     Kind = "match"
	KindCustom    Kind = "custom"
)

// Rule is a single validation constraint in the ordered array encoding.
// Value carries the rule threshold (length, bound, date literal, minimum
// age) where applicable; Field references the counterpart field for match
// rules, either as a bare field id or a dotted "group.field" path;
// Validator names a registered custom predicate.
type Rule struct {
	Kind         Kind   `json:"type" yaml:"type"`
	Value        any    `json:"value,omitempty" yaml:"value,omitempty"`
	Field        string `json:"field,omitempty" yaml:"field,omitempty"`
	Validator    string `json:"validator,omitempty" yaml:"validator,omitempty"`
	ErrorMessage string `json:"errorMessage" yaml:"errorMessage"`
}

// Result is the outcome of evaluating one rule or one field. Message is
// populated only when Valid is false.
type Result struct {
	Valid   bool
	Message string
}

func pass() Result               { return Result{Valid: true} }
func fail(message string) Result { return Result{Valid: false, Message: message} }

// Required builds a required rule with the supplied message.
func Required(message string) Rule {
	return Rule{Kind: KindRequired, ErrorMessage: message}
}

// MinLength builds a minimum-length rule.
func MinLength(length int, message string) Rule {
	return Rule{Kind: KindMinLength, Value: length, ErrorMessage: message}
}

// MaxLength builds a maximum-length rule.
func MaxLength(length int, message string) Rule {
	return Rule{Kind: KindMaxLength, Value: length, ErrorMessage: message}
}

// Pattern builds a regular-expression rule.
func Pattern(expr string, message string) Rule {
	return Rule{Kind: KindPattern, Value: expr, ErrorMessage: message}
}

// Email builds an email-format rule.
func Email(message string) Rule {
	return Rule{Kind: KindEmail, ErrorMessage: message}
}

// Min builds a numeric lower-bound rule.
func Min(value float64, message string) Rule {
	return Rule{Kind: KindMin, Value: value, ErrorMessage: message}
}

// Max builds a numeric upper-bound rule.
func Max(value float64, message string) Rule {
	return Rule{Kind: KindMax, Value: value, ErrorMessage: message}
}

// MinDate builds an earliest-date rule. The literal "today" resolves at
// evaluation time.
func MinDate(date string, message string) Rule {
	return Rule{Kind: KindMinDate, Value: date, ErrorMessage: message}
}

// MaxDate builds a latest-date rule. The literal "today" resolves at
// evaluation time.
func MaxDate(date string, message string) Rule {
	return Rule{Kind: KindMaxDate, Value: date, ErrorMessage: message}
}

// Age builds a minimum-age rule for date-of-birth values.
func Age(minYears int, message string) Rule {
	return Rule{Kind: KindAge, Value: minYears, ErrorMessage: message}
}

// Match builds a cross-field equality rule. fieldRef may be a bare field id
// or a dotted "group.field" path.
func Match(fieldRef string, message string) Rule {
	return Rule{Kind: KindMatch, Field: fieldRef, ErrorMessage: message}
}

// Custom builds a rule backed by a validator registered on the evaluator.
func Custom(validator string, message string) Rule {
	return Rule{Kind: KindCustom, Validator: validator, ErrorMessage: message}
}
