package rules

import "fmt"

// Legacy is the older single-object validation encoding still present in
// stored form definitions. It is never evaluated directly; Rules converts
// it into the ordered array encoding first so only one code path applies
// constraints.
type Legacy struct {
	Required     bool         `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength    *int         `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int         `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern      string       `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinDate      string       `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate      string       `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`
	Min          *float64     `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64     `json:"max,omitempty" yaml:"max,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Match        *LegacyMatch `json:"match,omitempty" yaml:"match,omitempty"`
}

// LegacyMatch is the cross-field clause of the legacy encoding.
type LegacyMatch struct {
	Field        string `json:"field" yaml:"field"`
	ErrorMessage string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// Rules expands the legacy object into the ordered array encoding. The
// order is fixed (required, minLength, maxLength, pattern, minDate,
// maxDate, min, max, match) and determines which message wins when
// several constraints fail at once. The shared ErrorMessage applies to
// every expanded rule, falling back to a per-constraint default.
func (l *Legacy) Rules() []Rule {
	if l == nil {
		return nil
	}

	message := func(fallback string) string {
		if l.ErrorMessage != "" {
			return l.ErrorMessage
		}
		return fallback
	}

	var out []Rule
	if l.Required {
		out = append(out, Required(message("This field is required")))
	}
	if l.MinLength != nil {
		out = append(out, MinLength(*l.MinLength, message(fmt.Sprintf("Minimum length is %d", *l.MinLength))))
	}
	if l.MaxLength != nil {
		out = append(out, MaxLength(*l.MaxLength, message(fmt.Sprintf("Maximum length is %d", *l.MaxLength))))
	}
	if l.Pattern != "" {
		out = append(out, Pattern(l.Pattern, message("Invalid format")))
	}
	if l.MinDate != "" {
		out = append(out, MinDate(l.MinDate, message("Date is too early")))
	}
	if l.MaxDate != "" {
		out = append(out, MaxDate(l.MaxDate, message("Date is too late")))
	}
	if l.Min != nil {
		out = append(out, Min(*l.Min, message(fmt.Sprintf("Minimum value is %s", formatNumber(*l.Min)))))
	}
	if l.Max != nil {
		out = append(out, Max(*l.Max, message(fmt.Sprintf("Maximum value is %s", formatNumber(*l.Max)))))
	}
	if l.Match != nil {
		matchMessage := l.Match.ErrorMessage
		if matchMessage == "" {
			matchMessage = "Values do not match"
		}
		out = append(out, Match(l.Match.Field, matchMessage))
	}
	return out
}

// Empty reports whether the legacy object carries no constraints at all.
func (l *Legacy) Empty() bool {
	return l == nil || len(l.Rules()) == 0
}
