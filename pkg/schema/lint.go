package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-dynform/pkg/rules"
)

// Issue is a single lint finding. Warnings describe definitions the engine
// tolerates at runtime (dangling references degrade to absent values);
// non-warnings are structural problems worth fixing before shipping a
// definition.
type Issue struct {
	Path    string
	Message string
	Warning bool
}

func (i Issue) String() string {
	severity := "error"
	if i.Warning {
		severity = "warning"
	}
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", severity, i.Path, i.Message)
}

var (
	lintValidatorOnce sync.Once
	lintValidator     *validator.Validate
)

func structValidator() *validator.Validate {
	lintValidatorOnce.Do(func() {
		lintValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return lintValidator
}

// Lint checks a definition for structural problems: missing ids, duplicate
// field ids, and visibility or match references that do not resolve to any
// field in the form. It never rejects a definition outright; callers decide
// what to do with the findings.
func Lint(def *FormDefinition) []Issue {
	if def == nil {
		return []Issue{{Message: "definition is nil"}}
	}

	var issues []Issue

	if err := structValidator().Struct(def); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok {
			for _, fe := range fieldErrs {
				issues = append(issues, Issue{
					Path:    strings.TrimPrefix(fe.Namespace(), "FormDefinition."),
					Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
				})
			}
		} else {
			issues = append(issues, Issue{Message: err.Error()})
		}
	}

	seen := make(map[string]string)
	for _, ref := range def.OrderedFields() {
		if ref.Field.ID == "" {
			continue
		}
		if prior, dup := seen[ref.Field.ID]; dup {
			issues = append(issues, Issue{
				Path:    ref.GroupID + "." + ref.Field.ID,
				Message: fmt.Sprintf("duplicate field id (also in group %q)", prior),
			})
			continue
		}
		seen[ref.Field.ID] = ref.GroupID
	}

	lookup := def.BuildLookup()
	for _, ref := range def.OrderedFields() {
		path := ref.GroupID + "." + ref.Field.ID
		if vis := ref.Field.Visibility; vis != nil {
			if !refResolves(lookup, vis.DependsOn) {
				issues = append(issues, Issue{
					Path:    path,
					Message: fmt.Sprintf("visibility depends on unknown field %q", vis.DependsOn),
					Warning: true,
				})
			}
		}
		for _, rule := range ref.Field.Validation.RuleList() {
			if rule.Kind == rules.KindMatch && !refResolves(lookup, rule.Field) {
				issues = append(issues, Issue{
					Path:    path,
					Message: fmt.Sprintf("match rule references unknown field %q", rule.Field),
					Warning: true,
				})
			}
		}
	}

	return issues
}

func refResolves(lookup Lookup, ref string) bool {
	if ref == "" {
		return false
	}
	if _, ok := lookup[ref]; ok {
		return true
	}
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		_, ok := lookup[ref[idx+1:]]
		return ok
	}
	return false
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = fieldErrs
	return true
}
