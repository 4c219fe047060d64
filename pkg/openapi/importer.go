// Package openapi derives form definitions from OpenAPI 3 documents. The
// request body of one operation becomes a single-group form: object
// properties map to fields by type and format, and the schema's
// constraints (required, length, pattern, numeric bounds) become
// validation rules with generated messages.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// Importer converts OpenAPI operations into form definitions.
type Importer struct {
	resolveRefs bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithResolveReferences enables loading of external $ref targets and full
// document validation before conversion.
func WithResolveReferences() Option {
	return func(i *Importer) { i.resolveRefs = true }
}

// New constructs an Importer.
func New(opts ...Option) *Importer {
	imp := &Importer{}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Import loads an OpenAPI document from raw JSON or YAML and converts the
// request body of the operation with the given id into a form definition.
func (i *Importer) Import(ctx context.Context, raw []byte, operationID string) (*schema.FormDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.resolveRefs,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.resolveRefs {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	body := requestBodySchema(operation.RequestBody)
	if body == nil {
		return nil, fmt.Errorf("openapi: operation %q has no usable request body", operationID)
	}

	def := &schema.FormDefinition{
		Title:       operation.Summary,
		Description: operation.Description,
		Groups: []schema.GroupDefinition{{
			ID:     operationID,
			Label:  operation.Summary,
			Fields: convertProperties(body),
		}},
	}
	if def.Title == "" && doc.Info != nil {
		def.Title = doc.Info.Title
	}
	schema.Sanitize(def)
	return def, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestBodySchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// convertProperties maps the object's properties to fields. Property maps
// carry no order, so fields are emitted alphabetically by name.
func convertProperties(body *openapi3.Schema) []schema.FieldDefinition {
	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	fields := make([]schema.FieldDefinition, 0, len(names))
	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		fields = append(fields, convertProperty(name, ref.Value, required[name]))
	}
	return fields
}

func convertProperty(name string, property *openapi3.Schema, required bool) schema.FieldDefinition {
	field := schema.FieldDefinition{
		ID:           name,
		Label:        labelFromName(name),
		Type:         fieldTypeFor(property),
		Placeholder:  property.Description,
		DefaultValue: property.Default,
	}
	if len(property.Enum) > 0 {
		field.Options = enumOptions(property.Enum)
	}
	if ruleList := convertConstraints(property, required); len(ruleList) > 0 {
		field.Validation = &schema.Validation{Rules: ruleList}
	}
	return field
}

func fieldTypeFor(property *openapi3.Schema) schema.FieldType {
	if len(property.Enum) > 0 {
		return schema.FieldTypeDropdown
	}
	switch schemaType(property) {
	case "boolean":
		return schema.FieldTypeCheckbox
	case "number", "integer":
		return schema.FieldTypeNumber
	case "string":
		switch property.Format {
		case "email":
			return schema.FieldTypeEmail
		case "date", "date-time":
			return schema.FieldTypeDate
		case "password":
			return schema.FieldTypePassword
		case "uri", "url":
			return schema.FieldTypeURL
		}
		return schema.FieldTypeText
	default:
		return schema.FieldTypeText
	}
}

func convertConstraints(property *openapi3.Schema, required bool) []rules.Rule {
	var out []rules.Rule
	if required {
		out = append(out, rules.Required("This field is required"))
	}
	if property.MinLength != 0 {
		n := int(property.MinLength)
		out = append(out, rules.MinLength(n, fmt.Sprintf("Minimum length is %d", n)))
	}
	if property.MaxLength != nil {
		n := int(*property.MaxLength)
		out = append(out, rules.MaxLength(n, fmt.Sprintf("Maximum length is %d", n)))
	}
	if property.Pattern != "" {
		out = append(out, rules.Pattern(property.Pattern, "Invalid format"))
	}
	if property.Format == "email" {
		out = append(out, rules.Email("Invalid email address"))
	}
	if property.Min != nil {
		out = append(out, rules.Min(*property.Min, "Minimum value is "+formatBound(*property.Min)))
	}
	if property.Max != nil {
		out = append(out, rules.Max(*property.Max, "Maximum value is "+formatBound(*property.Max)))
	}
	return out
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func enumOptions(enum []any) []string {
	options := make([]string, 0, len(enum))
	for _, value := range enum {
		switch v := value.(type) {
		case string:
			options = append(options, v)
		case float64:
			options = append(options, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			options = append(options, strconv.FormatBool(v))
		default:
			options = append(options, fmt.Sprintf("%v", v))
		}
	}
	return options
}

func schemaType(property *openapi3.Schema) string {
	if property.Type == nil {
		return ""
	}
	values := property.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// labelFromName turns snake_case and camelCase ids into title-cased
// labels: "first_name" and "firstName" both become "First Name".
func labelFromName(name string) string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
