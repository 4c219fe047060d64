package schema

// FieldType is the form-friendly input kind for a field. Unknown values are
// tolerated; they render and validate as plain text.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeNumber   FieldType = "number"
	FieldTypePassword FieldType = "password"
	FieldTypeURL      FieldType = "url"
)

// VisibilityRule makes a field conditional on another field's current
// value. DependsOn is a bare field id or a dotted "group.field" path.
// ValueNotEmpty takes precedence over Value; with neither set the field is
// always visible.
type VisibilityRule struct {
	DependsOn     string  `json:"dependsOn" yaml:"dependsOn"`
	Value         *string `json:"value,omitempty" yaml:"value,omitempty"`
	ValueNotEmpty bool    `json:"valueNotEmpty,omitempty" yaml:"valueNotEmpty,omitempty"`
}

// FieldDefinition describes one input of a form. ID must be unique across
// the entire form, not just its group; the flat value map is keyed by it.
type FieldDefinition struct {
	ID           string          `json:"id" yaml:"id" validate:"required"`
	Label        string          `json:"label" yaml:"label"`
	Type         FieldType       `json:"type" yaml:"type"`
	Placeholder  string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	DefaultValue any             `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Options      []string        `json:"options,omitempty" yaml:"options,omitempty"`
	Validation   *Validation     `json:"validation,omitempty" yaml:"validation,omitempty"`
	Visibility   *VisibilityRule `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	UI           map[string]any  `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// GroupDefinition is a titled collection of fields. Groups without fields
// are skipped entirely: they produce no UI sections, no error map entries
// and no validation work.
type GroupDefinition struct {
	ID          string            `json:"id" yaml:"id" validate:"required"`
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	UI          map[string]any    `json:"ui,omitempty" yaml:"ui,omitempty"`
	Fields      []FieldDefinition `json:"fields,omitempty" yaml:"fields,omitempty" validate:"dive"`
}

// FormDefinition is the root of a declarative form. It is treated as
// immutable once handed to the engine; deriving structures (lookup,
// compiled schema, session state) are rebuilt from scratch for a new
// definition.
type FormDefinition struct {
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	SubmitLabel string            `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	Groups      []GroupDefinition `json:"groups" yaml:"groups" validate:"dive"`
}

// Empty reports whether the group contributes nothing to the form.
func (g *GroupDefinition) Empty() bool {
	return g == nil || len(g.Fields) == 0
}
