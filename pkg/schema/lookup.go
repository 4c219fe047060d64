package schema

// FieldRef pairs a field with the group that owns it.
type FieldRef struct {
	GroupID string
	Field   *FieldDefinition
}

// Lookup is a flat index from field id to its definition and group,
// rebuilt whenever the definition changes.
type Lookup map[string]FieldRef

// BuildLookup indexes every field of the form by id. Later duplicates win,
// matching the behaviour of a flat value map keyed by field id.
func (d *FormDefinition) BuildLookup() Lookup {
	lookup := make(Lookup)
	if d == nil {
		return lookup
	}
	for gi := range d.Groups {
		group := &d.Groups[gi]
		for fi := range group.Fields {
			field := &group.Fields[fi]
			lookup[field.ID] = FieldRef{GroupID: group.ID, Field: field}
		}
	}
	return lookup
}

// FieldByID locates a field anywhere in the form, returning its group id.
func (d *FormDefinition) FieldByID(id string) (*FieldDefinition, string, bool) {
	if d == nil {
		return nil, "", false
	}
	for gi := range d.Groups {
		group := &d.Groups[gi]
		for fi := range group.Fields {
			if group.Fields[fi].ID == id {
				return &group.Fields[fi], group.ID, true
			}
		}
	}
	return nil, "", false
}

// GroupByID locates a group by id.
func (d *FormDefinition) GroupByID(id string) (*GroupDefinition, bool) {
	if d == nil {
		return nil, false
	}
	for gi := range d.Groups {
		if d.Groups[gi].ID == id {
			return &d.Groups[gi], true
		}
	}
	return nil, false
}

// OrderedFields returns every field in definition order: group order
// first, then field order within the group. This is the canonical order
// for "first error" reporting.
func (d *FormDefinition) OrderedFields() []FieldRef {
	if d == nil {
		return nil
	}
	var out []FieldRef
	for gi := range d.Groups {
		group := &d.Groups[gi]
		for fi := range group.Fields {
			out = append(out, FieldRef{GroupID: group.ID, Field: &group.Fields[fi]})
		}
	}
	return out
}
