package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/rules"
)

// Validation is the sum of the two validation encodings a field may carry:
// the ordered rule array or the older single-object form. Exactly one side
// is populated after unmarshalling. RuleList is the only consumer-facing
// accessor, so the legacy expansion order is encoded in one place
// (rules.Legacy.Rules).
type Validation struct {
	Rules  []rules.Rule
	Legacy *rules.Legacy
}

// RuleList returns the constraints in their normalized ordered form. Safe
// on a nil receiver: a field without validation has no rules.
func (v *Validation) RuleList() []rules.Rule {
	if v == nil {
		return nil
	}
	if v.Rules != nil {
		return v.Rules
	}
	return v.Legacy.Rules()
}

// Empty reports whether no constraints are present in either encoding.
func (v *Validation) Empty() bool {
	return v == nil || len(v.RuleList()) == 0
}

// HasRequired reports whether the field carries a required constraint in
// either encoding.
func (v *Validation) HasRequired() bool {
	return rules.HasRequired(v.RuleList())
}

// UnmarshalJSON decodes either encoding, deciding by the leading token.
func (v *Validation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Validation{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []rules.Rule
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("schema: validation rule array: %w", err)
		}
		*v = Validation{Rules: list}
		return nil
	case '{':
		var legacy rules.Legacy
		if err := json.Unmarshal(data, &legacy); err != nil {
			return fmt.Errorf("schema: legacy validation object: %w", err)
		}
		*v = Validation{Legacy: &legacy}
		return nil
	default:
		return fmt.Errorf("schema: validation must be an array or an object")
	}
}

// MarshalJSON re-emits whichever encoding the value was parsed from, so
// definitions round-trip without silently migrating formats.
func (v Validation) MarshalJSON() ([]byte, error) {
	if v.Rules != nil {
		return json.Marshal(v.Rules)
	}
	if v.Legacy != nil {
		return json.Marshal(v.Legacy)
	}
	return []byte("null"), nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (v *Validation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []rules.Rule
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("schema: validation rule array: %w", err)
		}
		*v = Validation{Rules: list}
		return nil
	case yaml.MappingNode:
		var legacy rules.Legacy
		if err := node.Decode(&legacy); err != nil {
			return fmt.Errorf("schema: legacy validation object: %w", err)
		}
		*v = Validation{Legacy: &legacy}
		return nil
	default:
		return fmt.Errorf("schema: validation must be a sequence or a mapping")
	}
}
