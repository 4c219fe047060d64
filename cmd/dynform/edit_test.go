package main

import (
	"testing"

	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
)

// fakeDriver feeds scripted answers, retrying with the next answer when a
// validator rejects one, the way survey re-prompts in a terminal.
type fakeDriver struct {
	answers map[string][]string
	confirm bool
	infos   []string
}

func (d *fakeDriver) next(id string) string {
	queue := d.answers[id]
	if len(queue) == 0 {
		return ""
	}
	answer := queue[0]
	d.answers[id] = queue[1:]
	return answer
}

func (d *fakeDriver) Input(field *schema.FieldDefinition, current string, validate func(string) error) (string, error) {
	answer := d.next(field.ID)
	for validate(answer) != nil {
		answer = d.next(field.ID)
	}
	return answer, nil
}

func (d *fakeDriver) Password(field *schema.FieldDefinition, validate func(string) error) (string, error) {
	return d.Input(field, "", validate)
}

func (d *fakeDriver) Select(field *schema.FieldDefinition, current string) (string, error) {
	return d.next(field.ID), nil
}

func (d *fakeDriver) Confirm(message string, def bool) (bool, error) {
	return d.confirm, nil
}

func (d *fakeDriver) Info(msg string) {
	d.infos = append(d.infos, msg)
}

func editDefinition() *schema.FormDefinition {
	return &schema.FormDefinition{
		Groups: []schema.GroupDefinition{{
			ID: "profile",
			Fields: []schema.FieldDefinition{
				{
					ID:   "name",
					Type: schema.FieldTypeText,
					Validation: &schema.Validation{Rules: []rules.Rule{
						rules.Required("Name is required"),
						rules.MinLength(2, "At least 2 characters"),
					}},
				},
				{
					ID:      "status",
					Type:    schema.FieldTypeDropdown,
					Options: []string{"Single", "Married"},
				},
				{
					ID:   "spouse",
					Type: schema.FieldTypeText,
					Visibility: &schema.VisibilityRule{
						DependsOn: "status",
						Value:     strPtr("Married"),
					},
				},
			},
		}},
	}
}

func strPtr(s string) *string { return &s }

func TestRunEditSavesAnswers(t *testing.T) {
	def := editDefinition()
	s := session.New(def, map[string]any{"name": "Old", "status": "Single"})
	defer s.Close()

	driver := &fakeDriver{
		confirm: true,
		answers: map[string][]string{
			"name":   {"A", "Ana"}, // first answer fails minLength, retry passes
			"status": {"Single"},
		},
	}

	final, err := runEdit(s, def, driver)
	if err != nil {
		t.Fatalf("runEdit: %v", err)
	}
	if final["name"] != "Ana" {
		t.Fatalf("expected retried answer to win, got %v", final["name"])
	}
	if s.Editing() {
		t.Fatalf("session must be back in viewing after save")
	}
}

func TestRunEditSkipsHiddenFields(t *testing.T) {
	def := editDefinition()
	s := session.New(def, map[string]any{"name": "Ana", "status": "Single"})
	defer s.Close()

	driver := &fakeDriver{
		confirm: true,
		answers: map[string][]string{
			"name":   {"Ana"},
			"status": {"Single"},
			"spouse": {"should never be asked"},
		},
	}

	final, err := runEdit(s, def, driver)
	if err != nil {
		t.Fatalf("runEdit: %v", err)
	}
	if _, asked := final["spouse"]; asked {
		t.Fatalf("hidden field must not be prompted")
	}
	if len(driver.answers["spouse"]) != 1 {
		t.Fatalf("spouse answer should be untouched")
	}
}

func TestRunEditPromptsFieldRevealedByEarlierAnswer(t *testing.T) {
	def := editDefinition()
	s := session.New(def, map[string]any{"name": "Ana", "status": "Single"})
	defer s.Close()

	driver := &fakeDriver{
		confirm: true,
		answers: map[string][]string{
			"name":   {"Ana"},
			"status": {"Married"},
			"spouse": {"Bea"},
		},
	}

	final, err := runEdit(s, def, driver)
	if err != nil {
		t.Fatalf("runEdit: %v", err)
	}
	if final["spouse"] != "Bea" {
		t.Fatalf("field revealed mid-edit must be prompted, got %v", final["spouse"])
	}
}

func TestRunEditDeclinedConfirmCancels(t *testing.T) {
	def := editDefinition()
	s := session.New(def, map[string]any{"name": "Old", "status": "Single"})
	defer s.Close()

	driver := &fakeDriver{
		confirm: false,
		answers: map[string][]string{
			"name":   {"Ana"},
			"status": {"Single"},
		},
	}

	if _, err := runEdit(s, def, driver); err == nil {
		t.Fatalf("declining the confirm must abort")
	}
	if got := s.Values()["name"]; got != "Old" {
		t.Fatalf("cancel must restore the original values, got %v", got)
	}
}
