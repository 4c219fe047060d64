package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/rules"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/values"
)

func fixedNow(value string) func() time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

// recorder collects callback invocations so tests can assert on both the
// count and the exact payloads.
type recorder struct {
	mu    sync.Mutex
	calls []map[string]any
}

func (r *recorder) fn() ValuesFunc {
	return func(flat map[string]any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, flat)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func profileDefinition() *schema.FormDefinition {
	return &schema.FormDefinition{
		Groups: []schema.GroupDefinition{
			{
				ID: "personal_info",
				Fields: []schema.FieldDefinition{
					{
						ID:   "first_name",
						Type: schema.FieldTypeText,
						Validation: &schema.Validation{Rules: []rules.Rule{
							rules.Required("First name is required"),
							rules.MinLength(2, "At least 2 characters"),
						}},
					},
					{
						ID:   "dob",
						Type: schema.FieldTypeDate,
						Validation: &schema.Validation{Rules: []rules.Rule{
							rules.Required("Date of birth is required"),
							rules.Age(18, "Must be at least 18"),
						}},
					},
					{
						ID:      "marital_status",
						Type:    schema.FieldTypeDropdown,
						Options: []string{"Single", "Married"},
					},
					{
						ID:   "spouse_name",
						Type: schema.FieldTypeText,
						Visibility: &schema.VisibilityRule{
							DependsOn: "marital_status",
							Value:     strPtr("Married"),
						},
					},
				},
			},
		},
	}
}

func strPtr(s string) *string { return &s }

func TestStartsViewing(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "Ana"})
	defer s.Close()

	if s.Editing() || s.Saving() {
		t.Fatalf("new sessions start in viewing")
	}
	if !s.Valid() {
		t.Fatalf("no errors before any validation ran")
	}
}

func TestCancelRestoresSnapshot(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"first_name": "X"},
		WithOnValuesChange(rec.fn()))
	defer s.Close()

	s.StartEdit()
	s.SetField("first_name", "Y")
	before := rec.count()
	s.Cancel()

	if s.Editing() {
		t.Fatalf("cancel must return to viewing")
	}
	want := map[string]any{"first_name": "X"}
	if diff := cmp.Diff(want, s.Values()); diff != "" {
		t.Fatalf("working copy mismatch (-want +got):\n%s", diff)
	}
	if rec.count() != before+1 {
		t.Fatalf("cancel must always notify, got %d calls after %d", rec.count(), before)
	}
	if diff := cmp.Diff(want, rec.last()); diff != "" {
		t.Fatalf("callback payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelClearsErrors(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{})
	defer s.Close()

	s.StartEdit()
	s.Blur("first_name")
	if s.FieldError("first_name") == "" {
		t.Fatalf("expected a required error after blur")
	}
	s.Cancel()
	if !s.Valid() || s.FieldError("first_name") != "" {
		t.Fatalf("cancel must clear field errors")
	}
}

func TestSaveBlockedOnValidationError(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"dob": "1990-01-01"},
		WithOnValuesChange(rec.fn()),
		WithNow(fixedNow("2024-06-15")))
	defer s.Close()

	s.StartEdit()
	if s.Save() {
		t.Fatalf("save with an empty required field must not commit")
	}
	if !s.Editing() {
		t.Fatalf("failed save stays in editing")
	}
	if got := s.FieldError("first_name"); got != "First name is required" {
		t.Fatalf("unexpected field error %q", got)
	}
	if got := s.Message(); got != "Please fix 1 validation error before saving." {
		t.Fatalf("unexpected aggregate message %q", got)
	}
	if got := s.FirstError(); got != "first_name" {
		t.Fatalf("unexpected first error %q", got)
	}
	if rec.count() != 0 {
		t.Fatalf("blocked save must not notify")
	}
}

func TestSaveMessagePlural(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{}, WithNow(fixedNow("2024-06-15")))
	defer s.Close()

	s.StartEdit()
	s.Save()
	if got := s.Message(); got != "Please fix 2 validation errors before saving." {
		t.Fatalf("unexpected aggregate message %q", got)
	}
}

func TestSaveCommitsAndNotifiesOnChange(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"first_name": "Ana", "dob": "1990-01-01"},
		WithOnValuesChange(rec.fn()),
		WithNow(fixedNow("2024-06-15")))
	defer s.Close()

	s.StartEdit()
	s.SetField("first_name", "Anabel")
	before := rec.count()
	if !s.Save() {
		t.Fatalf("expected save to commit: %q", s.Message())
	}
	if s.Editing() {
		t.Fatalf("successful save returns to viewing")
	}
	if rec.count() != before+1 {
		t.Fatalf("save with changes must notify exactly once more")
	}
	if got := rec.last()["first_name"]; got != "Anabel" {
		t.Fatalf("payload carries the edited value, got %v", got)
	}
}

func TestSaveWithoutChangesDoesNotNotify(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"first_name": "Ana", "dob": "1990-01-01"},
		WithOnValuesChange(rec.fn()),
		WithNow(fixedNow("2024-06-15")))
	defer s.Close()

	s.StartEdit()
	if !s.Save() {
		t.Fatalf("expected save to commit: %q", s.Message())
	}
	if rec.count() != 0 {
		t.Fatalf("unchanged save must not fire the callback")
	}
}

func TestSaveOutsideEditingIsNoop(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "Ana", "dob": "1990-01-01"})
	defer s.Close()

	if s.Save() {
		t.Fatalf("save while viewing must be a no-op")
	}
}

func TestLivePropagationDeduplicates(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"first_name": "Ana"},
		WithOnValuesChange(rec.fn()))
	defer s.Close()

	s.StartEdit()
	s.SetField("first_name", "Ana") // identical, no propagation
	if rec.count() != 0 {
		t.Fatalf("unchanged value set must not propagate")
	}
	s.SetField("first_name", "Bea")
	s.SetField("first_name", "Bea") // identical again
	if rec.count() != 1 {
		t.Fatalf("expected exactly one propagation, got %d", rec.count())
	}
}

func TestNoPropagationBeforeEditing(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"first_name": "Ana"},
		WithOnValuesChange(rec.fn()))
	defer s.Close()

	s.SetField("first_name", "Bea")
	if rec.count() != 0 {
		t.Fatalf("field mutations outside editing are ignored")
	}
	if got := s.Values()["first_name"]; got != "Ana" {
		t.Fatalf("working copy must be untouched, got %v", got)
	}
}

func TestDebouncedValidationOnChange(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(),
		map[string]any{"first_name": "Ana"},
		WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.StartEdit()
	s.SetField("first_name", "")
	if s.FieldError("first_name") != "" {
		t.Fatalf("validation must wait for the debounce window")
	}

	deadline := time.Now().Add(time.Second)
	for s.FieldError("first_name") == "" {
		if time.Now().After(deadline) {
			t.Fatalf("debounced validation never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.FieldError("first_name"); got != "First name is required" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestBlurValidatesImmediately(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "A"})
	defer s.Close()

	s.StartEdit()
	s.Blur("first_name")
	if got := s.FieldError("first_name"); got != "At least 2 characters" {
		t.Fatalf("unexpected error %q", got)
	}

	s.SetField("first_name", "Ana")
	s.Blur("first_name")
	if got := s.FieldError("first_name"); got != "" {
		t.Fatalf("corrected field must clear its error, got %q", got)
	}
}

func TestExternalSyncSuppressedWhileEditing(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "Ana"})
	defer s.Close()

	s.StartEdit()
	s.SetValues(map[string]any{"first_name": "External"})
	if got := s.Values()["first_name"]; got != "Ana" {
		t.Fatalf("external sync must not apply while editing, got %v", got)
	}
}

func TestCancelSettlingSwallowsStaleEcho(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "Ana"})
	defer s.Close()

	s.StartEdit()
	s.SetField("first_name", "Bea")
	s.Cancel()

	// The echo of the cancelled edit arrives after the rollback.
	s.SetValues(map[string]any{"first_name": "Bea"})
	if got := s.Values()["first_name"]; got != "Ana" {
		t.Fatalf("stale echo must not overwrite the restored snapshot, got %v", got)
	}

	// Settling is over; genuine external updates apply again.
	s.SetValues(map[string]any{"first_name": "Carla"})
	if got := s.Values()["first_name"]; got != "Carla" {
		t.Fatalf("post-settling sync must apply, got %v", got)
	}
}

func TestToggleGroupOrthogonal(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "A"})
	defer s.Close()

	if !s.GroupOpen("personal_info") {
		t.Fatalf("groups start open")
	}
	s.StartEdit()
	s.Blur("first_name")
	errBefore := s.FieldError("first_name")

	s.ToggleGroup("personal_info")
	if s.GroupOpen("personal_info") {
		t.Fatalf("toggle should close the group")
	}
	if s.FieldError("first_name") != errBefore || !s.Editing() {
		t.Fatalf("toggling a group must not touch validation or state")
	}
}

func TestFieldVisibleFollowsWorkingCopy(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"marital_status": "Single"})
	defer s.Close()

	if s.FieldVisible("spouse_name") {
		t.Fatalf("spouse_name hidden while single")
	}
	s.StartEdit()
	s.SetField("marital_status", "Married")
	if !s.FieldVisible("spouse_name") {
		t.Fatalf("spouse_name visible once married")
	}
	if !s.FieldVisible("first_name") {
		t.Fatalf("fields without a rule are always visible")
	}
}

func TestCloseStopsSession(t *testing.T) {
	t.Parallel()

	s := New(profileDefinition(), map[string]any{"first_name": "Ana"}, WithDebounce(5*time.Millisecond))
	s.StartEdit()
	s.SetField("first_name", "")
	s.Close()

	time.Sleep(20 * time.Millisecond)
	if s.FieldError("first_name") != "" {
		t.Fatalf("closed sessions must not run pending validations")
	}
	s.SetField("first_name", "Zoe")
	if got := s.Values()["first_name"]; got != "" {
		t.Fatalf("closed sessions ignore mutations, got %v", got)
	}
}

func TestEndToEndEditFlow(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New(profileDefinition(),
		map[string]any{"first_name": "", "dob": ""},
		WithOnValuesChange(rec.fn()),
		WithNow(fixedNow("2024-06-15")))
	defer s.Close()

	s.StartEdit()
	s.SetField("first_name", "A")
	s.SetField("dob", "2010-01-01")

	if s.Save() {
		t.Fatalf("save must be blocked")
	}
	wantErrors := values.FieldErrors{
		"personal_info": {
			"first_name": "At least 2 characters",
			"dob":        "Must be at least 18",
		},
	}
	if diff := cmp.Diff(wantErrors, s.Errors()); diff != "" {
		t.Fatalf("error map mismatch (-want +got):\n%s", diff)
	}

	s.SetField("first_name", "Al")
	s.SetField("dob", "2000-01-01")
	calls := rec.count()
	if !s.Save() {
		t.Fatalf("corrected values must save: %q", s.Message())
	}
	if rec.count() != calls+1 {
		t.Fatalf("commit notifies exactly once more")
	}
	got := rec.last()
	if got["first_name"] != "Al" || got["dob"] != "2000-01-01" {
		t.Fatalf("unexpected committed payload %v", got)
	}
	if !s.Valid() || s.Message() != "" {
		t.Fatalf("successful save clears errors and message")
	}
}
