// Package session owns the edit/save/cancel lifecycle of a form. A
// Session wraps a form definition, a compiled validation schema, and a
// flat working copy of values, and moves between Viewing, Editing, and
// Saving. Editing works on a local copy; the pre-edit values are
// snapshotted so cancel restores them exactly, and save only notifies the
// external callback when something actually changed.
//
// Methods are safe for concurrent use. Debounced validation fires on
// runtime goroutines, so every entry point takes the session mutex;
// external callbacks are always invoked after the mutex is released.
package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/compiler"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/values"
	"github.com/goliatone/go-dynform/pkg/visibility"
)

// State is the session's position in the edit lifecycle.
type State int

const (
	StateViewing State = iota
	StateEditing
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// ValuesFunc receives the full flat value map whenever the session
// publishes values: live during editing, once on a successful save that
// changed something, and once with the original values on cancel.
type ValuesFunc func(flat map[string]any)

const defaultDebounce = 300 * time.Millisecond

// Session drives one form through view and edit modes.
type Session struct {
	mu sync.Mutex

	def      *schema.FormDefinition
	lookup   schema.Lookup
	compiled *compiler.Schema
	visible  *visibility.Evaluator
	logger   *zap.Logger

	working  map[string]any
	snapshot map[string]any

	state    State
	saving   bool
	settling bool
	closed   bool

	errors  map[string]string
	grouped values.FieldErrors
	message string
	first   string

	open map[string]bool

	onValues       ValuesFunc
	lastPropagated string

	debounce time.Duration
	timers   map[string]*time.Timer
}

// New creates a session in the Viewing state over a definition and the
// externally supplied flat values.
func New(def *schema.FormDefinition, flat map[string]any, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	compileOpts := []compiler.Option{
		compiler.WithLogger(cfg.logger),
		compiler.WithNow(cfg.now),
	}
	if cfg.evaluator != nil {
		compileOpts = append(compileOpts, compiler.WithEvaluator(cfg.evaluator))
	}

	s := &Session{
		def:      def,
		lookup:   def.BuildLookup(),
		compiled: compiler.Compile(def, compileOpts...),
		visible:  visibility.New(visibilityOpts(cfg)...),
		logger:   cfg.logger,
		working:  values.CloneFlat(flat),
		errors:   make(map[string]string),
		grouped:  make(values.FieldErrors),
		open:     make(map[string]bool),
		onValues: cfg.onValues,
		debounce: cfg.debounce,
		timers:   make(map[string]*time.Timer),
	}
	if def != nil {
		for _, group := range def.Groups {
			s.open[group.ID] = true
		}
	}
	return s
}

func visibilityOpts(cfg config) []visibility.Option {
	if cfg.cacheSize > 0 {
		return []visibility.Option{visibility.WithCacheSize(cfg.cacheSize)}
	}
	return nil
}

// StartEdit snapshots the current values as the rollback point and moves
// to Editing. It is a no-op outside Viewing.
func (s *Session) StartEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateViewing || s.closed {
		return
	}
	s.snapshot = values.CloneFlat(s.working)
	s.errors = make(map[string]string)
	s.grouped = make(values.FieldErrors)
	s.message = ""
	s.first = ""
	s.settling = false
	s.lastPropagated = serialize(s.working)
	s.state = StateEditing
}

// SetField updates one field in the working copy. While editing, the
// change is propagated live to the values callback, but only when the
// serialized value set actually differs from the last propagated one.
// Validation for the field is scheduled on the trailing edge of the
// debounce window.
func (s *Session) SetField(id string, value any) {
	s.mu.Lock()
	if s.state != StateEditing || s.closed {
		s.mu.Unlock()
		return
	}
	s.working[id] = value
	s.scheduleValidationLocked(id)

	var notify map[string]any
	if serialized := serialize(s.working); serialized != s.lastPropagated {
		s.lastPropagated = serialized
		notify = values.CloneFlat(s.working)
	}
	callback := s.onValues
	s.mu.Unlock()

	if notify != nil && callback != nil {
		callback(notify)
	}
}

// Blur validates a field immediately, cancelling any pending debounced
// run for it.
func (s *Session) Blur(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing || s.closed {
		return
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.validateFieldLocked(id)
}

// Save runs full-form validation. On failure the session stays in
// Editing with a populated error map, an aggregate message, and the first
// failing field in definition order. On success it transitions to
// Viewing and invokes the values callback once, but only when the values
// differ from the pre-edit snapshot. Overlapping saves are no-ops. The
// return value reports whether the save committed.
func (s *Session) Save() bool {
	s.mu.Lock()
	if s.state != StateEditing || s.saving || s.closed {
		s.mu.Unlock()
		return false
	}
	s.saving = true
	s.state = StateSaving
	s.stopTimersLocked()

	report := s.compiled.Validate(s.working)
	if !report.Valid {
		s.errors = report.Errors
		s.grouped = report.Grouped
		s.first = report.First
		s.message = saveBlockedMessage(len(report.Errors))
		s.state = StateEditing
		s.saving = false
		s.mu.Unlock()
		return false
	}

	s.errors = make(map[string]string)
	s.grouped = make(values.FieldErrors)
	s.message = ""
	s.first = ""
	s.state = StateViewing
	s.saving = false

	var notify map[string]any
	if !values.Equal(s.working, s.snapshot) {
		notify = values.CloneFlat(s.working)
	}
	s.snapshot = nil
	callback := s.onValues
	s.mu.Unlock()

	if notify != nil && callback != nil {
		callback(notify)
	}
	return true
}

// Cancel discards all local edits, restores the pre-edit snapshot, clears
// every field error, and always notifies the values callback with the
// restored values: the caller may have observed intermediate edits
// through live propagation and must be rolled back explicitly.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state != StateEditing || s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimersLocked()
	s.working = values.CloneFlat(s.snapshot)
	s.errors = make(map[string]string)
	s.grouped = make(values.FieldErrors)
	s.message = ""
	s.first = ""
	s.state = StateViewing
	s.settling = true

	notify := values.CloneFlat(s.working)
	callback := s.onValues
	s.mu.Unlock()

	if callback != nil {
		callback(notify)
	}
}

// SetValues re-synchronizes the working copy from external values. It is
// suppressed while editing, and while a cancel is settling the first
// incoming set is dropped unless it equals the restored snapshot, so an
// external echo of the just-cancelled edits cannot overwrite the rollback.
func (s *Session) SetValues(flat map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateViewing || s.closed {
		return
	}
	if s.settling {
		s.settling = false
		if !values.Equal(flat, s.working) {
			return
		}
	}
	s.working = values.CloneFlat(flat)
}

// ToggleGroup flips a group's open state. It has no effect on values or
// validation.
func (s *Session) ToggleGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[id] = !s.open[id]
}

// GroupOpen reports whether a group is expanded. Groups start open.
func (s *Session) GroupOpen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open[id]
}

// FieldError returns the current message for a field, empty when valid.
func (s *Session) FieldError(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[id]
}

// Errors returns a copy of the grouped error map.
func (s *Session) Errors() values.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(values.FieldErrors, len(s.grouped))
	for groupID, fields := range s.grouped {
		bucket := make(map[string]string, len(fields))
		for fieldID, msg := range fields {
			bucket[fieldID] = msg
		}
		out[groupID] = bucket
	}
	return out
}

// Valid reports whether the error map is empty.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors) == 0
}

// Editing reports whether the session is in the Editing state.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateEditing
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Message returns the aggregate save message, empty when the last save
// attempt passed or none was made.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// FirstError returns the first failing field in definition order after a
// blocked save, for focus and scroll targeting.
func (s *Session) FirstError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first
}

// Values returns a deep copy of the current working values.
func (s *Session) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return values.CloneFlat(s.working)
}

// FieldVisible evaluates the field's visibility rule against the current
// working values. Unknown fields are visible.
func (s *Session) FieldVisible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.lookup[id]
	if !ok {
		return true
	}
	return s.visible.Visible(ref.Field, s.working)
}

// Close stops outstanding debounce timers and makes every subsequent
// call a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
	s.closed = true
}

func (s *Session) scheduleValidationLocked(id string) {
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}
	s.timers[id] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateEditing || s.closed {
			return
		}
		delete(s.timers, id)
		s.validateFieldLocked(id)
	})
}

func (s *Session) validateFieldLocked(id string) {
	result := s.compiled.ValidateField(id, s.working[id], s.working)
	ref := s.lookup[id]
	if result.Valid {
		delete(s.errors, id)
		s.grouped.Clear(ref.GroupID, id)
		return
	}
	s.errors[id] = result.Message
	s.grouped.Set(ref.GroupID, id, result.Message)
}

func (s *Session) stopTimersLocked() {
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func saveBlockedMessage(count int) string {
	if count == 1 {
		return "Please fix 1 validation error before saving."
	}
	return fmt.Sprintf("Please fix %d validation errors before saving.", count)
}

// serialize renders a flat value map into a stable string. encoding/json
// sorts map keys, so identical value sets always serialize identically.
func serialize(flat map[string]any) string {
	data, err := json.Marshal(flat)
	if err != nil {
		return fmt.Sprintf("%v", flat)
	}
	return string(data)
}
