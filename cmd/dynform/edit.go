package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
)

func newEditCmd(a *app) *cobra.Command {
	var valuesPath string
	var output string

	cmd := &cobra.Command{
		Use:   "edit <form.(json|yaml)>",
		Short: "Edit form values interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			flat := map[string]any{}
			if valuesPath != "" {
				if flat, err = loadValues(valuesPath); err != nil {
					return err
				}
			}

			s := session.New(def, flat,
				session.WithLogger(a.logger),
				session.WithDebounce(time.Duration(a.cfg.DebounceMS)*time.Millisecond),
				session.WithVisibilityCacheSize(a.cfg.CacheSize))
			defer s.Close()

			final, err := runEdit(s, def, surveyDriver{})
			if err != nil {
				if errors.Is(err, errAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
				return err
			}

			encoded, err := json.MarshalIndent(final, "", "  ")
			if err != nil {
				return fmt.Errorf("encode values: %w", err)
			}
			encoded = append(encoded, '\n')

			if output != "" {
				return os.WriteFile(output, encoded, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}

	cmd.Flags().StringVar(&valuesPath, "values", "", "path to a flat JSON value map")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// runEdit walks every visible field in definition order, prompting for a
// new value and validating it through the session before moving on. The
// final confirm drives the save/cancel transition; the returned map holds
// the session's values after the transition.
func runEdit(s *session.Session, def *schema.FormDefinition, driver promptDriver) (map[string]any, error) {
	s.StartEdit()

	for _, ref := range def.OrderedFields() {
		field := ref.Field
		if !s.FieldVisible(field.ID) {
			continue
		}
		if err := promptField(s, field, driver); err != nil {
			s.Cancel()
			return nil, err
		}
	}

	ok, err := driver.Confirm("Save changes?", true)
	if err != nil {
		s.Cancel()
		return nil, err
	}
	if !ok {
		s.Cancel()
		return nil, errAborted
	}

	if !s.Save() {
		driver.Info(s.Message())
		if first := s.FirstError(); first != "" {
			driver.Info(fmt.Sprintf("first problem: %s: %s", first, s.FieldError(first)))
		}
		s.Cancel()
		return nil, errors.New("validation failed")
	}
	return s.Values(), nil
}

func promptField(s *session.Session, field *schema.FieldDefinition, driver promptDriver) error {
	current := stringValue(s.Values()[field.ID])

	validate := func(answer string) error {
		s.SetField(field.ID, coerceAnswer(field, answer))
		s.Blur(field.ID)
		if msg := s.FieldError(field.ID); msg != "" {
			return errors.New(msg)
		}
		return nil
	}

	switch field.Type {
	case schema.FieldTypeDropdown, schema.FieldTypeRadio:
		answer, err := driver.Select(field, current)
		if err != nil {
			return err
		}
		s.SetField(field.ID, answer)
		s.Blur(field.ID)

	case schema.FieldTypeCheckbox:
		checked, err := driver.Confirm(promptMessage(field), current == "true")
		if err != nil {
			return err
		}
		s.SetField(field.ID, checked)
		s.Blur(field.ID)

	case schema.FieldTypePassword:
		if _, err := driver.Password(field, validate); err != nil {
			return err
		}

	default:
		if _, err := driver.Input(field, current, validate); err != nil {
			return err
		}
	}
	return nil
}

// coerceAnswer converts the raw prompt string into the value shape the
// field validates as.
func coerceAnswer(field *schema.FieldDefinition, answer string) any {
	if field.Type == schema.FieldTypeNumber && answer != "" {
		if n, err := strconv.ParseFloat(answer, 64); err == nil {
			return n
		}
	}
	return answer
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
