package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-dynform/pkg/schema"
)

// errAborted marks a user interrupt (ctrl-c) during a prompt.
var errAborted = errors.New("aborted")

// promptDriver abstracts the terminal prompts so the edit flow can be
// tested without a real TTY.
type promptDriver interface {
	Input(field *schema.FieldDefinition, current string, validate func(string) error) (string, error)
	Password(field *schema.FieldDefinition, validate func(string) error) (string, error)
	Select(field *schema.FieldDefinition, current string) (string, error)
	Confirm(message string, def bool) (bool, error)
	Info(msg string)
}

type surveyDriver struct{}

func (surveyDriver) Input(field *schema.FieldDefinition, current string, validate func(string) error) (string, error) {
	var out string
	var prompt survey.Prompt
	if field.Type == schema.FieldTypeTextarea {
		prompt = &survey.Multiline{Message: promptMessage(field), Default: current}
	} else {
		prompt = &survey.Input{Message: promptMessage(field), Default: current, Help: field.Placeholder}
	}
	err := survey.AskOne(prompt, &out, survey.WithValidator(wrapValidator(validate)))
	return out, translateSurveyErr(err)
}

func (surveyDriver) Password(field *schema.FieldDefinition, validate func(string) error) (string, error) {
	var out string
	prompt := &survey.Password{Message: promptMessage(field), Help: field.Placeholder}
	err := survey.AskOne(prompt, &out, survey.WithValidator(wrapValidator(validate)))
	return out, translateSurveyErr(err)
}

func (surveyDriver) Select(field *schema.FieldDefinition, current string) (string, error) {
	var out string
	prompt := &survey.Select{
		Message: promptMessage(field),
		Options: field.Options,
	}
	if current != "" {
		prompt.Default = current
	}
	err := survey.AskOne(prompt, &out)
	return out, translateSurveyErr(err)
}

func (surveyDriver) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, translateSurveyErr(err)
}

func (surveyDriver) Info(msg string) {
	fmt.Println(msg)
}

func promptMessage(field *schema.FieldDefinition) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func wrapValidator(validate func(string) error) survey.Validator {
	return func(answer any) error {
		s, _ := answer.(string)
		return validate(s)
	}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
