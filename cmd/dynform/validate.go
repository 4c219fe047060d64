package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/compiler"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func newValidateCmd(a *app) *cobra.Command {
	var valuesPath string

	cmd := &cobra.Command{
		Use:   "validate <form.(json|yaml)>",
		Short: "Run whole-form validation against a JSON value map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			flat, err := loadValues(valuesPath)
			if err != nil {
				return err
			}

			compiled := compiler.Compile(def, compiler.WithLogger(a.logger))
			report := compiled.Validate(flat)
			if report.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}

			// Errors print in definition order, matching the order a form
			// would focus them.
			for _, ref := range def.OrderedFields() {
				if msg, ok := report.Errors[ref.Field.ID]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", ref.Field.ID, msg)
				}
			}
			return fmt.Errorf("%d field(s) failed validation", len(report.Errors))
		},
	}

	cmd.Flags().StringVar(&valuesPath, "values", "", "path to a flat JSON value map")
	cmd.MarkFlagRequired("values")
	return cmd
}

func loadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return flat, nil
}
