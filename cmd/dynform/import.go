package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/openapi"
)

func newImportCmd(a *app) *cobra.Command {
	var operationID string
	var output string

	cmd := &cobra.Command{
		Use:   "import <openapi.(json|yaml)>",
		Short: "Derive a form definition from an OpenAPI operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}

			def, err := openapi.New().Import(cmd.Context(), raw, operationID)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(def, "", "  ")
			if err != nil {
				return fmt.Errorf("encode definition: %w", err)
			}
			encoded = append(encoded, '\n')

			if output != "" {
				if err := os.WriteFile(output, encoded, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				a.logger.Info("definition written",
					zap.String("path", output),
					zap.String("operation", operationID))
				return nil
			}
			_, err = cmd.OutOrStdout().Write(encoded)
			return err
		},
	}

	cmd.Flags().StringVar(&operationID, "operation", "", "operation id to import")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.MarkFlagRequired("operation")
	return cmd
}
