package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/compiler"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <form.(json|yaml)>",
		Short: "Check a form definition for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}

			problems := 0
			for _, issue := range schema.Lint(def) {
				fmt.Fprintln(cmd.OutOrStdout(), issue.String())
				if !issue.Warning {
					problems++
				}
			}

			// Compiling surfaces constraint-level diagnostics, invalid
			// regex patterns in particular, through the logger.
			compiler.Compile(def, compiler.WithLogger(a.logger))

			if problems > 0 {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
