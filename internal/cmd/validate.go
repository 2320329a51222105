// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/db"
	"github.com/dotandev/simantix/internal/validate"
)

var validateSave bool

var validateCmd = &cobra.Command{
	Use:   "validate <bhav-file>",
	Short: "Check a BHAV for structural soundness",
	Long: `Run the type, stack-balance, variable-scope, control-flow, and branch
logic checks and print every diagnostic. The exit status is non-zero
when any error-severity finding exists.

Examples:
  simantix validate tree.bhav --locals 2
  simantix validate tree.bhav --save`,
	Args: cobra.ExactArgs(1),
	RunE: validateExec,
}

func validateExec(cmd *cobra.Command, args []string) error {
	g, err := loadGraphArg(args)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}

	diags := validate.New(reg).Validate(g)
	for _, d := range diags {
		fmt.Println(d)
	}

	if validateSave {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.SaveReport(&db.Report{
			GraphID:     g.ID,
			Kind:        "validate",
			Diagnostics: diags,
		}); err != nil {
			return err
		}
	}

	if bhav.HasErrors(diags) {
		return fmt.Errorf("graph 0x%04X has structural errors", g.ID)
	}
	fmt.Printf("graph 0x%04X: valid (%d advisory finding(s))\n", g.ID, len(diags))
	return nil
}

func init() {
	addGraphFlags(validateCmd)
	validateCmd.Flags().BoolVar(&validateSave, "save", false, "Persist the report to the local store")
	rootCmd.AddCommand(validateCmd)
}
