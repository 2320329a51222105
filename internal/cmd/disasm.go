// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/disasm"
)

var disasmNoColor bool

var disasmCmd = &cobra.Command{
	Use:   "disasm <bhav-file>",
	Short: "Disassemble a BHAV instruction buffer",
	Long: `Decode a raw BHAV instruction buffer and print a readable listing:
primitive names, branch targets, sentinel exits, and operand bytes.

Examples:
  simantix disasm tree.bhav --locals 2 --args 1
  simantix disasm tree.bhav --no-color > listing.txt`,
	Args: cobra.ExactArgs(1),
	RunE: disasmExec,
}

func disasmExec(cmd *cobra.Command, args []string) error {
	g, err := loadGraphArg(args)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	p := disasm.New(reg)
	p.NoColor = disasmNoColor
	p.Print(os.Stdout, g)
	return nil
}

func init() {
	addGraphFlags(disasmCmd)
	disasmCmd.Flags().BoolVar(&disasmNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.AddCommand(disasmCmd)
}
