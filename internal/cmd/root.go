// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/config"
	"github.com/dotandev/simantix/internal/primitives"
)

// Global flag variables
var (
	tableFlag  string
	graphID    uint16
	localsFlag uint8
	argsFlag   uint8
)

var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simantix",
	Short: "SimAntics behavior bytecode analyzer and editor",
	Long: `Simantix is a forensic toolchain for SimAntics behavior programs (BHAVs).
It disassembles instruction graphs, traces their reachable paths, validates
structural integrity, maps cross-program call relationships, and performs
surgical instruction edits that repair every affected pointer.

Key features:
  - Disassemble BHAV instruction buffers into readable listings
  - Validate opcode, stack, scope, and control-flow soundness
  - Detect dead code, loops, and expensive primitives in hot paths
  - Build package-wide call graphs with cycle and usage queries
  - Insert, delete, move, and reorder instructions transactionally
  - Persist analysis reports and edit audit trails locally

Examples:
  simantix disasm tree.bhav --locals 2 --args 1
  simantix validate tree.bhav
  simantix analyze tree.bhav
  simantix callgraph ./package --cycles
  simantix edit delete tree.bhav 3,4 -o tree-edited.bhav

Get started with 'simantix disasm --help'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tableFlag, "table", "", "Primitive table file overriding the embedded metadata")
}

// registry resolves the primitive table: flag, then config, then the
// embedded defaults.
func registry() (*primitives.Registry, error) {
	path := tableFlag
	if path == "" && cfg != nil {
		path = cfg.PrimitiveTable
	}
	if path == "" {
		return primitives.Default(), nil
	}
	return primitives.LoadFile(path)
}

// addGraphFlags registers the container metadata flags used by every
// single-graph command.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().Uint16Var(&graphID, "id", 0, "Graph id (hex accepted via 0x prefix in args)")
	cmd.Flags().Uint8Var(&localsFlag, "locals", 0, "Declared local-variable count")
	cmd.Flags().Uint8Var(&argsFlag, "args", 0, "Declared argument count")
}

// loadGraphArg reads the .bhav file named by the first positional
// argument using the shared metadata flags.
func loadGraphArg(args []string) (*bhav.BehaviorGraph, error) {
	return bhav.LoadGraph(args[0], graphID, localsFlag, argsFlag)
}

// parseID accepts decimal or 0x-prefixed hex graph ids.
func parseID(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid graph id %q: %w", s, err)
	}
	return uint16(n), nil
}
