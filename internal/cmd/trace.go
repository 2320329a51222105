// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/callgraph"
	"github.com/dotandev/simantix/internal/errors"
	"github.com/dotandev/simantix/internal/tracer"
)

var (
	traceEntry   int
	traceExplore bool
	tracePackage string
)

var traceCmd = &cobra.Command{
	Use:   "trace <bhav-file>",
	Short: "Statically walk a BHAV without side effects",
	Long: `Walk the instruction graph from an entry point, following the true
exit at each branch, and print every visited step with its abstract
stack depth. With --package, call-type instructions descend into their
callee graphs. The walk is bounded: loops and recursion end in an
EXCEEDED_STEP_BUDGET classification instead of hanging.

Examples:
  simantix trace tree.bhav
  simantix trace tree.bhav --entry 3 --explore
  simantix trace ./package/main.bhav --package ./package --id 0x1000`,
	Args: cobra.ExactArgs(1),
	RunE: traceExec,
}

func traceExec(cmd *cobra.Command, args []string) error {
	g, err := loadGraphArg(args)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}

	t := tracer.New(reg)
	if cfg != nil {
		t.StepBudget = cfg.StepBudget
		t.MaxCallDepth = cfg.MaxCallDepth
	}
	if tracePackage != "" {
		pkg, err := bhav.LoadPackage(tracePackage)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("id") {
			withID, ok := pkg[graphID]
			if !ok {
				return errors.WrapUnknownGraph(graphID)
			}
			g = withID
		}
		t.WithPackage(pkg, callgraph.Build(pkg, reg))
	}

	var trace *tracer.Trace
	if traceExplore {
		trace, err = t.Explore(g, traceEntry)
	} else {
		trace, err = t.Trace(g, traceEntry)
	}
	if err != nil {
		return err
	}

	for _, step := range trace.Steps {
		branch := "false"
		if step.TookTrue {
			branch = "true"
		}
		fmt.Printf("0x%04X:%-4d %-5s stack %d -> %d\n",
			step.GraphID, step.Position, branch, step.DepthBefore, step.DepthAfter)
	}
	fmt.Println(trace.Summary())
	return nil
}

func init() {
	addGraphFlags(traceCmd)
	traceCmd.Flags().IntVar(&traceEntry, "entry", 0, "Entry instruction position")
	traceCmd.Flags().BoolVar(&traceExplore, "explore", false, "Enumerate both branches instead of the true-path walk")
	traceCmd.Flags().StringVar(&tracePackage, "package", "", "Package directory for cross-graph call tracing")
	rootCmd.AddCommand(traceCmd)
}
