// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/callgraph"
)

var (
	cgCycles bool
	cgUnused bool
	cgTree   string
	cgDepth  int
	cgTop    int
)

var callgraphCmd = &cobra.Command{
	Use:   "callgraph <package-dir>",
	Short: "Build the cross-program call graph of a package",
	Long: `Scan every graph in a package directory for call-type instructions and
build the package call graph. Prints direct edges by default; flags
select cycle detection, unused-graph listing, tree rendering, and
usage rankings.

Examples:
  simantix callgraph ./package
  simantix callgraph ./package --cycles --unused
  simantix callgraph ./package --tree 0x1000 --depth 4
  simantix callgraph ./package --top 5`,
	Args: cobra.ExactArgs(1),
	RunE: callgraphExec,
}

func callgraphExec(cmd *cobra.Command, args []string) error {
	pkg, err := bhav.LoadPackage(args[0])
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}
	cg := callgraph.Build(pkg, reg)

	if cgTree != "" {
		id, err := parseID(cgTree)
		if err != nil {
			return err
		}
		fmt.Print(cg.RenderTree(id, cgDepth))
		return nil
	}

	for _, e := range cg.Edges() {
		fmt.Printf("0x%04X -> 0x%04X  %-12s sites=%v\n", e.Caller, e.Callee, e.Kind, e.Sites)
	}

	if cgCycles {
		for _, cycle := range cg.Cycles() {
			fmt.Print("cycle: ")
			for i, id := range cycle {
				if i > 0 {
					fmt.Print(" -> ")
				}
				fmt.Printf("0x%04X", id)
			}
			fmt.Println()
		}
	}

	if cgUnused {
		for _, id := range cg.Unused() {
			name := ""
			if g, ok := pkg[id]; ok {
				name = g.Name
			}
			fmt.Printf("unused: 0x%04X %s\n", id, name)
		}
	}

	if cgTop > 0 {
		fmt.Println("most called:")
		for _, e := range cg.MostCalled(cgTop) {
			fmt.Printf("  0x%04X  %d caller(s)\n", e.ID, e.Count)
		}
		fmt.Println("most calling:")
		for _, e := range cg.MostCalling(cgTop) {
			fmt.Printf("  0x%04X  %d callee(s)\n", e.ID, e.Count)
		}
	}
	return nil
}

func init() {
	callgraphCmd.Flags().BoolVar(&cgCycles, "cycles", false, "Detect and print call cycles")
	callgraphCmd.Flags().BoolVar(&cgUnused, "unused", false, "List graphs with no callers that are not entry points")
	callgraphCmd.Flags().StringVar(&cgTree, "tree", "", "Render the call tree rooted at this graph id")
	callgraphCmd.Flags().IntVar(&cgDepth, "depth", 5, "Tree rendering depth")
	callgraphCmd.Flags().IntVar(&cgTop, "top", 0, "Print the top-N usage rankings")
	rootCmd.AddCommand(callgraphCmd)
}
