// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/analyze"
	"github.com/dotandev/simantix/internal/db"
)

var (
	analyzeJSON bool
	analyzeSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <bhav-file>",
	Short: "Report dead code, loops, hot spots, and complexity",
	Long: `Compute reachability from the entry instruction, detect loop spans and
infinite branches, flag expensive primitives inside loops, and report
cyclomatic complexity, nesting depth, and coverage.

Examples:
  simantix analyze tree.bhav
  simantix analyze tree.bhav --json`,
	Args: cobra.ExactArgs(1),
	RunE: analyzeExec,
}

func analyzeExec(cmd *cobra.Command, args []string) error {
	g, err := loadGraphArg(args)
	if err != nil {
		return err
	}
	reg, err := registry()
	if err != nil {
		return err
	}

	report := analyze.New(reg).Analyze(g)

	if analyzeJSON {
		raw, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
	} else {
		printReport(report)
	}

	if analyzeSave {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		metrics, err := json.Marshal(report)
		if err != nil {
			return err
		}
		if _, err := store.SaveReport(&db.Report{
			GraphID:     g.ID,
			Kind:        "analyze",
			Diagnostics: report.Diagnostics(),
			Metrics:     metrics,
		}); err != nil {
			return err
		}
	}
	return nil
}

func printReport(r *analyze.Report) {
	fmt.Printf("Reachable:      %d of %d (%.0f%% coverage)\n",
		len(r.Reachable), len(r.Reachable)+len(r.Dead), r.Coverage*100)
	if len(r.Dead) > 0 {
		fmt.Printf("Dead code at:   %v\n", r.Dead)
	}
	fmt.Printf("Cyclomatic:     %d\n", r.Cyclomatic)
	fmt.Printf("Max nesting:    %d\n", r.MaxNesting)
	for _, loop := range r.Loops {
		label := "loop"
		if loop.Infinite {
			label = "infinite loop"
		}
		suffix := ""
		if loop.ContainsCalls {
			suffix = " (contains calls)"
		}
		fmt.Printf("%-15s [%d, %d]%s\n", label+":", loop.Start, loop.End, suffix)
	}
	for _, h := range r.HotSpots {
		fmt.Printf("hot spot:       %s at %d inside loop [%d, %d]\n",
			h.Primitive, h.Position, h.LoopStart, h.LoopEnd)
	}
}

func init() {
	addGraphFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the report to the local store")
	rootCmd.AddCommand(analyzeCmd)
}
