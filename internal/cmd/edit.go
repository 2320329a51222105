// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/db"
	"github.com/dotandev/simantix/internal/rewire"
)

var (
	editOutput string
	editWith   string
	editSave   bool
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Surgically edit a BHAV instruction sequence",
	Long: `Transactional structural edits on a BHAV: insert, delete, move, and
reorder instructions. Every pointer the edit would invalidate is
repaired automatically; pointers into deleted instructions become the
ERROR sentinel and are reported. Without -o the edit is a dry run that
prints the audit log only.`,
}

var editInsertCmd = &cobra.Command{
	Use:   "insert <bhav-file> <at> --with <records-file>",
	Short: "Splice instructions into the sequence",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[1], err)
		}
		raw, err := os.ReadFile(editWith)
		if err != nil {
			return err
		}
		extra, err := bhav.Decode(raw, 0)
		if err != nil {
			return err
		}
		return runEdit(args[0], func(e *rewire.Engine) (rewire.Result, error) {
			return e.Insert(at, extra.Instructions)
		})
	},
}

var editDeleteCmd = &cobra.Command{
	Use:   "delete <bhav-file> <indices>",
	Short: "Remove instructions by position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		indices, err := parseIndexList(args[1])
		if err != nil {
			return err
		}
		return runEdit(args[0], func(e *rewire.Engine) (rewire.Result, error) {
			return e.Delete(indices)
		})
	},
}

var editMoveCmd = &cobra.Command{
	Use:   "move <bhav-file> <from> <to>",
	Short: "Relocate one instruction",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[1], err)
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[2], err)
		}
		return runEdit(args[0], func(e *rewire.Engine) (rewire.Result, error) {
			return e.Move(from, to)
		})
	},
}

var editReorderCmd = &cobra.Command{
	Use:   "reorder <bhav-file> <order>",
	Short: "Rearrange the whole sequence by a permutation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := parseIndexList(args[1])
		if err != nil {
			return err
		}
		return runEdit(args[0], func(e *rewire.Engine) (rewire.Result, error) {
			return e.Reorder(order)
		})
	},
}

// runEdit applies one operation, prints the audit trail, runs the
// pointer post-condition check, and commits the re-encoded bytes when
// an output path was given.
func runEdit(path string, op func(*rewire.Engine) (rewire.Result, error)) error {
	g, err := bhav.LoadGraph(path, graphID, localsFlag, argsFlag)
	if err != nil {
		return err
	}

	engine := rewire.New(g)
	result, err := op(engine)
	if err != nil {
		return err
	}

	fmt.Println(result.Operation)
	for _, line := range result.Log {
		fmt.Println("  " + line)
	}
	for _, warn := range result.Warnings {
		fmt.Println("  warning: " + warn)
	}
	if diags := engine.Validate(); len(diags) > 0 {
		for _, d := range diags {
			fmt.Println("  " + d.String())
		}
		return fmt.Errorf("edit left dangling pointers, not committing")
	}

	if editSave {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.SaveAudit(&db.Audit{
			GraphID:   g.ID,
			Operation: result.Operation,
			Log:       result.Log,
			Warnings:  result.Warnings,
		}); err != nil {
			return err
		}
	}

	if editOutput == "" {
		fmt.Println("dry run: no output written")
		return nil
	}
	if err := os.WriteFile(editOutput, bhav.Encode(g), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Printf("written to %s\n", editOutput)
	return nil
}

func parseIndexList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func init() {
	for _, sub := range []*cobra.Command{editInsertCmd, editDeleteCmd, editMoveCmd, editReorderCmd} {
		addGraphFlags(sub)
		sub.Flags().StringVarP(&editOutput, "output", "o", "", "Output file path (omit for dry run)")
		sub.Flags().BoolVar(&editSave, "save", false, "Append the audit log to the local store")
		editCmd.AddCommand(sub)
	}
	editInsertCmd.Flags().StringVar(&editWith, "with", "", "File of 12-byte instruction records to insert")
	editInsertCmd.MarkFlagRequired("with")
	rootCmd.AddCommand(editCmd)
}
