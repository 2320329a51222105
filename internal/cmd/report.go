// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/db"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Query stored analysis reports and edit audits",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent stored reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		reports, err := store.ListReports(reportLimit)
		if err != nil {
			return err
		}
		for _, r := range reports {
			fmt.Printf("#%-5d %s  graph 0x%04X  %-9s %d finding(s)\n",
				r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.GraphID, r.Kind, len(r.Diagnostics))
		}
		return nil
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored report in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid report id %q: %w", args[0], err)
		}
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.GetReport(id)
		if err != nil {
			return err
		}
		fmt.Printf("report #%d  graph 0x%04X  kind %s  %s\n",
			r.ID, r.GraphID, r.Kind, r.Timestamp.Format("2006-01-02 15:04:05"))
		for _, d := range r.Diagnostics {
			fmt.Println("  " + d.String())
		}
		if len(r.Metrics) > 0 {
			fmt.Println(string(r.Metrics))
		}
		return nil
	},
}

var reportAuditsCmd = &cobra.Command{
	Use:   "audits <graph-id>",
	Short: "Print the edit audit trail of a graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		audits, err := store.ListAudits(id, reportLimit)
		if err != nil {
			return err
		}
		for _, a := range audits {
			fmt.Printf("#%-5d %s  %s\n", a.ID, a.Timestamp.Format("2006-01-02 15:04"), a.Operation)
			for _, line := range a.Log {
				fmt.Println("    " + line)
			}
			for _, warn := range a.Warnings {
				fmt.Println("    warning: " + warn)
			}
		}
		return nil
	},
}

func init() {
	reportCmd.PersistentFlags().IntVar(&reportLimit, "limit", 20, "Maximum rows to list")
	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportAuditsCmd)
	rootCmd.AddCommand(reportCmd)
}
