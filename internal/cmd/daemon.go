// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotandev/simantix/internal/daemon"
	"github.com/dotandev/simantix/internal/telemetry"
)

var (
	daemonPort  string
	daemonToken string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve the analysis surface over JSON-RPC",
	Long: `Run a long-lived JSON-RPC service exposing Engine.Validate,
Engine.Analyze, Engine.Trace, and Engine.CallGraph for editor
frontends. Stops cleanly on SIGINT/SIGTERM.

Examples:
  simantix daemon
  simantix daemon --port 9000 --token secret`,
	Args: cobra.NoArgs,
	RunE: daemonExec,
}

func daemonExec(cmd *cobra.Command, args []string) error {
	reg, err := registry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry,
		ExporterURL: cfg.TelemetryEndpoint,
		ServiceName: "simantix-daemon",
	})
	if err != nil {
		return err
	}
	defer shutdown()

	port := daemonPort
	if port == "" {
		port = cfg.DaemonPort
	}
	server := daemon.NewServer(daemon.Config{
		Port:       port,
		AuthToken:  daemonToken,
		StepBudget: cfg.StepBudget,
	}, reg)
	if err := server.Start(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

func init() {
	daemonCmd.Flags().StringVar(&daemonPort, "port", "", "Listen port (default from config)")
	daemonCmd.Flags().StringVar(&daemonToken, "token", "", "Bearer token required on /rpc")
	rootCmd.AddCommand(daemonCmd)
}
