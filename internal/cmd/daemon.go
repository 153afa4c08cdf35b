// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotandev/qharness/internal/daemon"
	"github.com/dotandev/qharness/internal/telemetry"
)

var (
	daemonPort      string
	daemonBackend   string
	daemonAuthToken string
	daemonProbeTTL  time.Duration
	daemonTracing   bool
	daemonOTLPURL   string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start JSON-RPC server for remote test suites",
	Long: `Start a JSON-RPC 2.0 server that exposes a simulator backend to remote
test suites and tools.

Endpoints:
  - Harness.AvailableMethods: List the backend's simulation methods
  - Harness.Probe: Probe the backend's full capabilities
  - Harness.Run: Run a circuit and return measurement counts

Example:
  qharness daemon --port 8080 --backend qsim
  qharness daemon --port 8080 --auth-token secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var cleanup func()
		if daemonTracing {
			var err error
			cleanup, err = telemetry.Init(ctx, telemetry.Config{
				Enabled:     true,
				ExporterURL: daemonOTLPURL,
				ServiceName: "qharness-daemon",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize telemetry: %w", err)
			}
			defer cleanup()
		}

		server, err := daemon.NewServer(daemon.Config{
			Port:      daemonPort,
			Backend:   daemonBackend,
			AuthToken: daemonAuthToken,
			ProbeTTL:  daemonProbeTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("\nReceived interrupt signal, shutting down...")
			cancel()
		}()

		fmt.Printf("Starting qharness daemon on port %s\n", daemonPort)
		fmt.Printf("Backend: %s\n", daemonBackend)
		if daemonAuthToken != "" {
			fmt.Println("Authentication: enabled")
		}

		return server.Start(ctx, daemonPort)
	},
}

func init() {
	daemonCmd.Flags().StringVarP(&daemonPort, "port", "p", "8080", "Port to listen on")
	daemonCmd.Flags().StringVarP(&daemonBackend, "backend", "b", "local", "Backend to serve (local, qsim)")
	daemonCmd.Flags().StringVar(&daemonAuthToken, "auth-token", "", "Authentication token for API access")
	daemonCmd.Flags().DurationVar(&daemonProbeTTL, "probe-ttl", 0, "Probe cache freshness window (0 uses the default)")
	daemonCmd.Flags().BoolVar(&daemonTracing, "tracing", false, "Enable OpenTelemetry tracing")
	daemonCmd.Flags().StringVar(&daemonOTLPURL, "otlp-url", "http://localhost:4318", "OTLP exporter URL")

	rootCmd.AddCommand(daemonCmd)
}
