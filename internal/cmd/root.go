// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotandev/qharness/internal/backend"
	"github.com/dotandev/qharness/internal/config"
	"github.com/dotandev/qharness/internal/logger"
	"github.com/dotandev/qharness/internal/updater"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qharness",
	Short: "Quantum simulator test harness and capability prober",
	Long: `Qharness drives quantum circuit simulators for test suites: it discovers
which simulation methods a backend supports, caches the answers, and serves
them to local or remote test runs.

Key features:
  - Probe simulator backends for supported methods and parallelism
  - Cache probe results so test runs skip instantly and consistently
  - Run circuits against the built-in or subprocess simulator
  - Serve a shared backend to remote test suites over JSON-RPC

Examples:
  qharness probe                      Probe the default backend
  qharness probe qsim                 Probe the subprocess simulator
  qharness run --shots 1024           Run the trivial circuit
  qharness daemon --port 8080         Serve backends over JSON-RPC

Get started with 'qharness doctor' to verify your setup.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			// A broken config file should not lock the user out of the CLI.
			logger.Logger.Warn("Failed to load config, using defaults", "error", err)
			cfg = config.DefaultConfig()
		}
		if cfg.LogLevel != "" {
			logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
		}
		loadedConfig = cfg

		// Config-driven backend wiring.
		if cfg.SimulatorPath != "" {
			path := cfg.SimulatorPath
			backend.DefaultProvider().Register("qsim", func() (backend.Backend, error) {
				return backend.NewRunnerAt(path)
			})
		}
		if cfg.DaemonURL != "" {
			url, token := cfg.DaemonURL, cfg.DaemonToken
			backend.DefaultProvider().Register("remote", func() (backend.Backend, error) {
				return backend.NewRemote(url, token), nil
			})
		}

		checkForUpdatesAsync()
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadedConfig is the config resolved in PersistentPreRunE, available to all
// subcommands.
var loadedConfig *config.Config

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// checkForUpdatesAsync runs the update check in a goroutine to not block CLI startup
func checkForUpdatesAsync() {
	go func() {
		checker := updater.NewChecker(Version)
		checker.CheckForUpdates()
	}()
}
