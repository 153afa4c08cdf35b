// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/qharness/internal/backend"
	"github.com/dotandev/qharness/internal/probestore"
)

var (
	probeNoCache bool
	probeJSON    bool
	probeTTL     time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe [backend]",
	Short: "Probe a simulator backend for its capabilities",
	Long: `Probe a backend by running a trivial one-qubit circuit and report which
simulation methods it supports, whether OpenMP parallelism is available,
and how many qubits it can hold.

Probe results are cached, so repeated invocations (and test runs using the
skip helpers) do not restart the simulator. Use --no-cache to force a
fresh probe.`,
	Example: `  # Probe the configured default backend
  qharness probe

  # Probe the subprocess simulator, bypassing the cache
  qharness probe qsim --no-cache

  # Machine-readable output
  qharness probe --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name := loadedConfig.DefaultBackend
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = "local"
	}

	b, err := backend.DefaultProvider().Get(name)
	if err != nil {
		return fmt.Errorf("failed to resolve backend %q: %w", name, err)
	}

	var caps *backend.Capabilities
	if probeNoCache {
		caps, err = backend.Probe(ctx, b)
	} else {
		store, serr := probestore.NewStore()
		if serr != nil {
			caps, err = backend.Probe(ctx, b)
		} else {
			defer store.Close()
			caps, err = store.Capabilities(ctx, b, probeTTL)
		}
	}
	if err != nil {
		return err
	}

	if probeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(caps)
	}

	printCapabilities(caps)
	return nil
}

func printCapabilities(caps *backend.Capabilities) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Printf("Backend: %s", caps.Backend)
	if caps.Version != "" {
		fmt.Printf(" (version %s)", caps.Version)
	}
	fmt.Println()
	fmt.Println()

	fmt.Println("Simulation methods:")
	known := backend.MethodsOrLatest(0).Methods
	seen := make(map[string]bool, len(caps.Methods))
	for _, m := range caps.Methods {
		seen[m] = true
		green.Printf("  [ok] %s\n", m)
	}
	for _, m := range known {
		if !seen[m] {
			yellow.Printf("  [--] %s\n", m)
		}
	}
	fmt.Println()

	if caps.OMPEnabled {
		green.Printf("OpenMP: enabled (%d threads)\n", caps.NumThreads)
	} else {
		yellow.Println("OpenMP: not available")
	}
	if caps.MaxQubits > 0 {
		fmt.Printf("Max qubits: %d\n", caps.MaxQubits)
	}
}

func init() {
	probeCmd.Flags().BoolVar(&probeNoCache, "no-cache", false, "Probe the backend even if a fresh cached record exists")
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "Print capabilities as JSON")
	probeCmd.Flags().DurationVar(&probeTTL, "ttl", probestore.DefaultTTL, "How long cached probe results stay fresh")

	rootCmd.AddCommand(probeCmd)
}
