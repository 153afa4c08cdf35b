// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/qharness/internal/backend"
)

var (
	runShots   int
	runMethod  string
	runSeed    int64
	runJSON    bool
	runCircuit string
)

var runCmd = &cobra.Command{
	Use:   "run [backend]",
	Short: "Run a circuit against a simulator backend",
	Long: `Run a circuit and print the measurement counts.

Without --circuit, the trivial one-qubit probe circuit (Hadamard plus
measurement) runs; with --circuit, the circuit is read from a JSON file
using the same shape the daemon accepts.`,
	Example: `  # Run the trivial circuit on the default backend
  qharness run

  # 4096 shots of a circuit file on the subprocess simulator
  qharness run qsim --circuit bell.json --shots 4096

  # Deterministic sampling
  qharness run --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
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

	c := backend.Trivial()
	if runCircuit != "" {
		data, err := os.ReadFile(runCircuit)
		if err != nil {
			return fmt.Errorf("failed to read circuit file: %w", err)
		}
		c = &backend.Circuit{}
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse circuit file: %w", err)
		}
	}

	opts := []backend.RunOption{backend.WithShots(runShots)}
	if runMethod != "" {
		opts = append(opts, backend.WithMethod(runMethod))
	}
	if runSeed != 0 {
		opts = append(opts, backend.WithSeed(runSeed))
	}

	res, err := b.Run(ctx, c, opts...)
	if err != nil {
		return err
	}

	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResult(c, res)
	return nil
}

func printResult(c *backend.Circuit, res *backend.Result) {
	bold := color.New(color.Bold)

	bold.Printf("Circuit: %s", c.Name)
	fmt.Printf(" (%d qubits, %d shots, method %s)\n\n", c.Qubits, res.Shots, res.Metadata.Method)

	if !res.Success() {
		color.Red("Run failed: %s\n", res.Error)
		return
	}

	outcomes := make([]string, 0, len(res.Counts))
	for o := range res.Counts {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)

	for _, o := range outcomes {
		n := res.Counts[o]
		fmt.Printf("  %s  %6d  (%.1f%%)\n", o, n, 100*float64(n)/float64(res.Shots))
	}
}

func init() {
	runCmd.Flags().IntVar(&runShots, "shots", backend.DefaultShots, "Number of measurement shots")
	runCmd.Flags().StringVar(&runMethod, "method", "", "Simulation method to request")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed for deterministic sampling")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the result as JSON")
	runCmd.Flags().StringVar(&runCircuit, "circuit", "", "Path to a circuit JSON file")

	rootCmd.AddCommand(runCmd)
}
