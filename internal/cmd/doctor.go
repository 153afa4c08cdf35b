// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/qharness/internal/backend"
)

type DependencyStatus struct {
	Name      string
	Installed bool
	Version   string
	Path      string
	FixHint   string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose simulator environment setup",
	Long: `Check the status of the simulators and host features qharness depends on.

This command verifies:
  - Go installation and version
  - Simulator binary (qsim)
  - Built-in statevector backend
  - Multicore CPU and OpenMP availability

Use this to troubleshoot installation issues or verify your setup.`,
	Example: `  # Check environment status
  qharness doctor

  # View detailed diagnostics
  qharness doctor --verbose`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	fmt.Println("Qharness Environment Diagnostics")
	fmt.Println("================================")
	fmt.Println()

	dependencies := []DependencyStatus{
		checkGo(),
		checkSimulatorBinary(),
		checkLocalBackend(cmd.Context()),
		checkMulticore(),
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	allOK := true
	for _, dep := range dependencies {
		if dep.Installed {
			green.Print("[OK]")
		} else {
			red.Print("[FAIL]")
			allOK = false
		}

		fmt.Printf(" %s", dep.Name)
		if dep.Installed && dep.Version != "" {
			fmt.Printf(" (%s)", dep.Version)
		}
		fmt.Println()

		if verbose && dep.Path != "" {
			fmt.Printf("  Path: %s\n", dep.Path)
		}
		if !dep.Installed && dep.FixHint != "" {
			yellow.Printf("  -> %s\n", dep.FixHint)
		}
	}

	fmt.Println()

	if allOK {
		green.Println("[OK] All dependencies are installed and ready!")
		return nil
	}

	yellow.Println("Some dependencies are missing. Follow the hints above to fix.")
	return nil
}

func checkGo() DependencyStatus {
	dep := DependencyStatus{
		Name:    "Go",
		FixHint: "Install Go from https://go.dev/doc/install (requires Go 1.24+)",
	}

	goPath, err := exec.LookPath("go")
	if err != nil {
		return dep
	}

	dep.Installed = true
	dep.Path = goPath

	output, err := exec.Command("go", "version").Output()
	if err == nil {
		// "go version go1.24.0 linux/amd64" -> "go1.24.0"
		parts := strings.Fields(strings.TrimSpace(string(output)))
		if len(parts) >= 3 {
			dep.Version = parts[2]
		}
	}

	return dep
}

func checkSimulatorBinary() DependencyStatus {
	dep := DependencyStatus{
		Name:    "Simulator binary (qsim)",
		FixHint: "Build the simulator or set QHARNESS_SIMULATOR_PATH to the qsim binary",
	}

	r, err := backend.NewRunner()
	if err != nil {
		return dep
	}

	dep.Installed = true
	dep.Path = r.BinaryPath
	dep.Version = r.Version()
	return dep
}

func checkLocalBackend(ctx context.Context) DependencyStatus {
	dep := DependencyStatus{
		Name:    "Built-in statevector backend",
		FixHint: "This should always work; reinstall qharness if it fails",
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	caps, err := backend.Probe(ctx, backend.NewLocal())
	if err != nil {
		return dep
	}

	dep.Installed = true
	dep.Version = caps.Version
	return dep
}

func checkMulticore() DependencyStatus {
	dep := DependencyStatus{
		Name:    "Multicore CPU",
		FixHint: "Parallel simulation tests will be skipped on this machine",
	}

	n := runtime.NumCPU()
	dep.Version = fmt.Sprintf("%d cores", n)
	dep.Installed = n > 1
	return dep
}

func init() {
	doctorCmd.Flags().BoolP("verbose", "v", false, "Show detailed diagnostic information")

	rootCmd.AddCommand(doctorCmd)
}
