// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dotandev/qharness/internal/errors"
	"github.com/dotandev/qharness/internal/logger"
	"github.com/dotandev/qharness/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Runner drives an external qsim simulator binary over a JSON stdin/stdout
// exchange.
type Runner struct {
	BinaryPath string
}

// simRequest is the JSON payload written to the simulator's stdin.
type simRequest struct {
	Command string   `json:"command"` // "run" or "capabilities"
	Circuit *Circuit `json:"circuit,omitempty"`
	Shots   int      `json:"shots,omitempty"`
	Method  string   `json:"method,omitempty"`
	Seed    int64    `json:"seed,omitempty"`
}

// simResponse is the JSON payload read from the simulator's stdout.
type simResponse struct {
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Counts   map[string]int `json:"counts,omitempty"`
	Shots    int            `json:"shots,omitempty"`
	Metadata Metadata       `json:"metadata"`
	Methods  []string       `json:"methods,omitempty"`
	Version  string         `json:"version,omitempty"`
}

// NewRunner creates a subprocess simulator backend.
// It checks for the binary in common locations.
func NewRunner() (*Runner, error) {
	// 1. Check environment variable
	if envPath := os.Getenv("QHARNESS_SIMULATOR_PATH"); envPath != "" {
		return &Runner{BinaryPath: envPath}, nil
	}

	// 2. Check current directory (for Docker/Production)
	cwd, err := os.Getwd()
	if err == nil {
		localPath := filepath.Join(cwd, "qsim")
		if _, err := os.Stat(localPath); err == nil {
			return &Runner{BinaryPath: localPath}, nil
		}
	}

	// 3. Check development build path
	devPath := filepath.Join("simulator", "build", "qsim")
	if _, err := os.Stat(devPath); err == nil {
		return &Runner{BinaryPath: devPath}, nil
	}

	// 4. Check global PATH
	if path, err := exec.LookPath("qsim"); err == nil {
		return &Runner{BinaryPath: path}, nil
	}

	return nil, errors.WrapSimulatorNotFound("Please build it or set QHARNESS_SIMULATOR_PATH")
}

// NewRunnerAt skips discovery and uses an explicit binary path, as when the
// path comes from the config file.
func NewRunnerAt(path string) (*Runner, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WrapSimulatorNotFound(path)
	}
	return &Runner{BinaryPath: path}, nil
}

func (r *Runner) Name() string { return "qsim" }

// Version asks the binary for its version; empty on failure.
func (r *Runner) Version() string {
	resp, err := r.exchange(context.Background(), &simRequest{Command: "capabilities"})
	if err != nil {
		return ""
	}
	return resp.Version
}

func (r *Runner) AvailableMethods(ctx context.Context) ([]string, error) {
	resp, err := r.exchange(ctx, &simRequest{Command: "capabilities"})
	if err != nil {
		return nil, err
	}
	return resp.Methods, nil
}

// Run executes the circuit in the external simulator.
func (r *Runner) Run(ctx context.Context, c *Circuit, opts ...RunOption) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := applyRunOptions(opts)

	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "simulate_circuit")
	span.SetAttributes(
		attribute.String("simulator.binary_path", r.BinaryPath),
		attribute.Int("circuit.qubits", c.Qubits),
		attribute.Int("circuit.ops", len(c.Ops)),
	)
	defer span.End()

	resp, err := r.exchange(ctx, &simRequest{
		Command: "run",
		Circuit: c,
		Shots:   o.shots,
		Method:  o.method,
		Seed:    o.seed,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("simulation.status", resp.Status))

	if resp.Status == "error" {
		span.SetAttributes(attribute.String("simulation.error", resp.Error))
		logger.Logger.Error("simulation logic error", "error", resp.Error)
		return nil, errors.WrapSimulationLogicError(resp.Error)
	}

	shots := resp.Shots
	if shots == 0 {
		shots = o.shots
	}
	return &Result{
		Status:   resp.Status,
		Counts:   resp.Counts,
		Shots:    shots,
		Metadata: resp.Metadata,
	}, nil
}

// exchange marshals req to the simulator's stdin and unmarshals its stdout.
func (r *Runner) exchange(ctx context.Context, req *simRequest) (*simResponse, error) {
	logger.Logger.Debug("invoking simulator", "binary", r.BinaryPath, "command", req.Command)

	inputBytes, err := json.Marshal(req)
	if err != nil {
		logger.Logger.Error("failed to marshal simulator request", "error", err)
		return nil, errors.WrapMarshalFailed(err)
	}

	cmd := exec.CommandContext(ctx, r.BinaryPath)
	cmd.Stdin = bytes.NewReader(inputBytes)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Logger.Error("simulator execution failed", "error", err, "stderr", stderr.String())
		return nil, errors.WrapSimulationFailed(err, stderr.String())
	}

	var resp simResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		logger.Logger.Error("failed to unmarshal simulator response", "error", err, "output", stdout.String())
		return nil, errors.WrapUnmarshalFailed(err, stdout.String())
	}

	logger.Logger.Debug("simulator responded", "status", resp.Status)
	return &resp, nil
}
