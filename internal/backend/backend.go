// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

// Package backend models the simulation backend the test harness interrogates:
// an opaque provider of simulation methods that can run circuits and report
// execution metadata. Three implementations exist: the in-process Local
// simulator, the subprocess Runner driving an external qsim binary, and the
// Remote client speaking JSON-RPC to a qharness daemon.
package backend

import "context"

// Metadata describes how a backend executed a workload. The harness skip
// helpers key off these flags.
type Metadata struct {
	Method              string `json:"method"`
	OMPEnabled          bool   `json:"omp_enabled"`
	NumThreads          int    `json:"num_threads"`
	ParallelExperiments int    `json:"parallel_experiments"`
	MaxQubits           int    `json:"max_qubits"`
}

// Result is the outcome of running a circuit.
type Result struct {
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Counts   map[string]int `json:"counts,omitempty"`
	Shots    int            `json:"shots"`
	Metadata Metadata       `json:"metadata"`
}

// Success reports whether the run completed without a simulation error.
func (r *Result) Success() bool { return r.Status == "success" }

// RunOption adjusts a single Run call.
type RunOption func(*runOptions)

type runOptions struct {
	shots  int
	method string
	seed   int64
}

// DefaultShots is used when a Run call does not specify a shot count.
const DefaultShots = 1024

// WithShots sets the number of measurement samples.
func WithShots(n int) RunOption {
	return func(o *runOptions) { o.shots = n }
}

// WithMethod requests a specific simulation method instead of automatic
// selection.
func WithMethod(m string) RunOption {
	return func(o *runOptions) { o.method = m }
}

// WithSeed fixes the sampling seed for reproducible counts.
func WithSeed(seed int64) RunOption {
	return func(o *runOptions) { o.seed = seed }
}

func applyRunOptions(opts []RunOption) runOptions {
	o := runOptions{shots: DefaultShots, method: MethodAutomatic}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Backend is an opaque capability provider: it can enumerate the simulation
// methods it supports and run circuits.
type Backend interface {
	// Name identifies the backend within a Provider.
	Name() string

	// Version is the backend's semantic version string.
	Version() string

	// AvailableMethods lists the simulation methods this backend provides.
	AvailableMethods(ctx context.Context) ([]string, error)

	// Run executes the circuit and returns its result. A non-nil error means
	// execution failed; a logic error inside the simulation is also surfaced
	// as an error (wrapping errors.ErrSimulationFailed).
	Run(ctx context.Context, c *Circuit, opts ...RunOption) (*Result, error)
}
