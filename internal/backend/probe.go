// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"

	"github.com/dotandev/qharness/internal/errors"
	"github.com/dotandev/qharness/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Capabilities is the distilled outcome of probing a backend: everything the
// skip helpers and the CLI capability report need.
type Capabilities struct {
	Backend    string   `json:"backend"`
	Version    string   `json:"version"`
	Methods    []string `json:"methods"`
	OMPEnabled bool     `json:"omp_enabled"`
	NumThreads int      `json:"num_threads"`
	MaxQubits  int      `json:"max_qubits"`
}

// HasMethod reports whether the probed backend provides method.
func (c *Capabilities) HasMethod(method string) bool {
	for _, m := range c.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Probe runs the trivial one-qubit workload on b and distills the backend's
// capabilities from the method listing and the run metadata.
func Probe(ctx context.Context, b Backend) (*Capabilities, error) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "probe_backend")
	span.SetAttributes(attribute.String("backend.name", b.Name()))
	defer span.End()

	methods, err := b.AvailableMethods(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errors.WrapProbeFailed(b.Name(), err)
	}

	res, err := b.Run(ctx, Trivial(), WithShots(1))
	if err != nil {
		span.RecordError(err)
		return nil, errors.WrapProbeFailed(b.Name(), err)
	}

	span.SetAttributes(
		attribute.Bool("backend.omp_enabled", res.Metadata.OMPEnabled),
		attribute.Int("backend.num_threads", res.Metadata.NumThreads),
	)

	return &Capabilities{
		Backend:    b.Name(),
		Version:    b.Version(),
		Methods:    methods,
		OMPEnabled: res.Metadata.OMPEnabled,
		NumThreads: res.Metadata.NumThreads,
		MaxQubits:  res.Metadata.MaxQubits,
	}, nil
}
