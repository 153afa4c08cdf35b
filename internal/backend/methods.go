// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"slices"

	"github.com/dotandev/qharness/internal/errors"
)

// Simulation method names shared across backends.
const (
	MethodAutomatic          = "automatic"
	MethodStatevector        = "statevector"
	MethodDensityMatrix      = "density_matrix"
	MethodStabilizer         = "stabilizer"
	MethodMatrixProductState = "matrix_product_state"
	MethodUnitary            = "unitary"
)

// MethodSpec describes what a given simulator protocol version provides.
type MethodSpec struct {
	Version   uint32
	Name      string
	Methods   []string
	MaxQubits int
	Features  map[string]any
}

var methodSpecs = map[uint32]*MethodSpec{
	1: {
		Version:   1,
		Name:      "qsim protocol 1",
		Methods:   []string{MethodAutomatic, MethodStatevector},
		MaxQubits: 24,
		Features: map[string]any{
			"noise_model":     false,
			"shot_branching":  false,
			"omp_parallelism": true,
		},
	},
	2: {
		Version:   2,
		Name:      "qsim protocol 2",
		Methods:   []string{MethodAutomatic, MethodStatevector, MethodDensityMatrix, MethodStabilizer},
		MaxQubits: 28,
		Features: map[string]any{
			"noise_model":     true,
			"shot_branching":  false,
			"omp_parallelism": true,
		},
	},
	3: {
		Version: 3,
		Name:    "qsim protocol 3",
		Methods: []string{
			MethodAutomatic, MethodStatevector, MethodDensityMatrix,
			MethodStabilizer, MethodMatrixProductState, MethodUnitary,
		},
		MaxQubits: 32,
		Features: map[string]any{
			"noise_model":     true,
			"shot_branching":  true,
			"omp_parallelism": true,
		},
	},
}

var latestMethodVersion uint32 = 3

// LatestVersion returns the newest supported simulator protocol version.
func LatestVersion() uint32 {
	return latestMethodVersion
}

// Methods returns the capability table for a simulator protocol version.
func Methods(version uint32) (*MethodSpec, error) {
	if s, exists := methodSpecs[version]; exists {
		return s, nil
	}
	return nil, errors.WrapVersionUnsupported(version)
}

// MethodsOrLatest falls back to the latest table when version is zero or
// unknown.
func MethodsOrLatest(version uint32) *MethodSpec {
	if s, exists := methodSpecs[version]; exists {
		return s
	}
	return methodSpecs[latestMethodVersion]
}

// SupportsMethod reports whether the protocol version provides method.
func SupportsMethod(version uint32, method string) bool {
	s, err := Methods(version)
	if err != nil {
		return false
	}
	return slices.Contains(s.Methods, method)
}
