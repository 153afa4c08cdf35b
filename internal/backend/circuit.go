// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"fmt"

	"github.com/dotandev/qharness/internal/errors"
)

// Op is a single gate or measurement applied to a circuit.
type Op struct {
	Gate   string    `json:"gate"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
}

// Circuit is a minimal quantum-circuit value: a qubit count and an ordered
// list of operations. It is the unit of work fed to a Backend.
type Circuit struct {
	Name   string `json:"name,omitempty"`
	Qubits int    `json:"qubits"`
	Ops    []Op   `json:"ops"`
}

// New returns an empty circuit over n qubits.
func New(n int) *Circuit {
	return &Circuit{Qubits: n}
}

// Trivial returns the one-qubit probe circuit used for capability checks:
// a single Hadamard followed by a measurement. Backends must be able to run
// it regardless of method support.
func Trivial() *Circuit {
	c := New(1)
	c.H(0)
	c.Measure(0)
	return c
}

func (c *Circuit) add(gate string, qubits []int, params ...float64) *Circuit {
	c.Ops = append(c.Ops, Op{Gate: gate, Qubits: qubits, Params: params})
	return c
}

// H applies a Hadamard gate to qubit q.
func (c *Circuit) H(q int) *Circuit { return c.add("h", []int{q}) }

// X applies a Pauli-X gate to qubit q.
func (c *Circuit) X(q int) *Circuit { return c.add("x", []int{q}) }

// Z applies a Pauli-Z gate to qubit q.
func (c *Circuit) Z(q int) *Circuit { return c.add("z", []int{q}) }

// CX applies a controlled-X gate with control qubit ctrl and target tgt.
func (c *Circuit) CX(ctrl, tgt int) *Circuit { return c.add("cx", []int{ctrl, tgt}) }

// Measure records a terminal measurement of qubit q.
func (c *Circuit) Measure(q int) *Circuit { return c.add("measure", []int{q}) }

// Validate checks qubit indices and gate arities.
func (c *Circuit) Validate() error {
	if c.Qubits <= 0 {
		return errors.WrapInvalidCircuit("circuit must have at least one qubit")
	}
	for i, op := range c.Ops {
		arity, ok := gateArity[op.Gate]
		if !ok {
			return errors.WrapInvalidCircuit(fmt.Sprintf("op %d: unknown gate %q", i, op.Gate))
		}
		if len(op.Qubits) != arity {
			return errors.WrapInvalidCircuit(
				fmt.Sprintf("op %d: gate %q wants %d qubits, got %d", i, op.Gate, arity, len(op.Qubits)))
		}
		for _, q := range op.Qubits {
			if q < 0 || q >= c.Qubits {
				return errors.WrapInvalidCircuit(
					fmt.Sprintf("op %d: qubit %d out of range [0,%d)", i, q, c.Qubits))
			}
		}
	}
	return nil
}

var gateArity = map[string]int{
	"h":       1,
	"x":       1,
	"z":       1,
	"cx":      2,
	"measure": 1,
}

// Measured returns the qubits with a terminal measurement, in first-seen order.
func (c *Circuit) Measured() []int {
	seen := make(map[int]bool)
	var out []int
	for _, op := range c.Ops {
		if op.Gate != "measure" {
			continue
		}
		q := op.Qubits[0]
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}
