// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/dotandev/qharness/internal/errors"
	"github.com/dotandev/qharness/internal/logger"
)

// LocalMaxQubits bounds the dense statevector the in-process simulator will
// allocate.
const LocalMaxQubits = 20

// Local is the in-process statevector simulator. It exists so the harness and
// its tests work without an external qsim binary; it is deliberately small
// and supports only the statevector method.
type Local struct {
	version string
}

// NewLocal returns the in-process backend.
func NewLocal() *Local {
	return &Local{version: "1.2.0"}
}

func (l *Local) Name() string    { return "local" }
func (l *Local) Version() string { return l.version }

func (l *Local) AvailableMethods(ctx context.Context) ([]string, error) {
	return []string{MethodAutomatic, MethodStatevector}, nil
}

func (l *Local) Run(ctx context.Context, c *Circuit, opts ...RunOption) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := applyRunOptions(opts)

	if o.method != MethodAutomatic && o.method != MethodStatevector {
		return nil, errors.WrapMethodUnavailable(l.Name(), o.method)
	}
	if c.Qubits > LocalMaxQubits {
		return nil, errors.WrapInvalidCircuit("circuit exceeds local backend qubit limit")
	}

	logger.Logger.Debug("running local simulation", "qubits", c.Qubits, "ops", len(c.Ops), "shots", o.shots)

	state := newStatevector(c.Qubits)
	for _, op := range c.Ops {
		state.apply(op)
	}

	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	counts := state.sample(c.Measured(), o.shots, rand.New(rand.NewSource(seed)))

	return &Result{
		Status: "success",
		Counts: counts,
		Shots:  o.shots,
		Metadata: Metadata{
			Method:              MethodStatevector,
			OMPEnabled:          runtime.NumCPU() > 1,
			NumThreads:          runtime.GOMAXPROCS(0),
			ParallelExperiments: 1,
			MaxQubits:           LocalMaxQubits,
		},
	}, nil
}

// statevector is a dense complex amplitude vector over n qubits.
type statevector struct {
	n   int
	amp []complex128
}

func newStatevector(n int) *statevector {
	s := &statevector{n: n, amp: make([]complex128, 1<<n)}
	s.amp[0] = 1
	return s
}

func (s *statevector) apply(op Op) {
	switch op.Gate {
	case "h":
		s.hadamard(op.Qubits[0])
	case "x":
		s.pauliX(op.Qubits[0])
	case "z":
		s.pauliZ(op.Qubits[0])
	case "cx":
		s.cnot(op.Qubits[0], op.Qubits[1])
	case "measure":
		// Terminal measurement only; sampling happens after all gates.
	}
}

func (s *statevector) hadamard(q int) {
	bit := 1 << q
	inv := complex(1/math.Sqrt2, 0)
	for i := range s.amp {
		if i&bit == 0 {
			a, b := s.amp[i], s.amp[i|bit]
			s.amp[i] = inv * (a + b)
			s.amp[i|bit] = inv * (a - b)
		}
	}
}

func (s *statevector) pauliX(q int) {
	bit := 1 << q
	for i := range s.amp {
		if i&bit == 0 {
			s.amp[i], s.amp[i|bit] = s.amp[i|bit], s.amp[i]
		}
	}
}

func (s *statevector) pauliZ(q int) {
	bit := 1 << q
	for i := range s.amp {
		if i&bit != 0 {
			s.amp[i] = -s.amp[i]
		}
	}
}

func (s *statevector) cnot(ctrl, tgt int) {
	cbit, tbit := 1<<ctrl, 1<<tgt
	for i := range s.amp {
		if i&cbit != 0 && i&tbit == 0 {
			s.amp[i], s.amp[i|tbit] = s.amp[i|tbit], s.amp[i]
		}
	}
}

// sample draws shots measurement outcomes restricted to the measured qubits.
// Keys are bitstrings with the highest-indexed measured qubit leftmost.
func (s *statevector) sample(measured []int, shots int, rng *rand.Rand) map[string]int {
	if len(measured) == 0 {
		return map[string]int{}
	}

	probs := make([]float64, len(s.amp))
	for i, a := range s.amp {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}

	counts := make(map[string]int)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64()
		acc := 0.0
		outcome := len(probs) - 1
		for i, p := range probs {
			acc += p
			if r < acc {
				outcome = i
				break
			}
		}
		counts[bitstring(outcome, measured)]++
	}
	return counts
}

func bitstring(outcome int, measured []int) string {
	buf := make([]byte, len(measured))
	for i, q := range measured {
		// Highest-indexed qubit first, matching simulator count conventions.
		pos := len(measured) - 1 - i
		if outcome&(1<<q) != 0 {
			buf[pos] = '1'
		} else {
			buf[pos] = '0'
		}
	}
	return string(buf)
}
