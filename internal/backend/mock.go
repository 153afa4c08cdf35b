// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import "context"

// Mock is a configurable Backend for tests.
type Mock struct {
	BackendName    string
	BackendVersion string
	Methods        []string
	RunFunc        func(ctx context.Context, c *Circuit, opts ...RunOption) (*Result, error)
	MethodsErr     error
}

func (m *Mock) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

func (m *Mock) Version() string {
	if m.BackendVersion == "" {
		return "0.0.0"
	}
	return m.BackendVersion
}

func (m *Mock) AvailableMethods(ctx context.Context) ([]string, error) {
	if m.MethodsErr != nil {
		return nil, m.MethodsErr
	}
	return m.Methods, nil
}

func (m *Mock) Run(ctx context.Context, c *Circuit, opts ...RunOption) (*Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, c, opts...)
	}
	o := applyRunOptions(opts)
	return &Result{
		Status: "success",
		Shots:  o.shots,
		Metadata: Metadata{
			Method:     MethodStatevector,
			OMPEnabled: true,
			NumThreads: 2,
		},
	}, nil
}

// NewDefaultMock returns a mock that succeeds with statevector support and
// OpenMP reported available.
func NewDefaultMock() *Mock {
	return &Mock{Methods: []string{MethodAutomatic, MethodStatevector}}
}
