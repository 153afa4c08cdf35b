// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"sort"
	"sync"

	"github.com/dotandev/qharness/internal/errors"
)

// Factory constructs a backend on first use.
type Factory func() (Backend, error)

// Provider is a named registry of backends. Construction is lazy and cached,
// so registering a backend whose binary is missing only fails when the
// backend is actually requested.
type Provider struct {
	mu        sync.Mutex
	factories map[string]Factory
	cache     map[string]Backend
}

// NewProvider returns an empty registry.
func NewProvider() *Provider {
	return &Provider{
		factories: make(map[string]Factory),
		cache:     make(map[string]Backend),
	}
}

// Register adds a backend factory under name, replacing any previous one.
func (p *Provider) Register(name string, f Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[name] = f
	delete(p.cache, name)
}

// Get returns the backend registered under name, constructing it on first
// use.
func (p *Provider) Get(name string) (Backend, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if b, ok := p.cache[name]; ok {
		return b, nil
	}
	f, ok := p.factories[name]
	if !ok {
		return nil, errors.WrapBackendNotFound(name)
	}
	b, err := f()
	if err != nil {
		return nil, err
	}
	p.cache[name] = b
	return b, nil
}

// Available lists registered backend names in sorted order.
func (p *Provider) Available() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.factories))
	for name := range p.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultProvider = func() *Provider {
	p := NewProvider()
	p.Register("local", func() (Backend, error) { return NewLocal(), nil })
	p.Register("qsim", func() (Backend, error) { return NewRunner() })
	return p
}()

// DefaultProvider returns the process-wide registry. "local" and "qsim" are
// pre-registered; tests register mocks on top.
func DefaultProvider() *Provider {
	return defaultProvider
}
