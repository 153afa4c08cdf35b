// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

// Package harness provides the shared test-harness utilities for simulator
// test suites: skip helpers keyed on backend capabilities, a deprecation
// assertion wrapper, and an enforcement mechanism that makes overriding
// suite types call their embedded parent's lifecycle methods.
package harness

import (
	"fmt"
	"reflect"
	"sort"
)

// DefaultMarkerKey namespaces the call-tracking marker. Suites enforced by
// two independent enforcers give each its own key so the markers cannot
// collide.
const DefaultMarkerKey = "enforce_calls"

// Tracked owns the per-instance call-tracking marker. Embed it (directly, or
// through an embedded parent suite) at the root of an enforced hierarchy;
// the zero value is usable, and Enforcer.Init refreshes it.
type Tracked struct {
	marks map[string]map[string]struct{}
}

// Suite is satisfied by any struct that embeds Tracked somewhere in its
// embedding chain.
type Suite interface {
	marker() *Tracked
}

func (tr *Tracked) marker() *Tracked { return tr }

func (tr *Tracked) resetKey(key string) {
	if tr.marks == nil {
		tr.marks = make(map[string]map[string]struct{})
	}
	tr.marks[key] = make(map[string]struct{})
}

func (tr *Tracked) record(key, name string) {
	if tr.marks == nil {
		tr.marks = make(map[string]map[string]struct{})
	}
	set := tr.marks[key]
	if set == nil {
		set = make(map[string]struct{})
		tr.marks[key] = set
	}
	set[name] = struct{}{}
}

func (tr *Tracked) clear(key, name string) {
	if set := tr.marks[key]; set != nil {
		delete(set, name)
	}
}

func (tr *Tracked) called(key, name string) bool {
	set := tr.marks[key]
	if set == nil {
		return false
	}
	_, ok := set[name]
	return ok
}

// MissedCallError reports that an overriding method returned without its
// parent implementation having run. It is a programmer-error assertion and
// is never recovered by the harness.
type MissedCallError struct {
	Type   string
	Method string
}

func (e *MissedCallError) Error() string {
	return fmt.Sprintf(
		"parent %q method was not called by %q; ensure the override calls the embedded parent's %s",
		e.Method, e.Type+"."+e.Method, e.Method)
}

// Enforcer checks that overrides of a fixed set of method names call through
// to the base implementation. The method set is fixed at construction time.
type Enforcer struct {
	key     string
	methods map[string]struct{}
}

// EnforceOption adjusts an Enforcer.
type EnforceOption func(*Enforcer)

// WithMarkerKey changes the marker key used on the tracked instance, so a
// second enforcement of the same hierarchy does not clash with the first.
func WithMarkerKey(key string) EnforceOption {
	return func(e *Enforcer) { e.key = key }
}

// EnforceCalls builds an enforcer for the named methods. The names do not
// have to exist on a given suite type; enforcement applies wherever they
// resolve in its embedding chain.
func EnforceCalls(methods []string, opts ...EnforceOption) *Enforcer {
	e := &Enforcer{
		key:     DefaultMarkerKey,
		methods: make(map[string]struct{}, len(methods)),
	}
	for _, m := range methods {
		e.methods[m] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Methods returns the enforced method names in sorted order.
func (e *Enforcer) Methods() []string {
	out := make([]string, 0, len(e.methods))
	for m := range e.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Enforces reports whether name is in the enforced set.
func (e *Enforcer) Enforces(name string) bool {
	_, ok := e.methods[name]
	return ok
}

// Init gives s a fresh, empty marker for this enforcer. Constructors call it
// so no stale compliance state survives into a new instance; Invoke and
// Check also call it lazily for markers that were never initialized.
func (e *Enforcer) Init(s Suite) {
	s.marker().resetKey(e.key)
}

// Record marks the base implementation of name as having run on s. The
// base-most implementation of every enforced method calls Record first;
// overrides then satisfy the contract by reaching the base through their
// embedded parent, however many levels deep.
func (e *Enforcer) Record(s Suite, name string) {
	s.marker().record(e.key, name)
}

// Base wraps fn, the base implementation of the enforced method name on s,
// so the record happens before the body runs. An alternative to calling
// Record inline:
//
//	func (s *simSuite) Setup() { s.enf.Base(s, "Setup", s.setup)() }
func (e *Enforcer) Base(s Suite, name string, fn func()) func() {
	return wrap(fn, func() { e.Record(s, name) }, nil)
}

// Check runs fn as the resolved implementation of the enforced method name
// on s: it discards any stale success for name, runs fn, and returns a
// *MissedCallError if the base implementation did not run. For method names
// outside the enforced set fn runs unchecked.
func (e *Enforcer) Check(s Suite, name string, fn func()) error {
	if !e.Enforces(name) {
		fn()
		return nil
	}

	tr := s.marker()
	if tr.marks == nil {
		e.Init(s)
	}

	wrapped := wrap(fn,
		func() { tr.clear(e.key, name) },
		nil,
	)
	wrapped()

	if !tr.called(e.key, name) {
		return &MissedCallError{Type: typeName(s), Method: name}
	}
	return nil
}

// Invoke resolves the outermost implementation of name on s by reflection
// and runs it under Check. Overriding is Go method shadowing: whichever
// implementation the concrete type promotes is the one called, so newly
// declared suite types are picked up without registration.
func (e *Enforcer) Invoke(s Suite, name string, args ...any) error {
	m := reflect.ValueOf(s).MethodByName(name)
	if !m.IsValid() {
		return fmt.Errorf("%s has no method %q", typeName(s), name)
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}

	return e.Check(s, name, func() { m.Call(in) })
}

// wrap surrounds fn with optional before and after hooks. It is the shared
// primitive under the enforcement, skip, and deprecation wrappers.
func wrap(fn, before, after func()) func() {
	return func() {
		if before != nil {
			before()
		}
		fn()
		if after != nil {
			after()
		}
	}
}

func typeName(s Suite) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
