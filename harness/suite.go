// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"reflect"
	"strings"
	"testing"
)

// Lifecycle hook names the suite runner looks for.
const (
	hookSetupTest    = "SetupTest"
	hookTearDownTest = "TearDownTest"
)

// Run executes every Test* method of s as a subtest, running SetupTest and
// TearDownTest around each one under e's call enforcement. A missed parent
// call fails the test immediately.
//
// Test methods may take a *testing.T parameter or none at all.
func Run(t *testing.T, s Suite, e *Enforcer) {
	t.Helper()
	e.Init(s)

	sv := reflect.ValueOf(s)
	st := reflect.TypeOf(s)

	for i := 0; i < st.NumMethod(); i++ {
		method := st.Method(i)
		if !strings.HasPrefix(method.Name, "Test") {
			continue
		}
		if !isTestSignature(method.Type) {
			continue
		}

		t.Run(method.Name, func(t *testing.T) {
			runHook(t, s, e, hookSetupTest)
			defer runHook(t, s, e, hookTearDownTest)

			m := sv.MethodByName(method.Name)
			if m.Type().NumIn() == 1 {
				m.Call([]reflect.Value{reflect.ValueOf(t)})
			} else {
				m.Call(nil)
			}
		})
	}
}

// runHook calls the named lifecycle hook when s has one, surfacing a
// MissedCallError as a fatal test failure.
func runHook(t *testing.T, s Suite, e *Enforcer, name string) {
	t.Helper()

	if !reflect.ValueOf(s).MethodByName(name).IsValid() {
		return
	}
	if err := e.Invoke(s, name); err != nil {
		t.Fatalf("%v", err)
	}
}

// isTestSignature accepts func() and func(*testing.T) methods.
func isTestSignature(mt reflect.Type) bool {
	// NumIn includes the receiver for methods obtained from a Type.
	switch mt.NumIn() {
	case 1:
		return mt.NumOut() == 0
	case 2:
		return mt.NumOut() == 0 && mt.In(1) == reflect.TypeOf((*testing.T)(nil))
	default:
		return false
	}
}
