// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package eventbus

import (
	"sync"
	"testing"
)

func TestSubscribeAndEmit(t *testing.T) {
	bus := New()

	var received []any
	bus.Subscribe(TopicProbeUpdated, func(payload any) {
		received = append(received, payload)
	})

	bus.Emit(TopicProbeUpdated, "local")
	bus.Emit(TopicProbeUpdated, 42)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0] != "local" {
		t.Errorf("expected 'local', got %v", received[0])
	}
	if received[1] != 42 {
		t.Errorf("expected 42, got %v", received[1])
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := New()

	var count int
	id := bus.Subscribe("topic", func(any) { count++ })

	bus.Emit("topic", nil)
	if count != 1 {
		t.Fatalf("expected 1 call before unsubscribe, got %d", count)
	}

	bus.Unsubscribe("topic", id)
	bus.Emit("topic", nil)

	if count != 1 {
		t.Errorf("handler called after Unsubscribe: got %d calls total", count)
	}
}

func TestEmitNoSubscribers(t *testing.T) {
	bus := New()
	// Must not panic.
	bus.Emit("nobody.listens", nil)
}

func TestUnsubscribeFromHandler(t *testing.T) {
	bus := New()

	var calls int
	var id HandlerID
	id = bus.Subscribe("once", func(any) {
		calls++
		bus.Unsubscribe("once", id)
	})

	bus.Emit("once", nil)
	bus.Emit("once", nil)

	if calls != 1 {
		t.Errorf("expected handler to fire once, got %d", calls)
	}
	if n := bus.SubscriberCount("once"); n != 0 {
		t.Errorf("expected 0 subscribers after self-unsubscribe, got %d", n)
	}
}

func TestConcurrentEmit(t *testing.T) {
	bus := New()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("load", func(any) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Emit("load", j)
			}
		}()
	}
	wg.Wait()

	if count != 1600 {
		t.Errorf("expected 1600 deliveries, got %d", count)
	}
}

func TestDefaultBusIsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default must return the same bus")
	}
}
