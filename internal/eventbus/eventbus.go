// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

// Package eventbus carries harness-internal notifications, such as probe
// cache refreshes, from the storage layer to interested CLI or daemon
// listeners.
package eventbus

import (
	"sync"
)

// Topics emitted by the harness.
const (
	// TopicProbeUpdated fires when a backend's cached capability record is
	// written or refreshed. Payload: probestore record for the backend.
	TopicProbeUpdated = "probe.updated"

	// TopicProbeExpired fires when expired probe records are pruned.
	// Payload: int count of removed records.
	TopicProbeExpired = "probe.expired"
)

// HandlerID uniquely identifies a registered event listener.
// It is returned by Subscribe and must be passed to Unsubscribe.
type HandlerID uint64

// Handler is a function that receives an event payload.
type Handler func(payload any)

// Bus is a concurrency-safe publish/subscribe event bus. Multiple goroutines
// may call Emit, Subscribe, and Unsubscribe simultaneously.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[HandlerID]Handler
	nextID   HandlerID
}

// New returns a new, ready-to-use Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string]map[HandlerID]Handler),
	}
}

var defaultBus = New()

// Default returns the process-wide bus shared by the probe store, daemon,
// and CLI.
func Default() *Bus {
	return defaultBus
}

// Subscribe registers handler to be called whenever an event of the given
// topic is emitted. It returns a HandlerID that can be used to unsubscribe.
func (b *Bus) Subscribe(topic string, handler Handler) HandlerID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[HandlerID]Handler)
	}
	b.handlers[topic][id] = handler

	return id
}

// Unsubscribe removes the listener identified by id from the given topic.
// It is safe to call from within a Handler or while Emit is in progress.
func (b *Bus) Unsubscribe(topic string, id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if listeners, ok := b.handlers[topic]; ok {
		delete(listeners, id)
		if len(listeners) == 0 {
			delete(b.handlers, topic)
		}
	}
}

// Emit delivers payload to all handlers currently subscribed to topic.
// Handler references are snapshotted under the lock and invoked after it is
// released, so a handler may itself call Subscribe or Unsubscribe.
func (b *Bus) Emit(topic string, payload any) {
	b.mu.RLock()
	listeners := b.handlers[topic]
	snapshot := make([]Handler, 0, len(listeners))
	for _, h := range listeners {
		snapshot = append(snapshot, h)
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(payload)
	}
}

// SubscriberCount returns the number of active subscribers for a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
