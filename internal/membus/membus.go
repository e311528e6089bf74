// Package membus provides an in-memory implementation of the core pub/sub
// contract. It backs unit tests and single-process demo runs where no
// broker is available.
package membus

import (
	"strings"
	"sync"

	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
)

// Bus delivers published messages synchronously to every subscriber whose
// pattern matches the topic. It supports the MQTT multi-level wildcard as a
// suffix ("prefix/#").
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]coremqtt.Handler
	closed bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]coremqtt.Handler)}
}

// Publish delivers the payload to all matching subscribers. It never fails:
// like the real channel, delivery to zero observers is not an error.
func (b *Bus) Publish(topic string, payload []byte) error {
	b.mu.RLock()
	var handlers []coremqtt.Handler
	if !b.closed {
		for pattern, hs := range b.subs {
			if topicMatches(pattern, topic) {
				handlers = append(handlers, hs...)
			}
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(topic, payload)
	}
	return nil
}

// Subscribe registers a handler for the given topic pattern.
func (b *Bus) Subscribe(pattern string, h coremqtt.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[pattern] = append(b.subs[pattern], h)
	return nil
}

// Unsubscribe removes all handlers registered under the pattern.
func (b *Bus) Unsubscribe(pattern string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, pattern)
	return nil
}

// Close drops all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[string][]coremqtt.Handler{}
}

func topicMatches(pattern, topic string) bool {
	if pattern == topic || pattern == "#" {
		return true
	}
	if suffix, ok := strings.CutSuffix(pattern, "/#"); ok {
		return topic == suffix || strings.HasPrefix(topic, suffix+"/")
	}
	return false
}
