// Package sink provides the in-memory implementation of the tracking
// event queue the client-side data layer drains.
package sink

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"ecomtag/internal/constants"
	"ecomtag/internal/tracking"
	"ecomtag/pkg/metrics"
)

// Memory is an append-only event queue. Append order is preserved;
// payloads that hash to an already queued payload are suppressed, so a
// double-submitted storefront action does not reach the data layer
// twice. It is the one resource shared across requests and is safe for
// concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []*tracking.Event
	seen   map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		events: make([]*tracking.Event, 0, constants.DefaultEventQueueCapacity),
		seen:   make(map[string]struct{}),
	}
}

func (m *Memory) AddEvent(event *tracking.Event) {
	hash, err := hashEvent(event)
	if err != nil {
		// An unmarshalable payload cannot reach the data layer anyway.
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.seen[hash]; dup {
		return
	}
	m.seen[hash] = struct{}{}
	m.events = append(m.events, event)
	metrics.SinkQueueDepth.Set(float64(len(m.events)))
}

// Events returns a snapshot of the queued events in append order.
func (m *Memory) Events() []*tracking.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*tracking.Event, len(m.events))
	copy(snapshot, m.events)
	return snapshot
}

// Flush returns the queued events and empties the queue.
func (m *Memory) Flush() []*tracking.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.events
	m.events = make([]*tracking.Event, 0, constants.DefaultEventQueueCapacity)
	m.seen = make(map[string]struct{})
	metrics.SinkQueueDepth.Set(0)
	return events
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func hashEvent(event *tracking.Event) (string, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
