// Package tracker keeps per-event recognition attempt counts for events that
// are currently in flight.
package tracker

import "sync"

// EventTracker is a concurrency-safe map of event id to attempt count. Each
// operation is individually atomic; callers requiring cross-operation
// atomicity must provide their own sequencing. The pipeline tolerates the
// resulting benign races because the attempt ceiling is a soft cap.
type EventTracker struct {
	mu     sync.Mutex
	events map[string]int
	onSize func(int)
}

// New creates an empty EventTracker. onSize, if non-nil, is invoked with the
// tracked event count after every mutation, typically to drive a gauge.
func New(onSize func(int)) *EventTracker {
	return &EventTracker{
		events: make(map[string]int),
		onSize: onSize,
	}
}

// Start begins tracking an event with zero attempts. It is idempotent: an
// already tracked event keeps its current count.
func (t *EventTracker) Start(eventID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.events[eventID]; !ok {
		t.events[eventID] = 0
		t.notifyLocked()
	}
}

// IsTracked reports whether the event is currently tracked.
func (t *EventTracker) IsTracked(eventID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.events[eventID]
	return ok
}

// Increment adds one attempt to the event and returns the new count. An
// untracked event is created with count 1.
func (t *EventTracker) Increment(eventID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[eventID]++
	t.notifyLocked()
	return t.events[eventID]
}

// Attempts returns the current attempt count, 0 when the event is not
// tracked.
func (t *EventTracker) Attempts(eventID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.events[eventID]
}

// Clear stops tracking the event. Clearing an untracked event is a no-op.
func (t *EventTracker) Clear(eventID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.events[eventID]; ok {
		delete(t.events, eventID)
		t.notifyLocked()
	}
}

// Len returns the number of currently tracked events.
func (t *EventTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *EventTracker) notifyLocked() {
	if t.onSize != nil {
		t.onSize(len(t.events))
	}
}
