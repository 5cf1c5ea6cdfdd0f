package notify

import (
	"sync"
)

// Batch collects events and delivers them as a group. A Batch implements
// Observer, so it can stand in for the real target while a mutation is in
// progress and be committed once the lock protecting the list is released.
type Batch struct {
	mu     sync.Mutex
	target Observer
	events []Event
}

// NewBatch creates a batch delivering to target on Commit.
func NewBatch(target Observer) *Batch {
	return &Batch{target: target}
}

// Add appends an event to the batch.
func (b *Batch) Add(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// OnRangeInserted implements Observer.
func (b *Batch) OnRangeInserted(start, count int) {
	b.Add(Event{Kind: EventInserted, Start: start, Count: count})
}

// OnRangeRemoved implements Observer.
func (b *Batch) OnRangeRemoved(start, count int) {
	b.Add(Event{Kind: EventRemoved, Start: start, Count: count})
}

// OnRangeChanged implements Observer.
func (b *Batch) OnRangeChanged(start, count int, payload any) {
	b.Add(Event{Kind: EventChanged, Start: start, Count: count, Payload: payload})
}

// OnRangeMoved implements Observer.
func (b *Batch) OnRangeMoved(from, to, count int) {
	b.Add(Event{Kind: EventMoved, Start: from, To: to, Count: count})
}

// Events returns a copy of the pending events, or nil if there are none.
func (b *Batch) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	events := make([]Event, len(b.events))
	copy(events, b.events)
	return events
}

// Commit delivers all pending events to the target in order and empties
// the batch.
func (b *Batch) Commit() {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.mu.Unlock()

	if b.target == nil {
		return
	}
	for _, e := range events {
		e.Deliver(b.target)
	}
}

// Discard clears the batch without delivering anything.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// Len returns the number of pending events.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

var _ Observer = (*Batch)(nil)
