package notify

import (
	"fmt"
)

// EventKind identifies which Observer callback an Event stands for.
type EventKind int

const (
	// EventInserted maps to OnRangeInserted.
	EventInserted EventKind = iota

	// EventRemoved maps to OnRangeRemoved.
	EventRemoved

	// EventChanged maps to OnRangeChanged.
	EventChanged

	// EventMoved maps to OnRangeMoved.
	EventMoved
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventInserted:
		return "inserted"
	case EventRemoved:
		return "removed"
	case EventChanged:
		return "changed"
	case EventMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// Event is a captured Observer callback.
type Event struct {
	Kind    EventKind
	Start   int
	Count   int
	To      int // destination for EventMoved
	Payload any // payload for EventChanged
}

// Deliver invokes the matching callback on o.
func (e Event) Deliver(o Observer) {
	switch e.Kind {
	case EventInserted:
		o.OnRangeInserted(e.Start, e.Count)
	case EventRemoved:
		o.OnRangeRemoved(e.Start, e.Count)
	case EventChanged:
		o.OnRangeChanged(e.Start, e.Count, e.Payload)
	case EventMoved:
		o.OnRangeMoved(e.Start, e.To, e.Count)
	}
}

// String renders the event the way the callback would be written,
// e.g. "Insert(0, 3)" or "Move(0, 2)".
func (e Event) String() string {
	switch e.Kind {
	case EventInserted:
		return fmt.Sprintf("Insert(%d, %d)", e.Start, e.Count)
	case EventRemoved:
		return fmt.Sprintf("Remove(%d, %d)", e.Start, e.Count)
	case EventChanged:
		if e.Payload == nil {
			return fmt.Sprintf("Change(%d, %d)", e.Start, e.Count)
		}
		return fmt.Sprintf("Change(%d, %d, %v)", e.Start, e.Count, e.Payload)
	case EventMoved:
		if e.Count == 1 {
			return fmt.Sprintf("Move(%d, %d)", e.Start, e.To)
		}
		return fmt.Sprintf("Move(%d, %d, %d)", e.Start, e.To, e.Count)
	default:
		return "Unknown"
	}
}

// Insert returns an insertion event.
func Insert(start, count int) Event {
	return Event{Kind: EventInserted, Start: start, Count: count}
}

// Remove returns a removal event.
func Remove(start, count int) Event {
	return Event{Kind: EventRemoved, Start: start, Count: count}
}

// Change returns a content change event.
func Change(start, count int, payload any) Event {
	return Event{Kind: EventChanged, Start: start, Count: count, Payload: payload}
}

// Move returns a move event for a single item.
func Move(from, to int) Event {
	return Event{Kind: EventMoved, Start: from, To: to, Count: 1}
}
