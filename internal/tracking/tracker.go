package tracking

import (
	"sync"

	"github.com/dshills/listsync/internal/notify"
)

// DefaultMaxEvents is the default number of events a Tracker retains.
const DefaultMaxEvents = 10000

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxEvents sets how many events the tracker retains. Older events are
// dropped once the limit is reached. Values <= 0 are ignored.
func WithMaxEvents(max int) TrackerOption {
	return func(t *Tracker) {
		if max > 0 {
			t.maxEvents = max
		}
	}
}

// Record is a tracked event stamped with its sequence number.
type Record struct {
	Seq   uint64
	Event notify.Event
}

// Tracker records the events delivered to it in a bounded history.
// Every event gets a sequence number one higher than the previous, so a
// consumer can ask what happened since the last sequence it saw.
// All operations are thread-safe.
type Tracker struct {
	mu sync.RWMutex

	// Recent events in a ring buffer
	records   []Record
	head      int // Index of oldest entry
	count     int // Number of entries
	maxEvents int

	seq uint64
}

// NewTracker creates a tracker with default settings.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{maxEvents: DefaultMaxEvents}
	for _, opt := range opts {
		opt(t)
	}
	t.records = make([]Record, t.maxEvents)
	return t
}

// Record appends an event and returns its sequence number.
func (t *Tracker) Record(e notify.Event) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	idx := (t.head + t.count) % t.maxEvents
	if t.count < t.maxEvents {
		t.count++
	} else {
		// Ring buffer is full, advance head
		t.head = (t.head + 1) % t.maxEvents
	}
	t.records[idx] = Record{Seq: t.seq, Event: e}
	return t.seq
}

// OnRangeInserted implements notify.Observer.
func (t *Tracker) OnRangeInserted(start, count int) {
	t.Record(notify.Insert(start, count))
}

// OnRangeRemoved implements notify.Observer.
func (t *Tracker) OnRangeRemoved(start, count int) {
	t.Record(notify.Remove(start, count))
}

// OnRangeChanged implements notify.Observer.
func (t *Tracker) OnRangeChanged(start, count int, payload any) {
	t.Record(notify.Change(start, count, payload))
}

// OnRangeMoved implements notify.Observer.
func (t *Tracker) OnRangeMoved(from, to, count int) {
	t.Record(notify.Event{Kind: notify.EventMoved, Start: from, To: to, Count: count})
}

// Since returns the retained records with a sequence number greater than
// seq, oldest first. complete is false if some of those records have
// already been dropped from the history.
func (t *Tracker) Since(seq uint64) (records []Record, complete bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	complete = true
	if t.count > 0 && t.records[t.head].Seq > seq+1 {
		complete = false
	}
	if t.count == 0 && t.seq > seq {
		complete = false
	}

	for i := 0; i < t.count; i++ {
		r := t.records[(t.head+i)%t.maxEvents]
		if r.Seq > seq {
			records = append(records, r)
		}
	}
	return records, complete
}

// EventsSince returns the events recorded after seq, oldest first.
func (t *Tracker) EventsSince(seq uint64) []notify.Event {
	records, _ := t.Since(seq)
	if len(records) == 0 {
		return nil
	}
	events := make([]notify.Event, len(records))
	for i, r := range records {
		events[i] = r.Event
	}
	return events
}

// Latest returns the most recent n events in chronological order.
func (t *Tracker) Latest(n int) []notify.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.count {
		n = t.count
	}
	if n <= 0 {
		return nil
	}

	events := make([]notify.Event, n)
	for i := 0; i < n; i++ {
		// Start from the most recent
		idx := (t.head + t.count - 1 - i) % t.maxEvents
		events[n-1-i] = t.records[idx].Event
	}
	return events
}

// Len returns the number of retained events.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Seq returns the sequence number of the last recorded event.
func (t *Tracker) Seq() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seq
}

// Clear drops the retained history. Sequence numbers keep increasing.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head = 0
	t.count = 0
}

var _ notify.Observer = (*Tracker)(nil)
