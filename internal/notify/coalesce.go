package notify

import "reflect"

// Coalescer merges consecutive events of the same kind into ranges before
// passing them on. Adjacent single-item inserts become one ranged insert,
// and so on. Moves are never merged. Call Flush after the last event.
//
// A Coalescer is not safe for concurrent use.
type Coalescer struct {
	target  Observer
	last    Event
	pending bool
}

// NewCoalescer creates a Coalescer delivering to target.
func NewCoalescer(target Observer) *Coalescer {
	return &Coalescer{target: target}
}

// Flush delivers the pending event, if any.
func (c *Coalescer) Flush() {
	if !c.pending {
		return
	}
	c.pending = false
	c.last.Deliver(c.target)
}

func (c *Coalescer) hold(e Event) {
	c.Flush()
	c.last = e
	c.pending = true
}

// OnRangeInserted implements Observer.
func (c *Coalescer) OnRangeInserted(start, count int) {
	if c.pending && c.last.Kind == EventInserted &&
		start >= c.last.Start && start <= c.last.Start+c.last.Count {
		c.last.Count += count
		c.last.Start = min(start, c.last.Start)
		return
	}
	c.hold(Insert(start, count))
}

// OnRangeRemoved implements Observer.
func (c *Coalescer) OnRangeRemoved(start, count int) {
	if c.pending && c.last.Kind == EventRemoved &&
		c.last.Start >= start && c.last.Start <= start+count {
		c.last.Count += count
		c.last.Start = start
		return
	}
	c.hold(Remove(start, count))
}

// OnRangeChanged implements Observer. Ranges merge only when they touch
// and carry the same payload.
func (c *Coalescer) OnRangeChanged(start, count int, payload any) {
	if c.pending && c.last.Kind == EventChanged &&
		start <= c.last.Start+c.last.Count && start+count >= c.last.Start &&
		samePayload(c.last.Payload, payload) {
		end := max(c.last.Start+c.last.Count, start+count)
		c.last.Start = min(start, c.last.Start)
		c.last.Count = end - c.last.Start
		return
	}
	c.hold(Change(start, count, payload))
}

// OnRangeMoved implements Observer.
func (c *Coalescer) OnRangeMoved(from, to, count int) {
	c.Flush()
	c.target.OnRangeMoved(from, to, count)
}

// samePayload reports whether two payloads are identical. Payloads that
// cannot be compared with == are never the same.
func samePayload(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

var _ Observer = (*Coalescer)(nil)
