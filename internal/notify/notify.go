// Package notify delivers list change notifications to observers.
//
// An Observer receives range-based callbacks describing how a list changed:
// insertions, removals, moves and content changes. Positions are always
// expressed in the observer's own index space at the moment the callback
// fires, so a sequence of callbacks can be replayed one after another
// against a mirrored copy of the list.
//
// The Notifier fans a single stream of callbacks out to any number of
// subscribed observers. Observers are collected under a read lock and
// invoked outside of it, so an observer may subscribe, unsubscribe or read
// from the list it is observing without deadlocking.
package notify

import (
	"sync"
)

// Observer receives range-based change notifications.
type Observer interface {
	// OnRangeInserted is called after count items were inserted at start.
	OnRangeInserted(start, count int)

	// OnRangeRemoved is called after count items were removed from start.
	OnRangeRemoved(start, count int)

	// OnRangeChanged is called after count items starting at start changed
	// content. Payload is optional and may be nil.
	OnRangeChanged(start, count int, payload any)

	// OnRangeMoved is called after count items moved from one position to
	// another.
	OnRangeMoved(from, to, count int)
}

// ObserverFuncs adapts optional callback functions to an Observer.
// Nil fields are ignored.
type ObserverFuncs struct {
	Inserted func(start, count int)
	Removed  func(start, count int)
	Changed  func(start, count int, payload any)
	Moved    func(from, to, count int)
}

// OnRangeInserted implements Observer.
func (f ObserverFuncs) OnRangeInserted(start, count int) {
	if f.Inserted != nil {
		f.Inserted(start, count)
	}
}

// OnRangeRemoved implements Observer.
func (f ObserverFuncs) OnRangeRemoved(start, count int) {
	if f.Removed != nil {
		f.Removed(start, count)
	}
}

// OnRangeChanged implements Observer.
func (f ObserverFuncs) OnRangeChanged(start, count int, payload any) {
	if f.Changed != nil {
		f.Changed(start, count, payload)
	}
}

// OnRangeMoved implements Observer.
func (f ObserverFuncs) OnRangeMoved(from, to, count int) {
	if f.Moved != nil {
		f.Moved(from, to, count)
	}
}

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type subscriber struct {
	id       uint64
	observer Observer
}

// Notifier manages observer subscriptions and fans notifications out to
// them in subscription order. Notifier itself implements Observer.
type Notifier struct {
	mu          sync.RWMutex
	subscribers []subscriber
	nextID      uint64
	closed      bool
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers an observer. A nil observer is ignored and yields a
// subscription whose Unsubscribe does nothing.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	if observer == nil {
		return &Subscription{}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subscribers = append(n.subscribers, subscriber{id: id, observer: observer})

	return &Subscription{id: id, notifier: n}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Close stops all further deliveries. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.subscribers = nil
}

// OnRangeInserted implements Observer.
func (n *Notifier) OnRangeInserted(start, count int) {
	for _, obs := range n.observers() {
		obs.OnRangeInserted(start, count)
	}
}

// OnRangeRemoved implements Observer.
func (n *Notifier) OnRangeRemoved(start, count int) {
	for _, obs := range n.observers() {
		obs.OnRangeRemoved(start, count)
	}
}

// OnRangeChanged implements Observer.
func (n *Notifier) OnRangeChanged(start, count int, payload any) {
	for _, obs := range n.observers() {
		obs.OnRangeChanged(start, count, payload)
	}
}

// OnRangeMoved implements Observer.
func (n *Notifier) OnRangeMoved(from, to, count int) {
	for _, obs := range n.observers() {
		obs.OnRangeMoved(from, to, count)
	}
}

// observers returns a copy of the current observers, taken under the read
// lock so callbacks run without it.
func (n *Notifier) observers() []Observer {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed || len(n.subscribers) == 0 {
		return nil
	}

	observers := make([]Observer, len(n.subscribers))
	for i, sub := range n.subscribers {
		observers[i] = sub.observer
	}
	return observers
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, sub := range n.subscribers {
		if sub.id == id {
			n.subscribers = append(n.subscribers[:i:i], n.subscribers[i+1:]...)
			return
		}
	}
}

var _ Observer = (*Notifier)(nil)
