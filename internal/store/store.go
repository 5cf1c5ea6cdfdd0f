package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/listsync/internal/diff"
	"github.com/dshills/listsync/internal/identity"
	"github.com/dshills/listsync/internal/metrics"
	"github.com/dshills/listsync/internal/notify"
)

// Snapshot is an immutable copy of the store contents at a revision.
type Snapshot[T any] struct {
	Revision uint64
	Items    []T
}

// Len returns the number of items in the snapshot.
func (s Snapshot[T]) Len() int {
	return len(s.Items)
}

// Store is an ordered list that notifies observers of every change.
//
// All operations are thread-safe. Mutations hold the write lock only while
// the list is being changed; observers are called afterwards, from the
// mutating goroutine, with positions captured under the lock. An observer
// may therefore call back into the store.
type Store[T any] struct {
	mu       sync.RWMutex
	items    []T
	revision uint64

	matcher  identity.Matcher[T]
	notifier *notify.Notifier

	name        string
	replaceMode ReplaceMode
	absent      AbsentPolicy
	diffOpts    []diff.Option
	payload     func(oldItem, newItem any) any
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

// New creates an empty store comparing items with m.
func New[T any](m identity.Matcher[T], opts ...Option) *Store[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T]{
		matcher:     m,
		notifier:    notify.New(),
		name:        o.name,
		replaceMode: o.replaceMode,
		absent:      o.absent,
		diffOpts:    o.diffOpts,
		payload:     o.payload,
		log:         o.logger.With().Str("store", o.name).Logger(),
		metrics:     o.metrics,
	}
}

// NewFromItems creates a store holding a copy of items.
func NewFromItems[T any](m identity.Matcher[T], items []T, opts ...Option) (*Store[T], error) {
	s := New(m, opts...)
	if err := s.checkAbsent("new", items...); err != nil {
		return nil, err
	}
	s.items = slices.Clone(items)
	return s, nil
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.name
}

// Subscribe registers an observer for all future changes.
func (s *Store[T]) Subscribe(o notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(o)
}

// Close stops all notifications. The store stays usable.
func (s *Store[T]) Close() {
	s.notifier.Close()
}

// Read operations

// Item returns the item at index, or false if index is out of range.
func (s *Store[T]) Item(index int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[index], true
}

// Len returns the number of items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Position returns the index of the first item equal to item, or -1.
// Equality is value equality, not identity.
func (s *Store[T]) Position(item T) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(item)
}

// Items returns a copy of the items.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Revision returns a counter incremented by every mutation that changed
// the list.
func (s *Store[T]) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns a copy of the items together with their revision.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{Revision: s.revision, Items: slices.Clone(s.items)}
}

// Mutations

// Add appends item.
func (s *Store[T]) Add(item T) error {
	if err := s.checkAbsent("add", item); err != nil {
		return err
	}

	var ev notify.Event
	rev := s.mutate(func() bool {
		ev = notify.Insert(len(s.items), 1)
		s.items = append(s.items, item)
		return true
	})

	s.publish("add", rev, ev)
	return nil
}

// AddAll appends items as a single range. Adding nothing is a no-op.
func (s *Store[T]) AddAll(items ...T) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.checkAbsent("add all", items...); err != nil {
		return err
	}

	var ev notify.Event
	rev := s.mutate(func() bool {
		ev = notify.Insert(len(s.items), len(items))
		s.items = append(s.items, items...)
		return true
	})

	s.publish("add_all", rev, ev)
	return nil
}

// Insert places item at index, shifting later items up. index may equal
// Len() to append.
func (s *Store[T]) Insert(item T, index int) error {
	if err := s.checkAbsent("insert", item); err != nil {
		return err
	}

	var n int
	rev := s.mutate(func() bool {
		n = len(s.items)
		if index < 0 || index > n {
			return false
		}
		s.items = slices.Insert(s.items, index, item)
		return true
	})
	if rev == 0 {
		return fmt.Errorf("store: insert at %d into %d items: %w", index, n, ErrIndexOutOfRange)
	}

	s.publish("insert", rev, notify.Insert(index, 1))
	return nil
}

// Remove removes the first item equal to item. It reports whether an item
// was removed; a missing item is not an error.
func (s *Store[T]) Remove(item T) bool {
	var pos int
	rev := s.mutate(func() bool {
		if pos = s.indexOf(item); pos < 0 {
			return false
		}
		s.items = slices.Delete(s.items, pos, pos+1)
		return true
	})
	if rev == 0 {
		return false
	}

	s.publish("remove", rev, notify.Remove(pos, 1))
	return true
}

// RemoveAt removes and returns the item at index. It returns false if index
// is out of range.
func (s *Store[T]) RemoveAt(index int) (T, bool) {
	var item T
	rev := s.mutate(func() bool {
		if index < 0 || index >= len(s.items) {
			return false
		}
		item = s.items[index]
		s.items = slices.Delete(s.items, index, index+1)
		return true
	})
	if rev == 0 {
		return item, false
	}

	s.publish("remove_at", rev, notify.Remove(index, 1))
	return item, true
}

// Clear removes all items. Clearing an empty store is a no-op.
func (s *Store[T]) Clear() {
	var n int
	rev := s.mutate(func() bool {
		if n = len(s.items); n == 0 {
			return false
		}
		s.items = nil
		return true
	})
	if rev == 0 {
		return
	}

	s.publish("clear", rev, notify.Remove(0, n))
}

// Replace swaps the first item equal to oldItem for newItem, in place,
// using the configured ReplaceMode. It reports whether oldItem was found.
func (s *Store[T]) Replace(oldItem, newItem T) (bool, error) {
	return s.replace(oldItem, newItem, s.replaceMode)
}

// ReplaceSmart is Replace with ReplaceSmart semantics, whatever the
// configured mode.
func (s *Store[T]) ReplaceSmart(oldItem, newItem T) (bool, error) {
	return s.replace(oldItem, newItem, ReplaceSmart)
}

// ReplaceNaive is Replace with ReplaceNaive semantics, whatever the
// configured mode.
func (s *Store[T]) ReplaceNaive(oldItem, newItem T) (bool, error) {
	return s.replace(oldItem, newItem, ReplaceNaive)
}

// replace decides the events before touching the slot, so a panicking
// matcher leaves the list as it was. A replacement the matcher calls
// unchanged but that stores a different value still bumps the revision,
// without notifying, so a concurrent Swap cannot commit over it.
func (s *Store[T]) replace(oldItem, newItem T, mode ReplaceMode) (bool, error) {
	if err := s.checkAbsent("replace", newItem); err != nil {
		return false, err
	}

	var (
		found  bool
		events []notify.Event
	)
	rev := s.mutate(func() bool {
		pos := s.indexOf(oldItem)
		if pos < 0 {
			return false
		}
		found = true
		current := s.items[pos]

		switch {
		case mode == ReplaceNaive || !s.matcher.SameItem(current, newItem):
			events = []notify.Event{notify.Remove(pos, 1), notify.Insert(pos, 1)}
		case !s.matcher.SameContent(current, newItem):
			events = []notify.Event{notify.Change(pos, 1, newItem)}
		case identity.Equal(current, newItem, nil):
			return false
		}

		s.items[pos] = newItem
		return true
	})

	if len(events) > 0 {
		s.publish("replace", rev, events...)
	}
	return found, nil
}

// Internal helpers

// indexOf returns the first index of item by value equality (must hold lock).
func (s *Store[T]) indexOf(item T) int {
	return slices.IndexFunc(s.items, func(v T) bool {
		return identity.Equal(v, item, nil)
	})
}

// mutate runs fn under the write lock. fn reports whether it changed the
// list; if so the revision is bumped and returned. It returns 0 otherwise.
// The lock is released even if fn panics.
func (s *Store[T]) mutate(fn func() bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn() {
		return 0
	}
	return s.commitLocked()
}

// commitLocked records a mutation and returns the new revision (must hold
// the write lock).
func (s *Store[T]) commitLocked() uint64 {
	s.revision++
	return s.revision
}

// checkAbsent validates items against the absent policy.
func (s *Store[T]) checkAbsent(op string, items ...T) error {
	if s.absent != RejectAbsent {
		return nil
	}
	for i, item := range items {
		if identity.IsAbsent(item) {
			return fmt.Errorf("store: %s: item %d: %w", op, i, ErrAbsentItem)
		}
	}
	return nil
}

// publish logs and counts a committed mutation, then delivers its events.
// It must be called without holding the lock.
func (s *Store[T]) publish(op string, rev uint64, events ...notify.Event) {
	s.metrics.ObserveMutation(op)

	s.log.Debug().
		Str("op", op).
		Uint64("revision", rev).
		Int("events", len(events)).
		Msg("mutation committed")

	for _, ev := range events {
		s.metrics.ObserveEvent(ev)
		ev.Deliver(s.notifier)
	}
}
