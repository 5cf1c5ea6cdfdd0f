package store

import (
	"slices"
	"time"

	"github.com/dshills/listsync/internal/diff"
	"github.com/dshills/listsync/internal/identity"
	"github.com/dshills/listsync/internal/notify"
)

// Swap replaces the whole list with a copy of items and notifies observers
// of the minimal set of changes between the two. A nil items clears the
// store.
func (s *Store[T]) Swap(items []T) error {
	if err := s.checkAbsent("swap", items...); err != nil {
		return err
	}
	next := slices.Clone(items)
	s.swap("swap", func([]T) []T { return next })
	return nil
}

// Sort orders the items with cmp, keeping equal items in their current
// order. Observers see the reordering as moves.
func (s *Store[T]) Sort(cmp func(a, b T) int) {
	s.swap("sort", func(current []T) []T {
		sorted := slices.Clone(current)
		slices.SortStableFunc(sorted, cmp)
		return sorted
	})
}

// swap replaces the list with build(current). The diff runs without any
// lock held, against a snapshot. If another writer commits in the
// meantime the snapshot is stale and the whole step is repeated. After
// maxSwapAttempts the replacement is committed anyway with a full
// remove-and-insert, which is correct whatever the current contents are.
// build must not modify its argument.
func (s *Store[T]) swap(op string, build func(current []T) []T) {
	for attempt := 1; ; attempt++ {
		snap := s.Snapshot()
		next := build(snap.Items)

		start := time.Now()
		result := diff.Compare(snap.Items, next, s.matcher, s.diffOptions(snap.Items, next)...)
		elapsed := time.Since(start)
		s.metrics.ObserveDiff(elapsed, result.FellBack())

		c := s.commitSwap(snap.Revision, next, result, build, attempt < maxSwapAttempts)
		if c.retry {
			s.log.Debug().
				Str("op", op).
				Int("attempt", attempt).
				Msg("list changed during diff, retrying")
			continue
		}
		if c.replacedAll {
			s.log.Warn().
				Str("op", op).
				Int("attempts", attempt).
				Msg("list kept changing during diff, replacing everything")
		}
		if len(c.events) == 0 {
			return
		}
		next = c.next

		if result.FellBack() {
			s.log.Warn().
				Str("op", op).
				Int("old", snap.Len()).
				Int("new", len(next)).
				Msg("edit distance limit exceeded, replacing everything")
		}
		s.log.Debug().
			Str("op", op).
			Int("old", snap.Len()).
			Int("new", len(next)).
			Dur("diff", elapsed).
			Msg("swap computed")

		s.publish(op, c.rev, c.events...)
		return
	}
}

// swapCommit is the outcome of one commitSwap call.
type swapCommit[T any] struct {
	next        []T
	events      []notify.Event
	rev         uint64
	retry       bool
	replacedAll bool
}

// commitSwap installs the swap result under the write lock. A stale
// snapshot asks for a retry when canRetry is set; otherwise the list is
// rebuilt from the current contents so no committed item is lost, and
// replaced with a full remove-and-insert. A swap whose script is empty but
// whose values differ bumps the revision without notifying.
func (s *Store[T]) commitSwap(snapRev uint64, next []T, result *diff.Result, build func([]T) []T, canRetry bool) swapCommit[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c swapCommit[T]
	if s.revision == snapRev {
		c.events = result.Script()
	} else {
		if canRetry {
			c.retry = true
			return c
		}
		next = build(s.items)
		c.events = replaceAll(len(s.items), len(next))
		c.replacedAll = true
	}

	changed := len(c.events) > 0 || !slices.EqualFunc(s.items, next, func(a, b T) bool {
		return identity.Equal(a, b, nil)
	})
	s.items = next
	c.next = next
	if changed {
		c.rev = s.commitLocked()
	}
	return c
}

func (s *Store[T]) diffOptions(oldItems, newItems []T) []diff.Option {
	if s.payload == nil {
		return s.diffOpts
	}
	opts := slices.Clip(s.diffOpts)
	return append(opts, diff.WithChangePayload(func(oldIndex, newIndex int) any {
		return s.payload(oldItems[oldIndex], newItems[newIndex])
	}))
}

// replaceAll is the script turning any list of n items into m new ones.
func replaceAll(n, m int) []notify.Event {
	var events []notify.Event
	if n > 0 {
		events = append(events, notify.Remove(0, n))
	}
	if m > 0 {
		events = append(events, notify.Insert(0, m))
	}
	return events
}
