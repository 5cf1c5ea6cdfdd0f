package tracking

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/listsync/internal/identity"
	"github.com/dshills/listsync/internal/notify"
)

// Errors returned by Mirror.
var (
	// ErrEventOutOfRange is recorded when an event addresses positions the
	// mirror does not have.
	ErrEventOutOfRange = errors.New("event out of range")

	// ErrLengthMismatch is returned when the mirror and the reference list
	// have different lengths.
	ErrLengthMismatch = errors.New("length mismatch")
)

// MismatchError reports the first position where a mirror disagrees with
// the reference list.
type MismatchError struct {
	Index  int
	Reason string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("mirror mismatch at %d: %s", e.Index, e.Reason)
}

type slot[T any] struct {
	item T

	// stale is set for inserted and changed slots; their item must be
	// refreshed from the source list.
	stale bool
}

// Mirror maintains a copy of a list purely from change events. Inserted
// and changed slots are marked stale until Fill copies the current items
// over them, the way a view binds new rows after a notification.
//
// Mirror is safe for concurrent use.
type Mirror[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	err   error
}

// NewMirror creates a mirror starting from a copy of items.
func NewMirror[T any](items []T) *Mirror[T] {
	m := &Mirror[T]{slots: make([]slot[T], len(items))}
	for i, it := range items {
		m.slots[i].item = it
	}
	return m
}

func (m *Mirror[T]) fail(format string, args ...any) {
	if m.err == nil {
		m.err = fmt.Errorf("%w: "+format, append([]any{ErrEventOutOfRange}, args...)...)
	}
}

// OnRangeInserted implements notify.Observer.
func (m *Mirror[T]) OnRangeInserted(start, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start < 0 || start > len(m.slots) || count < 0 {
		m.fail("insert(%d, %d) into %d items", start, count, len(m.slots))
		return
	}
	added := make([]slot[T], count)
	for i := range added {
		added[i].stale = true
	}
	m.slots = slices.Insert(m.slots, start, added...)
}

// OnRangeRemoved implements notify.Observer.
func (m *Mirror[T]) OnRangeRemoved(start, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start < 0 || count < 0 || start+count > len(m.slots) {
		m.fail("remove(%d, %d) from %d items", start, count, len(m.slots))
		return
	}
	m.slots = slices.Delete(m.slots, start, start+count)
}

// OnRangeChanged implements notify.Observer.
func (m *Mirror[T]) OnRangeChanged(start, count int, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start < 0 || count < 0 || start+count > len(m.slots) {
		m.fail("change(%d, %d) in %d items", start, count, len(m.slots))
		return
	}
	for i := start; i < start+count; i++ {
		m.slots[i].stale = true
	}
}

// OnRangeMoved implements notify.Observer.
func (m *Mirror[T]) OnRangeMoved(from, to, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.slots)
	if from < 0 || to < 0 || count < 0 || from+count > n || to+count > n {
		m.fail("move(%d, %d, %d) in %d items", from, to, count, n)
		return
	}
	moved := slices.Clone(m.slots[from : from+count])
	m.slots = slices.Delete(m.slots, from, from+count)
	m.slots = slices.Insert(m.slots, to, moved...)
}

// Err returns the first out-of-range event the mirror received.
func (m *Mirror[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Len returns the number of slots.
func (m *Mirror[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

// Stale returns the number of slots waiting for Fill.
func (m *Mirror[T]) Stale() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.slots {
		if s.stale {
			n++
		}
	}
	return n
}

// Items returns a copy of the mirrored items. Stale slots hold whatever
// they held before Fill; inserted ones hold the zero value.
func (m *Mirror[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]T, len(m.slots))
	for i, s := range m.slots {
		items[i] = s.item
	}
	return items
}

// Fill refreshes every stale slot from the item at the same position in
// items.
func (m *Mirror[T]) Fill(items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if len(items) != len(m.slots) {
		return fmt.Errorf("fill: %w: mirror has %d, source has %d", ErrLengthMismatch, len(m.slots), len(items))
	}
	for i := range m.slots {
		if m.slots[i].stale {
			m.slots[i] = slot[T]{item: items[i]}
		}
	}
	return nil
}

// Verify checks that the mirror holds exactly items, comparing each slot
// with matcher. Slots still stale are reported as mismatches, as are
// fresh slots whose content differs, since the event that should have
// marked them was never delivered.
func (m *Mirror[T]) Verify(items []T, matcher identity.Matcher[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if len(items) != len(m.slots) {
		return fmt.Errorf("verify: %w: mirror has %d, source has %d", ErrLengthMismatch, len(m.slots), len(items))
	}
	for i, s := range m.slots {
		switch {
		case s.stale:
			return &MismatchError{Index: i, Reason: "slot not filled"}
		case !matcher.SameItem(s.item, items[i]):
			return &MismatchError{Index: i, Reason: "different item"}
		case !matcher.SameContent(s.item, items[i]):
			return &MismatchError{Index: i, Reason: "content changed without notification"}
		}
	}
	return nil
}

var _ notify.Observer = (*Mirror[int])(nil)
