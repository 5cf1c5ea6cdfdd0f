package notify

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKind_String(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventInserted, "inserted"},
		{EventRemoved, "removed"},
		{EventChanged, "changed"},
		{EventMoved, "moved"},
		{EventKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Insert(0, 3), "Insert(0, 3)"},
		{Remove(2, 1), "Remove(2, 1)"},
		{Change(0, 3, nil), "Change(0, 3)"},
		{Change(1, 1, "x"), "Change(1, 1, x)"},
		{Move(0, 2), "Move(0, 2)"},
		{Event{Kind: EventMoved, Start: 0, To: 4, Count: 2}, "Move(0, 4, 2)"},
		{Event{Kind: EventKind(42)}, "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.String())
	}
}

func TestEvent_Deliver(t *testing.T) {
	var got []Event
	obs := ObserverFuncs{
		Inserted: func(start, count int) { got = append(got, Insert(start, count)) },
		Removed:  func(start, count int) { got = append(got, Remove(start, count)) },
		Changed:  func(start, count int, p any) { got = append(got, Change(start, count, p)) },
		Moved: func(from, to, count int) {
			got = append(got, Event{Kind: EventMoved, Start: from, To: to, Count: count})
		},
	}

	want := []Event{Insert(1, 2), Remove(0, 1), Change(3, 1, "p"), Move(4, 0)}
	for _, e := range want {
		e.Deliver(obs)
	}

	assert.Equal(t, want, got)
}

func TestObserverFuncs_NilFields(t *testing.T) {
	var obs ObserverFuncs
	assert.NotPanics(t, func() {
		obs.OnRangeInserted(0, 1)
		obs.OnRangeRemoved(0, 1)
		obs.OnRangeChanged(0, 1, nil)
		obs.OnRangeMoved(0, 1, 1)
	})
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var received atomic.Int32
	sub := n.Subscribe(ObserverFuncs{
		Inserted: func(start, count int) { received.Add(1) },
	})
	require.Equal(t, 1, n.Len())

	n.OnRangeInserted(0, 1)
	assert.Equal(t, int32(1), received.Load())

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, n.Len())

	n.OnRangeInserted(0, 1)
	assert.Equal(t, int32(1), received.Load(), "unsubscribed observer received notification")
}

func TestNotifier_Order(t *testing.T) {
	n := New()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		n.Subscribe(ObserverFuncs{
			Removed: func(start, count int) { order = append(order, i) },
		})
	}

	n.OnRangeRemoved(0, 1)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestNotifier_NilObserver(t *testing.T) {
	n := New()
	sub := n.Subscribe(nil)
	assert.Equal(t, 0, n.Len())
	assert.NotPanics(t, sub.Unsubscribe)
}

func TestNotifier_ReentrantSubscribe(t *testing.T) {
	n := New()

	var inner atomic.Int32
	n.Subscribe(ObserverFuncs{
		Inserted: func(start, count int) {
			// Subscribing from inside a callback must not deadlock.
			n.Subscribe(ObserverFuncs{
				Inserted: func(start, count int) { inner.Add(1) },
			})
		},
	})

	n.OnRangeInserted(0, 1)
	assert.Equal(t, int32(0), inner.Load())
	assert.Equal(t, 2, n.Len())

	n.OnRangeInserted(0, 1)
	assert.Equal(t, int32(1), inner.Load())
}

func TestNotifier_Close(t *testing.T) {
	n := New()

	var received atomic.Int32
	n.Subscribe(ObserverFuncs{
		Changed: func(start, count int, payload any) { received.Add(1) },
	})

	n.Close()
	n.Close()
	n.OnRangeChanged(0, 1, nil)
	assert.Equal(t, int32(0), received.Load())
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var received atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := n.Subscribe(ObserverFuncs{
				Moved: func(from, to, count int) { received.Add(1) },
			})
			for j := 0; j < 100; j++ {
				n.OnRangeMoved(0, 1, 1)
			}
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Len())
	assert.Positive(t, received.Load())
}

func TestBatch(t *testing.T) {
	var got []Event
	target := ObserverFuncs{
		Inserted: func(start, count int) { got = append(got, Insert(start, count)) },
		Removed:  func(start, count int) { got = append(got, Remove(start, count)) },
	}

	b := NewBatch(target)
	b.OnRangeRemoved(2, 1)
	b.OnRangeInserted(2, 1)
	require.Equal(t, 2, b.Len())
	assert.Empty(t, got, "batch delivered before commit")
	assert.Equal(t, []Event{Remove(2, 1), Insert(2, 1)}, b.Events())

	b.Commit()
	assert.Equal(t, []Event{Remove(2, 1), Insert(2, 1)}, got)
	assert.Equal(t, 0, b.Len())

	b.OnRangeInserted(0, 1)
	b.Discard()
	b.Commit()
	assert.Len(t, got, 2)
}

func TestBatch_NilTarget(t *testing.T) {
	b := NewBatch(nil)
	b.OnRangeMoved(0, 1, 1)
	assert.NotPanics(t, b.Commit)
	assert.Equal(t, 0, b.Len())
}
