package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalescer(t *testing.T) {
	tests := []struct {
		name string
		in   []Event
		want []Event
	}{
		{
			name: "inserts at same position",
			in:   []Event{Insert(2, 1), Insert(2, 1), Insert(2, 1)},
			want: []Event{Insert(2, 3)},
		},
		{
			name: "insert before range",
			in:   []Event{Insert(3, 2), Insert(1, 1)},
			want: []Event{Insert(3, 2), Insert(1, 1)},
		},
		{
			name: "removes walking backwards",
			in:   []Event{Remove(4, 1), Remove(3, 1), Remove(2, 1)},
			want: []Event{Remove(2, 3)},
		},
		{
			name: "removes with gap",
			in:   []Event{Remove(4, 1), Remove(1, 1)},
			want: []Event{Remove(4, 1), Remove(1, 1)},
		},
		{
			name: "adjacent changes",
			in:   []Event{Change(2, 1, nil), Change(1, 1, nil), Change(3, 2, nil)},
			want: []Event{Change(1, 4, nil)},
		},
		{
			name: "different payloads",
			in:   []Event{Change(2, 1, "a"), Change(1, 1, "b")},
			want: []Event{Change(2, 1, "a"), Change(1, 1, "b")},
		},
		{
			name: "equal payloads",
			in:   []Event{Change(2, 1, "a"), Change(1, 1, "a")},
			want: []Event{Change(1, 2, "a")},
		},
		{
			name: "uncomparable payloads",
			in:   []Event{Change(2, 1, []int{1}), Change(1, 1, []int{1})},
			want: []Event{Change(2, 1, []int{1}), Change(1, 1, []int{1})},
		},
		{
			name: "moves flush and never merge",
			in:   []Event{Insert(0, 1), Move(1, 2), Move(2, 3), Insert(0, 1)},
			want: []Event{Insert(0, 1), Move(1, 2), Move(2, 3), Insert(0, 1)},
		},
		{
			name: "kind change flushes",
			in:   []Event{Remove(2, 1), Insert(2, 1)},
			want: []Event{Remove(2, 1), Insert(2, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBatch(nil)
			c := NewCoalescer(b)
			for _, e := range tt.in {
				e.Deliver(c)
			}
			c.Flush()
			c.Flush()
			assert.Equal(t, tt.want, b.Events())
		})
	}
}
