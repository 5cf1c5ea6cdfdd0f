package diff

import (
	"github.com/dshills/listsync/internal/identity"
	"github.com/dshills/listsync/internal/notify"
)

// flag records what happened to an item between the two lists.
type flag uint8

const (
	// flagUnset marks an item with no counterpart: a pure insert or remove.
	flagUnset flag = iota

	// flagNotChanged marks an item on a common diagonal with equal content.
	flagNotChanged

	// flagChanged marks an item on a common diagonal whose content changed.
	flagChanged

	// flagMovedNotChanged marks an item matched off-diagonal with equal content.
	flagMovedNotChanged

	// flagMovedChanged marks an item matched off-diagonal whose content changed.
	flagMovedChanged
)

func (f flag) moved() bool {
	return f == flagMovedNotChanged || f == flagMovedChanged
}

func (f flag) changed() bool {
	return f == flagChanged || f == flagMovedChanged
}

// status pairs a flag with the item's position in the other list.
type status struct {
	flag flag
	pos  int
}

// Result is the outcome of comparing two lists. It can be dispatched to
// any number of observers; dispatching does not consume it.
type Result struct {
	oldLen int
	newLen int

	diagonals []diagonal
	oldStatus []status
	newStatus []status

	detectMoves bool
	fellBack    bool
	payload     func(oldIndex, newIndex int) any
}

// Calculate compares oldItems to newItems. sameItem decides whether two
// items are the same entity, sameContent whether an already matched pair is
// unchanged. A nil newItems is treated as empty. A nil sameItem matches
// nothing; a nil sameContent treats every matched pair as unchanged.
//
// Both predicates are evaluated during Calculate only, so the Result stays
// valid even if the items are mutated afterwards.
func Calculate[T any](oldItems, newItems []T, sameItem, sameContent func(a, b T) bool, opts ...Option) *Result {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	itemsSame := func(oldIndex, newIndex int) bool {
		return sameItem != nil && sameItem(oldItems[oldIndex], newItems[newIndex])
	}
	contentsSame := func(oldIndex, newIndex int) bool {
		return sameContent == nil || sameContent(oldItems[oldIndex], newItems[newIndex])
	}

	r := &Result{
		oldLen:      len(oldItems),
		newLen:      len(newItems),
		oldStatus:   make([]status, len(oldItems)),
		newStatus:   make([]status, len(newItems)),
		detectMoves: o.detectMoves,
		payload:     o.payload,
	}

	diagonals, ok := myers(r.oldLen, r.newLen, itemsSame, o.maxEditDistance)
	if !ok {
		r.fellBack = true
		r.detectMoves = false
		diagonals = nil
	}
	r.diagonals = withEdges(diagonals, r.oldLen, r.newLen)

	r.findMatchingItems(contentsSame)
	if r.detectMoves {
		r.findMoveMatches(itemsSame, contentsSame)
	}

	return r
}

// Compare is Calculate with the predicates taken from a Matcher.
func Compare[T any](oldItems, newItems []T, m identity.Matcher[T], opts ...Option) *Result {
	return Calculate(oldItems, newItems, m.SameItem, m.SameContent, opts...)
}

// findMatchingItems flags every item on a diagonal as changed or not.
func (r *Result) findMatchingItems(contentsSame func(oldIndex, newIndex int) bool) {
	for _, d := range r.diagonals {
		for i := 0; i < d.size; i++ {
			oldPos, newPos := d.x+i, d.y+i
			f := flagNotChanged
			if !contentsSame(oldPos, newPos) {
				f = flagChanged
			}
			r.oldStatus[oldPos] = status{flag: f, pos: newPos}
			r.newStatus[newPos] = status{flag: f, pos: oldPos}
		}
	}
}

// findMoveMatches pairs every removed item with the first unmatched added
// item of the same identity, if any. Both sides are flagged at once so a
// pair is always consistent, whatever the predicates return.
func (r *Result) findMoveMatches(itemsSame, contentsSame func(oldIndex, newIndex int) bool) {
	posX := 0
	for _, d := range r.diagonals {
		for ; posX < d.x; posX++ {
			if r.oldStatus[posX].flag == flagUnset {
				r.findMatchingAddition(posX, itemsSame, contentsSame)
			}
		}
		posX = d.endX()
	}
}

func (r *Result) findMatchingAddition(posX int, itemsSame, contentsSame func(oldIndex, newIndex int) bool) {
	posY := 0
	for _, d := range r.diagonals {
		for ; posY < d.y; posY++ {
			if r.newStatus[posY].flag != flagUnset || !itemsSame(posX, posY) {
				continue
			}
			f := flagMovedNotChanged
			if !contentsSame(posX, posY) {
				f = flagMovedChanged
			}
			r.oldStatus[posX] = status{flag: f, pos: posY}
			r.newStatus[posY] = status{flag: f, pos: posX}
			return
		}
		posY = d.endY()
	}
}

// OldLen returns the length of the old list.
func (r *Result) OldLen() int { return r.oldLen }

// NewLen returns the length of the new list.
func (r *Result) NewLen() int { return r.newLen }

// FellBack reports whether the edit distance exceeded the configured cap
// and the result replaces the whole list.
func (r *Result) FellBack() bool { return r.fellBack }

// HasChanges reports whether dispatching would emit any event.
func (r *Result) HasChanges() bool {
	if r.oldLen != r.newLen {
		return true
	}
	for _, s := range r.oldStatus {
		if s.flag != flagNotChanged {
			return true
		}
	}
	return false
}

// OldToNew returns the position in the new list of the item at oldIndex in
// the old list, or false if it was removed.
func (r *Result) OldToNew(oldIndex int) (int, bool) {
	if oldIndex < 0 || oldIndex >= r.oldLen {
		return -1, false
	}
	s := r.oldStatus[oldIndex]
	if s.flag == flagUnset {
		return -1, false
	}
	return s.pos, true
}

// NewToOld returns the position in the old list of the item at newIndex in
// the new list, or false if it was inserted.
func (r *Result) NewToOld(newIndex int) (int, bool) {
	if newIndex < 0 || newIndex >= r.newLen {
		return -1, false
	}
	s := r.newStatus[newIndex]
	if s.flag == flagUnset {
		return -1, false
	}
	return s.pos, true
}

// Script returns the events DispatchTo would emit, in order.
func (r *Result) Script() []notify.Event {
	b := notify.NewBatch(nil)
	r.DispatchTo(b)
	return b.Events()
}
