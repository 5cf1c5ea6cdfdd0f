package diff

import (
	"github.com/dshills/listsync/internal/notify"
)

// postponed is one side of a move whose other side has not been reached yet.
type postponed struct {
	// ownerPos is the item's position in its own list: old for a removal,
	// new for an insertion.
	ownerPos int

	// currentPos is the distance from the end of the list being rebuilt.
	currentPos int

	removal bool
}

// DispatchTo replays the result onto o as a sequence of range events.
// Applied in order to a copy of the old list, the events turn it into the
// new list. Events are emitted from the end of the list toward the front,
// so earlier positions stay valid while later ones are being edited.
func (r *Result) DispatchTo(o notify.Observer) {
	if o == nil {
		return
	}

	out := notify.NewCoalescer(o)
	defer out.Flush()

	if r.fellBack {
		if r.oldLen > 0 {
			out.OnRangeRemoved(0, r.oldLen)
		}
		if r.newLen > 0 {
			out.OnRangeInserted(0, r.newLen)
		}
		return
	}

	var pending []postponed
	size := r.oldLen
	posX, posY := r.oldLen, r.newLen

	for i := len(r.diagonals) - 1; i >= 0; i-- {
		d := r.diagonals[i]
		endX, endY := d.endX(), d.endY()

		for posX > endX {
			posX--
			s := r.oldStatus[posX]
			if !s.flag.moved() {
				out.OnRangeRemoved(posX, 1)
				size--
				continue
			}
			if u, ok := takePostponed(&pending, s.pos, false); ok {
				to := size - u.currentPos - 1
				out.OnRangeMoved(posX, to, 1)
				if s.flag.changed() {
					out.OnRangeChanged(to, 1, r.changePayload(posX, s.pos))
				}
			} else {
				pending = append(pending, postponed{ownerPos: posX, currentPos: size - posX - 1, removal: true})
			}
		}

		for posY > endY {
			posY--
			s := r.newStatus[posY]
			if !s.flag.moved() {
				out.OnRangeInserted(posX, 1)
				size++
				continue
			}
			if u, ok := takePostponed(&pending, s.pos, true); ok {
				from := size - u.currentPos - 1
				out.OnRangeMoved(from, posX, 1)
				if s.flag.changed() {
					out.OnRangeChanged(posX, 1, r.changePayload(s.pos, posY))
				}
			} else {
				pending = append(pending, postponed{ownerPos: posY, currentPos: size - posX, removal: false})
			}
		}

		// Content changes along the diagonal
		posX, posY = d.x, d.y
		for j := 0; j < d.size; j++ {
			if r.oldStatus[posX].flag == flagChanged {
				out.OnRangeChanged(posX, 1, r.changePayload(posX, posY))
			}
			posX++
			posY++
		}
		posX, posY = d.x, d.y
	}
}

func (r *Result) changePayload(oldIndex, newIndex int) any {
	if r.payload == nil {
		return nil
	}
	return r.payload(oldIndex, newIndex)
}

// takePostponed removes and returns the pending update for ownerPos.
// Every update queued after it shifts by one, since the list between them
// gained or lost an item.
func takePostponed(pending *[]postponed, ownerPos int, removal bool) (postponed, bool) {
	list := *pending
	for i, u := range list {
		if u.ownerPos != ownerPos || u.removal != removal {
			continue
		}
		rest := list[i+1:]
		for j := range rest {
			if removal {
				rest[j].currentPos--
			} else {
				rest[j].currentPos++
			}
		}
		*pending = append(list[:i], rest...)
		return u, true
	}
	return postponed{}, false
}
