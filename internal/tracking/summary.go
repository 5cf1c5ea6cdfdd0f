package tracking

import (
	"fmt"
	"strings"

	"github.com/dshills/listsync/internal/notify"
)

// Summary counts the items touched by a sequence of events.
type Summary struct {
	Events   int
	Inserted int
	Removed  int
	Changed  int
	Moved    int
}

// Summarize tallies events by kind, counting items rather than events.
func Summarize(events []notify.Event) Summary {
	s := Summary{Events: len(events)}
	for _, e := range events {
		switch e.Kind {
		case notify.EventInserted:
			s.Inserted += e.Count
		case notify.EventRemoved:
			s.Removed += e.Count
		case notify.EventChanged:
			s.Changed += e.Count
		case notify.EventMoved:
			s.Moved += e.Count
		}
	}
	return s
}

// IsEmpty reports whether no events were summarized.
func (s Summary) IsEmpty() bool {
	return s.Events == 0
}

// String returns a human-readable summary such as
// "2 inserted, 1 moved (3 events)".
func (s Summary) String() string {
	if s.IsEmpty() {
		return "no changes"
	}

	var parts []string
	if s.Inserted > 0 {
		parts = append(parts, fmt.Sprintf("%d inserted", s.Inserted))
	}
	if s.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", s.Removed))
	}
	if s.Changed > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", s.Changed))
	}
	if s.Moved > 0 {
		parts = append(parts, fmt.Sprintf("%d moved", s.Moved))
	}

	noun := "events"
	if s.Events == 1 {
		noun = "event"
	}
	return fmt.Sprintf("%s (%d %s)", strings.Join(parts, ", "), s.Events, noun)
}
