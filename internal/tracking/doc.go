// Package tracking records and replays list change events.
//
// # Core Components
//
//   - [Tracker]: Bounded, sequence-numbered history of events
//   - [Mirror]: A copy of a list maintained only from events
//   - [Summary]: Per-kind item counts for a batch of events
//
// Both Tracker and Mirror implement [notify.Observer] and can be
// subscribed to a store directly:
//
//	tracker := tracking.NewTracker(tracking.WithMaxEvents(500))
//	sub := s.Subscribe(tracker)
//	defer sub.Unsubscribe()
//
//	// Later: what happened since the last poll?
//	events := tracker.EventsSince(lastSeq)
//
// A Mirror is the reference consumer: after every batch of events,
// Fill it from the source list and Verify that it matches.
package tracking
