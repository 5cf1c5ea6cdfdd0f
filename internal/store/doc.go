// Package store provides Store, a thread-safe ordered list that reports
// every change to its observers as range events.
//
// Single-item operations (Add, Insert, Remove, Replace, Clear) describe
// their own change directly. Swap and Sort replace the whole list and let
// package diff work out the minimal set of inserts, removals, moves and
// changes between the old and new contents.
//
// # Usage
//
//	s := store.New(identity.ByID(func(u User) int { return u.ID }),
//	    store.WithLogger(logger),
//	)
//	sub := s.Subscribe(observer)
//	defer sub.Unsubscribe()
//
//	s.Add(User{ID: 1, Name: "ann"})   // Insert(0, 1)
//	s.Swap(fetchUsers())              // minimal script
//	s.Sort(func(a, b User) int {      // moves only
//	    return strings.Compare(a.Name, b.Name)
//	})
//
// # Absent items
//
// By default nil items (nil pointers, interfaces, maps and so on) are
// ordinary values: two nil items are the same item with the same content.
// WithAbsentPolicy(RejectAbsent) turns them into ErrAbsentItem instead.
//
// # Concurrency
//
// Reads take a read lock, mutations the write lock. Observers run after
// the lock is released, so under concurrent writers the order in which
// observers see two mutations can differ from the order they were
// committed in. A single writer with any number of readers is always
// reported exactly.
package store
