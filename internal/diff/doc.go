// Package diff computes the minimal edit script between two lists.
//
// Items are compared by identity first (is this the same entity?) and by
// content second (has the entity changed?). The comparison runs Myers'
// O((N+M)D) algorithm over identity, then pairs up removed and inserted
// items that share an identity so they can be reported as moves.
//
// # Core Components
//
//   - [Calculate]: Compares two slices using a pair of predicates
//   - [Compare]: Compares two slices using an [identity.Matcher]
//   - [Result]: The computed difference, replayable onto any observer
//
// # Usage
//
//	r := diff.Compare(oldItems, newItems, identity.ByID(func(u User) int { return u.ID }))
//	r.DispatchTo(observer)
//
// Events are emitted back to front. Applying them in order to a copy of
// the old list yields the new list, which is what [notify.Observer]
// implementations such as a mirrored view rely on.
//
// # Limits
//
// Myers keeps one V array per edit step, so memory grows with the square
// of the edit distance. Once the distance passes the limit set with
// [WithMaxEditDistance] the search stops and the result removes the whole
// old list and inserts the whole new one.
package diff
