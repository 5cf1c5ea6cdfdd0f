// Package identity defines how two items are compared when a list changes.
//
// Two questions are asked about a pair of items:
//
//   - SameItem: do they represent the same logical entity (for example the
//     same primary key)? This drives insert/remove/move decisions.
//   - SameContent: given that they are the same entity, is their content
//     unchanged? This drives change notifications.
//
// Items may be absent (a nil pointer, interface, map, slice, func or chan).
// Two absent items are the same item with the same content; an absent item
// never matches a present one.
package identity

import (
	"reflect"
)

// Matcher decides identity and content equality of items.
type Matcher[T any] interface {
	// SameItem reports whether a and b represent the same entity.
	SameItem(a, b T) bool

	// SameContent reports whether a and b, already known to be the same
	// entity, carry the same content.
	SameContent(a, b T) bool
}

// IDMatcher matches items by a caller-supplied identity.
// Identities are compared with ==, so an identity function returning a
// fresh value on every call simply never matches. An identity that holds
// an uncomparable dynamic value (a slice in an any, say) matches nothing.
type IDMatcher[T any, K comparable] struct {
	id      func(T) K
	content func(a, b T) bool
}

// ByID returns a matcher that compares identities returned by id and
// compares content with reflect.DeepEqual.
func ByID[T any, K comparable](id func(T) K) IDMatcher[T, K] {
	return IDMatcher[T, K]{id: id}
}

// WithContent returns a copy of m that uses eq for content equality.
// Absent items are handled before eq is consulted.
func (m IDMatcher[T, K]) WithContent(eq func(a, b T) bool) IDMatcher[T, K] {
	m.content = eq
	return m
}

// SameItem implements Matcher.
func (m IDMatcher[T, K]) SameItem(a, b T) bool {
	aAbsent, bAbsent := IsAbsent(a), IsAbsent(b)
	if aAbsent || bAbsent {
		return aAbsent && bAbsent
	}
	if m.id == nil {
		return false
	}
	return sameKey(m.id(a), m.id(b))
}

// sameKey is a == b without the run-time panic == raises for interface
// values whose dynamic type is not comparable.
func sameKey[K comparable](a, b K) bool {
	if !reflect.ValueOf(&a).Elem().Comparable() || !reflect.ValueOf(&b).Elem().Comparable() {
		return false
	}
	return a == b
}

// SameContent implements Matcher.
func (m IDMatcher[T, K]) SameContent(a, b T) bool {
	return Equal(a, b, m.content)
}

// Funcs adapts two plain functions to a Matcher.
// A nil Content falls back to Equal.
type Funcs[T any] struct {
	Item    func(a, b T) bool
	Content func(a, b T) bool
}

// SameItem implements Matcher.
func (f Funcs[T]) SameItem(a, b T) bool {
	aAbsent, bAbsent := IsAbsent(a), IsAbsent(b)
	if aAbsent || bAbsent {
		return aAbsent && bAbsent
	}
	if f.Item == nil {
		return false
	}
	return f.Item(a, b)
}

// SameContent implements Matcher.
func (f Funcs[T]) SameContent(a, b T) bool {
	return Equal(a, b, f.Content)
}

// Equal reports value equality of a and b. Absent values are equal only to
// other absent values. A nil eq means reflect.DeepEqual.
func Equal[T any](a, b T, eq func(a, b T) bool) bool {
	aAbsent, bAbsent := IsAbsent(a), IsAbsent(b)
	if aAbsent || bAbsent {
		return aAbsent && bAbsent
	}
	if eq != nil {
		return eq(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// IsAbsent reports whether v is a nil value of a nillable kind.
// Values of non-nillable kinds (strings, numbers, structs) are never absent.
func IsAbsent[T any](v T) bool {
	return isNil(reflect.ValueOf(&v).Elem())
}

// isNil looks through interfaces so a typed nil pointer stored in an any
// counts as absent.
func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isNil(rv.Elem())
	case reflect.Pointer, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

var (
	_ Matcher[any] = IDMatcher[any, int]{}
	_ Matcher[any] = Funcs[any]{}
)
