package store

import "errors"

// Errors returned by store operations.
var (
	// ErrAbsentItem indicates an absent (nil) item was passed to a store
	// configured with RejectAbsent.
	ErrAbsentItem = errors.New("absent item")

	// ErrIndexOutOfRange indicates an insertion index outside [0, Len()].
	ErrIndexOutOfRange = errors.New("index out of range")
)
