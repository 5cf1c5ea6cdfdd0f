package diff

// DefaultMaxEditDistance is the default edit distance beyond which
// Calculate stops searching and reports a full replace.
// The Myers trace grows with the square of the edit distance, so this
// bounds memory to a few tens of megabytes.
const DefaultMaxEditDistance = 2000

// Option configures Calculate.
type Option func(*options)

type options struct {
	detectMoves     bool
	maxEditDistance int
	payload         func(oldIndex, newIndex int) any
}

func defaultOptions() options {
	return options{
		detectMoves:     true,
		maxEditDistance: DefaultMaxEditDistance,
	}
}

// WithDetectMoves enables or disables move detection. When disabled, an
// item that changed position is reported as a removal plus an insertion.
// Moves are detected by default.
func WithDetectMoves(detect bool) Option {
	return func(o *options) {
		o.detectMoves = detect
	}
}

// WithMaxEditDistance caps the Myers search. If the two lists differ by more
// than max insertions and removals, the result replaces the whole list.
// A value <= 0 removes the cap.
func WithMaxEditDistance(max int) Option {
	return func(o *options) {
		o.maxEditDistance = max
	}
}

// WithChangePayload sets the function producing the payload passed to
// OnRangeChanged for an item whose content changed. Without it the payload
// is nil, which lets adjacent changes coalesce into one range.
func WithChangePayload(fn func(oldIndex, newIndex int) any) Option {
	return func(o *options) {
		o.payload = fn
	}
}
