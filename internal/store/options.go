package store

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/listsync/internal/diff"
	"github.com/dshills/listsync/internal/metrics"
)

// ReplaceMode selects how Replace reports an in-place replacement.
type ReplaceMode int

const (
	// ReplaceSmart compares the old and new item. Same identity and content
	// emits nothing, same identity with new content emits a change, and a
	// different identity emits a removal followed by an insertion.
	ReplaceSmart ReplaceMode = iota

	// ReplaceNaive always emits a removal followed by an insertion.
	ReplaceNaive
)

// String returns the configuration name of the mode.
func (m ReplaceMode) String() string {
	switch m {
	case ReplaceSmart:
		return "smart"
	case ReplaceNaive:
		return "naive"
	default:
		return "unknown"
	}
}

// AbsentPolicy selects whether absent (nil) items may be stored.
type AbsentPolicy int

const (
	// AllowAbsent stores absent items like any other value.
	AllowAbsent AbsentPolicy = iota

	// RejectAbsent makes every operation that would store an absent item
	// fail with ErrAbsentItem before touching the list.
	RejectAbsent
)

// String returns the configuration name of the policy.
func (p AbsentPolicy) String() string {
	switch p {
	case AllowAbsent:
		return "allow"
	case RejectAbsent:
		return "reject"
	default:
		return "unknown"
	}
}

// maxSwapAttempts bounds how often Swap recomputes its diff when another
// writer commits while the diff is running.
const maxSwapAttempts = 3

// Option configures a Store during creation.
type Option func(*options)

type options struct {
	name        string
	replaceMode ReplaceMode
	absent      AbsentPolicy
	diffOpts    []diff.Option
	payload     func(oldItem, newItem any) any
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

func defaultOptions() options {
	return options{
		name:   uuid.NewString(),
		logger: zerolog.Nop(),
	}
}

// WithName sets the name used in log entries. Defaults to a random UUID.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithReplaceMode sets the behavior of Replace.
func WithReplaceMode(mode ReplaceMode) Option {
	return func(o *options) {
		o.replaceMode = mode
	}
}

// WithAbsentPolicy sets whether absent items are accepted.
func WithAbsentPolicy(policy AbsentPolicy) Option {
	return func(o *options) {
		o.absent = policy
	}
}

// WithDetectMoves enables or disables move detection in Swap and Sort.
func WithDetectMoves(detect bool) Option {
	return func(o *options) {
		o.diffOpts = append(o.diffOpts, diff.WithDetectMoves(detect))
	}
}

// WithMaxEditDistance caps the diff search in Swap and Sort.
// See diff.WithMaxEditDistance.
func WithMaxEditDistance(max int) Option {
	return func(o *options) {
		o.diffOpts = append(o.diffOpts, diff.WithMaxEditDistance(max))
	}
}

// WithChangePayload sets the payload passed with change events produced by
// Swap and Sort. fn receives the old and new item.
func WithChangePayload(fn func(oldItem, newItem any) any) Option {
	return func(o *options) {
		o.payload = fn
	}
}

// WithLogger sets the logger. Mutations are logged at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
