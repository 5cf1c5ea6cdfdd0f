// Package metrics exposes prometheus instrumentation for stores.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/listsync/internal/notify"
)

// DefaultNamespace is used when New is given an empty namespace.
const DefaultNamespace = "listsync"

const subsystem = "store"

// Metrics holds the collectors for one registry.
type Metrics struct {
	events    *prometheus.CounterVec
	items     *prometheus.CounterVec
	mutations *prometheus.CounterVec
	diffTime  prometheus.Histogram
	fallbacks prometheus.Counter
}

// New creates the collectors and registers them with reg. If a collector
// is already registered, the existing one is reused, so several stores can
// share a registry.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_total",
			Help:      "Change events delivered to observers, by kind.",
		}, []string{"kind"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "items_total",
			Help:      "Items covered by delivered change events, by kind.",
		}, []string{"kind"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "mutations_total",
			Help:      "Committed store mutations, by operation.",
		}, []string{"op"}),
		diffTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "diff_duration_seconds",
			Help:      "Time spent computing list differences.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "diff_fallbacks_total",
			Help:      "Differences that exceeded the edit distance limit and replaced the whole list.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	m.events = register(reg, m.events, &err)
	m.items = register(reg, m.items, &err)
	m.mutations = register(reg, m.mutations, &err)
	m.diffTime = register(reg, m.diffTime, &err)
	m.fallbacks = register(reg, m.fallbacks, &err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, returning the already registered collector on
// conflict. The first hard error is stored in errp.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	if *errp == nil {
		*errp = err
	}
	return c
}

// ObserveEvent counts an event delivered to observers.
func (m *Metrics) ObserveEvent(e notify.Event) {
	if m == nil {
		return
	}
	kind := e.Kind.String()
	m.events.WithLabelValues(kind).Inc()
	m.items.WithLabelValues(kind).Add(float64(e.Count))
}

// ObserveDiff records the duration of a diff and whether it fell back to a
// full replace.
func (m *Metrics) ObserveDiff(d time.Duration, fellBack bool) {
	if m == nil {
		return
	}
	m.diffTime.Observe(d.Seconds())
	if fellBack {
		m.fallbacks.Inc()
	}
}

// ObserveMutation counts a committed mutation.
func (m *Metrics) ObserveMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}
