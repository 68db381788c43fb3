// Package telemetry records operation timings against fixed budgets.
// The sink is fire-and-forget: it never blocks callers and never panics,
// so it is safe to call from failure handlers.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coachcore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of coach runtime operations within budget.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	budgetExceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachcore",
			Name:      "operation_budget_exceeded_total",
			Help:      "Operations whose duration exceeded the configured budget.",
		},
		[]string{"operation"},
	)

	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coachcore",
			Name:      "events_total",
			Help:      "Counter-style telemetry events.",
		},
		[]string{"name"},
	)
)

// Default budgets for the operations this core times. Zero means unbudgeted.
const (
	BudgetMemoryFetch = 250 * time.Millisecond
	BudgetTrustUpdate = 200 * time.Millisecond
)

// Sink records timings and counters. A budget overrun is a signal, not an
// error: it swaps the normal timing record for a structured warning and
// never affects control flow.
type Sink struct {
	budgets map[string]time.Duration
	log     zerolog.Logger
}

// Option customizes a Sink.
type Option func(*Sink)

// WithBudget sets or overrides the budget for a metric name.
func WithBudget(name string, budget time.Duration) Option {
	return func(s *Sink) { s.budgets[name] = budget }
}

// New creates a Sink with the default operation budgets.
func New(log zerolog.Logger, opts ...Option) *Sink {
	s := &Sink{
		budgets: map[string]time.Duration{
			"memory_fetch_time": BudgetMemoryFetch,
			"trust_update_time": BudgetTrustUpdate,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrackTiming records one operation duration. If the duration exceeds the
// metric's budget, a budget-exceeded warning is emitted instead of a normal
// timing record.
func (s *Sink) TrackTiming(name string, duration time.Duration, meta map[string]string) {
	if budget, ok := s.budgets[name]; ok && budget > 0 && duration > budget {
		budgetExceededTotal.WithLabelValues(name).Inc()
		ev := s.log.Warn().
			Str("operation", name).
			Dur("duration", duration).
			Dur("budget", budget)
		for k, v := range meta {
			ev = ev.Str(k, v)
		}
		ev.Msg("operation exceeded budget")
		return
	}
	operationDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// Increment bumps a named counter.
func (s *Sink) Increment(name string, value float64, meta map[string]string) {
	if value <= 0 {
		value = 1
	}
	eventsTotal.WithLabelValues(name).Add(value)
	if len(meta) > 0 {
		ev := s.log.Debug().Str("metric", name).Float64("value", value)
		for k, v := range meta {
			ev = ev.Str(k, v)
		}
		ev.Msg("telemetry event")
	}
}
