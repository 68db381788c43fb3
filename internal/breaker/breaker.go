// Package breaker implements a failure-isolation primitive used to guard
// calls to the durable memory store.
package breaker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State of the breaker.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

const (
	// DefaultFailureThreshold is the number of consecutive failures that
	// opens the breaker.
	DefaultFailureThreshold = 3
	// DefaultResetTimeout is the cooldown before a half-open probe is allowed.
	DefaultResetTimeout = 8 * time.Second
)

// Breaker is a per-dependency circuit breaker. One instance guards one
// logical dependency; state is shared across concurrent requests.
type Breaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	resetTimeout     time.Duration

	state    State
	failures int
	openedAt time.Time

	now func() time.Time
	log zerolog.Logger
}

// Option customizes a Breaker.
type Option func(*Breaker)

// WithFailureThreshold overrides the consecutive-failure threshold.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithResetTimeout overrides the open-state cooldown.
func WithResetTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.resetTimeout = d
		}
	}
}

// WithClock injects a clock; tests use this to step time.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New creates a closed breaker guarding the named dependency.
func New(name string, log zerolog.Logger, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: DefaultFailureThreshold,
		resetTimeout:     DefaultResetTimeout,
		state:            StateClosed,
		now:              time.Now,
		log:              log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CanRequest reports whether a request may proceed.
//
// In the open state it returns false until the reset timeout has elapsed
// since opening; the first call after that transitions to half-open and
// grants exactly one probe. Further calls are denied until the probe
// resolves via RecordSuccess or RecordFailure.
func (b *Breaker) CanRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.resetTimeout {
			b.state = StateHalfOpen
			return true
		}
		return false
	case StateHalfOpen:
		// Probe already granted.
		return false
	}
	return false
}

// RecordSuccess closes the breaker and resets the failure counter.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}

// RecordFailure counts a failure. Reaching the threshold while closed, or
// failing the half-open probe, opens the breaker and restarts the timer.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.failureThreshold {
		b.open()
	}
}

// open transitions to the open state. Caller holds the lock.
func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.log.Warn().
		Str("dependency", b.name).
		Int("failures", b.failures).
		Dur("reset_timeout", b.resetTimeout).
		Msg("circuit breaker opened")
}

// State returns the current state without side effects.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
