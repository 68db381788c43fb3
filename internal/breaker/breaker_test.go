package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestBreaker(t *testing.T) (*Breaker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := New("test-dep", zerolog.Nop(), WithClock(clock.now))
	return b, clock
}

func TestBreakerStartsClosed(t *testing.T) {
	b, _ := newTestBreaker(t)
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.CanRequest())
}

func TestBreakerOpensAfterThresholdFailures(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.CanRequest(), "below threshold should stay closed")

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.CanRequest())
}

func TestBreakerDeniesUntilResetTimeout(t *testing.T) {
	b, clock := newTestBreaker(t)
	for i := 0; i < DefaultFailureThreshold; i++ {
		b.RecordFailure()
	}

	clock.advance(DefaultResetTimeout - time.Millisecond)
	assert.False(t, b.CanRequest())

	clock.advance(time.Millisecond)
	assert.True(t, b.CanRequest(), "first call after timeout grants the half-open probe")
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestHalfOpenGrantsExactlyOneProbe(t *testing.T) {
	b, clock := newTestBreaker(t)
	for i := 0; i < DefaultFailureThreshold; i++ {
		b.RecordFailure()
	}
	clock.advance(DefaultResetTimeout)

	require.True(t, b.CanRequest())
	assert.False(t, b.CanRequest(), "second probe denied while first is outstanding")
}

func TestHalfOpenFailureReopensAndRestartsTimer(t *testing.T) {
	b, clock := newTestBreaker(t)
	for i := 0; i < DefaultFailureThreshold; i++ {
		b.RecordFailure()
	}
	clock.advance(DefaultResetTimeout)
	require.True(t, b.CanRequest())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	// Timer restarted from the probe failure, not the original opening.
	clock.advance(DefaultResetTimeout - time.Millisecond)
	assert.False(t, b.CanRequest())
	clock.advance(time.Millisecond)
	assert.True(t, b.CanRequest())
}

func TestSuccessClosesAndResetsFailureCount(t *testing.T) {
	b, clock := newTestBreaker(t)
	for i := 0; i < DefaultFailureThreshold; i++ {
		b.RecordFailure()
	}
	clock.advance(DefaultResetTimeout)
	require.True(t, b.CanRequest())

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.CanRequest())

	// Counter was reset: it takes a full threshold of new failures to open.
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestSuccessAfterPartialFailuresResetsCounter(t *testing.T) {
	b, _ := newTestBreaker(t)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestCustomThresholdAndTimeout(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	b := New("custom", zerolog.Nop(),
		WithFailureThreshold(1),
		WithResetTimeout(time.Second),
		WithClock(clock.now),
	)

	b.RecordFailure()
	assert.False(t, b.CanRequest())
	clock.advance(time.Second)
	assert.True(t, b.CanRequest())
}
