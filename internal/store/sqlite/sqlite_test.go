package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFirstProfileLoadCreatesDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TrustLevel)
	assert.Equal(t, model.StageOnboarding, p.Stage)
	assert.False(t, p.SafetyMode)

	// Second load hits the persisted row.
	again, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.TrustLevel, again.TrustLevel)
}

func TestPersistAndSummarizeEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	summary, err := s.SummarizeUserJourney(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary, "no narrative before any event")

	for i := 0; i < 3; i++ {
		err := s.PersistEventMemory(ctx, model.CoachMemoryEvent{
			Type:      model.EventDayCompleted,
			Timestamp: time.Now().Add(time.Duration(-i) * 24 * time.Hour),
			Payload:   map[string]string{"note": "steady"},
		}, memory.PersistMeta{SourceScreen: "dashboard", ExplainabilityRef: "day_completed:1"})
		require.NoError(t, err)
	}

	summary, err = s.SummarizeUserJourney(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "3 moments")
}

func TestUpdateTrustCurveAppendsHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateTrustCurve(ctx, 5, "day_completed"))
	require.NoError(t, s.UpdateTrustCurve(ctx, -2, "habit_broken"))

	p, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 53, p.TrustLevel)

	points, err := s.TrustHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 5, points[0].Delta)
	assert.Equal(t, 55, points[0].TrustLevel)
	assert.Equal(t, "habit_broken", points[1].Reason)
	assert.Equal(t, 53, points[1].TrustLevel)
}

func TestTrustHistoryLimitKeepsNewestOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpdateTrustCurve(ctx, 1, "day_completed"))
	}

	points, err := s.TrustHistory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 53, points[0].TrustLevel)
	assert.Equal(t, 55, points[2].TrustLevel)
}

func TestTrustResetClearsSafetyMode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	p.SafetyMode = true
	require.NoError(t, s.saveProfile(ctx, *p))

	require.NoError(t, s.UpdateTrustCurve(ctx, 0, memory.TrustResetReason))

	p, err = s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.False(t, p.SafetyMode)
}

func TestTrustLevelClampedInStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateTrustCurve(ctx, 500, "test"))
	p, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, p.TrustLevel)
}

func TestUpdateEmotionalBaseline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateEmotionalBaseline(ctx, model.EmotionMotivated))
	p, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.EmotionMotivated, p.EmotionalState)
}

func TestCoachContextForResponse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PersistEventMemory(ctx, model.CoachMemoryEvent{
		Type:      model.EventWorkoutCompleted,
		Timestamp: time.Now(),
	}, memory.PersistMeta{}))

	ltc, err := s.CoachContextForResponse(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ltc.EventCount)
	assert.NotNil(t, ltc.LastEventAt)
	assert.NotEmpty(t, ltc.JourneySummary)
}

func TestClearCoachMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PersistEventMemory(ctx, model.CoachMemoryEvent{Type: model.EventDayCompleted}, memory.PersistMeta{}))
	require.NoError(t, s.UpdateTrustCurve(ctx, 3, "test"))

	require.NoError(t, s.ClearCoachMemory(ctx))

	points, err := s.TrustHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, points)

	// Profile comes back as neutral defaults.
	p, err := s.LoadLongTermProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TrustLevel)
}
