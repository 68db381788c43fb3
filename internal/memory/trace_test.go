package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		decisionID string
		want       DecisionCategory
	}{
		{"plateau_detected:1717000000", CategoryPlateau},
		{"habit_broken:42", CategoryHabitBreak},
		{"overlay-habit-break", CategoryHabitBreak},
		{"return_after_pause:9", CategoryReturnAfterPause},
		{"comeback-banner", CategoryReturnAfterPause},
		{"calorie_over_target:7", CategoryCalorieOverTarget},
		{"workout_completed:3", CategoryWorkoutWin},
		{"strength_pr:8", CategoryWorkoutWin},
		{"day_completed:5", CategoryWorkoutWin},
		{"overlay:1717000000", CategoryGeneral},
		{"", CategoryGeneral},
		{"PLATEAU_DETECTED:1", CategoryPlateau},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectCategory(tt.decisionID), tt.decisionID)
	}
}

func TestEveryCategoryHasRegisteredTrace(t *testing.T) {
	cats := []DecisionCategory{
		CategoryPlateau, CategoryHabitBreak, CategoryReturnAfterPause,
		CategoryCalorieOverTarget, CategoryWorkoutWin, CategoryGeneral,
	}
	now := time.Now()
	for _, cat := range cats {
		refs := buildMemoryRefs(cat, now)
		require.NotEmpty(t, refs, string(cat))
		for _, r := range refs {
			assert.NotEmpty(t, r.Ref)
			assert.NotEmpty(t, r.Summary)
			assert.NotEmpty(t, r.Layer)
			assert.True(t, r.OccurredAt.Before(now))
		}
	}
}

func TestSafetyFlagsFor(t *testing.T) {
	assert.Empty(t, safetyFlagsFor("day_completed:1"))
	assert.Equal(t, []string{"pain"}, safetyFlagsFor("pain_reported:1"))
	assert.ElementsMatch(t, []string{"fatigue", "overtraining"}, safetyFlagsFor("fatigue-overtraining-check"))
}

func TestSyntheticTrustHistoryShape(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	points := syntheticTrustHistory(62, now)

	require.Len(t, points, 2)
	assert.Equal(t, now.AddDate(0, 0, -14), points[0].Timestamp)
	assert.Equal(t, now.AddDate(0, 0, -3), points[1].Timestamp)
	assert.Equal(t, 57, points[0].TrustLevel)
	assert.Equal(t, 62, points[1].TrustLevel)
	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
}

func TestSyntheticTrustHistoryClampsAtZero(t *testing.T) {
	points := syntheticTrustHistory(2, time.Now())
	assert.Equal(t, 0, points[0].TrustLevel)
	assert.Equal(t, 2, points[1].TrustLevel)
}
