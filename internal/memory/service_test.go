package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stridewell/coachcore/internal/model"
)

func TestServiceDefaultsWithoutWrites(t *testing.T) {
	svc := NewService()
	p := svc.Profile()

	assert.Equal(t, 50, p.TrustLevel)
	assert.Equal(t, model.EmotionCalm, p.EmotionalState)
	assert.Equal(t, model.StageOnboarding, p.Stage)
	assert.False(t, p.SafetyMode)
	assert.InDelta(t, 0.5, p.Resilience, 0.001)
	assert.InDelta(t, 0.5, p.Autonomy, 0.001)
}

func TestRecordEventAppliesTrustImpact(t *testing.T) {
	svc := NewService()
	svc.RecordEvent(model.CoachMemoryEvent{
		Type:        model.EventDayCompleted,
		Timestamp:   time.Now(),
		TrustImpact: 2,
	})
	assert.Equal(t, 52, svc.Profile().TrustLevel)
}

func TestRecordEventBoundsTrustImpact(t *testing.T) {
	svc := NewService()
	svc.RecordEvent(model.CoachMemoryEvent{
		Type:        model.EventDayCompleted,
		TrustImpact: 100, // out of contract, clamped to +2
	})
	assert.Equal(t, 52, svc.Profile().TrustLevel)
}

func TestTrustClampedToRange(t *testing.T) {
	svc := NewService()
	svc.UpdateTrust(1000, "test")
	assert.Equal(t, 100, svc.Profile().TrustLevel)

	svc.UpdateTrust(-1000, "test")
	assert.Equal(t, 0, svc.Profile().TrustLevel)
}

func TestSafetyModeLatchesOnMedicalRisk(t *testing.T) {
	svc := NewService()
	svc.RecordEvent(model.CoachMemoryEvent{
		Type:        model.EventPainReported,
		SafetyClass: model.SafetyMedicalRisk,
	})
	assert.True(t, svc.Profile().SafetyMode)

	// Ordinary events do not clear it.
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted})
	assert.True(t, svc.Profile().SafetyMode)

	// Only a trust reset does.
	svc.UpdateTrust(0, TrustResetReason)
	assert.False(t, svc.Profile().SafetyMode)
}

func TestStageProgression(t *testing.T) {
	svc := NewService()
	for i := 0; i < 5; i++ {
		svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted, TrustImpact: 1})
	}
	assert.Equal(t, model.StageTrustBuilding, svc.Profile().Stage)

	svc.UpdateTrust(30, "test")
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted})
	assert.Equal(t, model.StageStablePartnership, svc.Profile().Stage)
}

func TestHabitBreakAtLowTrustEntersRelapseRecovery(t *testing.T) {
	svc := NewService()
	svc.UpdateTrust(-20, "test") // 30
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventHabitBroken, TrustImpact: -1})
	assert.Equal(t, model.StageRelapseRecovery, svc.Profile().Stage)

	// Recovery holds until trust climbs back past 60.
	svc.UpdateTrust(10, "test")
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted, TrustImpact: 1})
	assert.Equal(t, model.StageRelapseRecovery, svc.Profile().Stage)

	svc.UpdateTrust(30, "test")
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted})
	assert.Equal(t, model.StageStablePartnership, svc.Profile().Stage)
}

func TestResetRestoresDefaults(t *testing.T) {
	svc := NewService()
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted, TrustImpact: 2})
	svc.UpdateEmotionalState(model.EmotionFatigued)
	svc.Reset()

	p := svc.Profile()
	assert.Equal(t, 50, p.TrustLevel)
	assert.Equal(t, model.EmotionCalm, p.EmotionalState)
	assert.Equal(t, 0, svc.LongTermContext().EventCount)
}

func TestLongTermContextReflectsVolatileState(t *testing.T) {
	svc := NewService()
	svc.RecordEvent(model.CoachMemoryEvent{Type: model.EventDayCompleted, Timestamp: time.Now()})

	ltc := svc.LongTermContext()
	assert.Equal(t, 1, ltc.EventCount)
	assert.NotNil(t, ltc.LastEventAt)
	assert.Empty(t, ltc.JourneySummary)
}
