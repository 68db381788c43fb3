package memory

import (
	"sync"
	"time"

	"github.com/stridewell/coachcore/internal/model"
)

// Service is the fast, volatile half of memory: session-scoped relationship
// state with safe defaults. It is a process-wide singleton by construction
// (one instance wired at startup) and is not required to stay transactionally
// consistent with the durable port; eventual alignment is acceptable.
type Service struct {
	mu          sync.Mutex
	profile     model.RelationshipProfile
	eventCount  int
	lastEventAt *time.Time
	now         func() time.Time
}

// NewService creates a service holding the neutral default profile.
func NewService() *Service {
	return &Service{
		profile: model.DefaultProfile(),
		now:     time.Now,
	}
}

// RecordEvent folds one behavioral event into the profile: trust impact is
// applied additively (clamped), safety mode latches on medical risk, and the
// relationship stage is re-derived.
func (s *Service) RecordEvent(ev model.CoachMemoryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventCount++
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	s.lastEventAt = &ts

	s.profile.TrustLevel = model.ClampTrust(s.profile.TrustLevel + boundTrustImpact(ev.TrustImpact))
	if ev.SafetyClass == model.SafetyMedicalRisk {
		s.profile.SafetyMode = true
	}
	s.profile.Stage = deriveStage(s.profile, s.eventCount, ev)
	s.profile.LastUpdated = s.now()
}

// UpdateEmotionalState overwrites the current emotional baseline.
func (s *Service) UpdateEmotionalState(state model.EmotionalState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.EmotionalState = state
	s.profile.LastUpdated = s.now()
}

// UpdateTrust applies a trust delta, clamped to [0,100]. The reason is
// accepted for parity with the durable trust curve but the volatile half
// keeps no per-delta history.
func (s *Service) UpdateTrust(delta int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.TrustLevel = model.ClampTrust(s.profile.TrustLevel + delta)
	if reason == TrustResetReason {
		s.profile.SafetyMode = false
	}
	s.profile.LastUpdated = s.now()
}

// Profile returns a copy of the relationship profile. A service that was
// never written to returns the neutral defaults.
func (s *Service) Profile() model.RelationshipProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// LongTermContext assembles the volatile view of long-term context, used as
// a safe fallback when the durable store is unavailable.
func (s *Service) LongTermContext() model.CoachLongTermContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CoachLongTermContext{
		Profile:        s.profile,
		JourneySummary: "",
		EventCount:     s.eventCount,
		LastEventAt:    s.lastEventAt,
	}
}

// Reset restores neutral defaults. Profiles are never deleted, only reset.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = model.DefaultProfile()
	s.eventCount = 0
	s.lastEventAt = nil
}

func boundTrustImpact(impact int) int {
	if impact < -2 {
		return -2
	}
	if impact > 2 {
		return 2
	}
	return impact
}

// deriveStage advances the relationship stage from trust level and event
// volume. Habit breaks at low trust drop into relapse recovery; recovery
// ends once trust climbs back past 60.
func deriveStage(p model.RelationshipProfile, eventCount int, ev model.CoachMemoryEvent) model.RelationshipStage {
	if ev.Type == model.EventHabitBroken && p.TrustLevel < 40 {
		return model.StageRelapseRecovery
	}
	if p.Stage == model.StageRelapseRecovery {
		if p.TrustLevel >= 60 {
			return model.StageStablePartnership
		}
		return model.StageRelapseRecovery
	}
	switch {
	case eventCount >= 50 && p.TrustLevel >= 80:
		return model.StageLongTermCompanion
	case p.TrustLevel >= 70:
		return model.StageStablePartnership
	case eventCount >= 5:
		return model.StageTrustBuilding
	default:
		return model.StageOnboarding
	}
}
