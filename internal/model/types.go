package model

import "time"

// EventType is the closed set of behavioral tags the coach understands.
// Unknown values are still accepted; the runtime falls back to a generic
// response template for them.
type EventType string

const (
	EventDayCompleted      EventType = "day_completed"
	EventWorkoutCompleted  EventType = "workout_completed"
	EventStrengthPR        EventType = "strength_pr"
	EventHabitBroken       EventType = "habit_broken"
	EventPainReported      EventType = "pain_reported"
	EventMealLogged        EventType = "meal_logged"
	EventCalorieOverTarget EventType = "calorie_over_target"
	EventPlateauDetected   EventType = "plateau_detected"
	EventReturnAfterPause  EventType = "return_after_pause"
)

// SafetyClass grades an event's safety relevance.
type SafetyClass string

const (
	SafetyNormal      SafetyClass = "normal"
	SafetyCaution     SafetyClass = "caution"
	SafetyMedicalRisk SafetyClass = "medical_risk"
)

// CoachMemoryEvent is an immutable fact about user behavior. Created at the
// screen layer, consumed exactly once by the memory facade.
type CoachMemoryEvent struct {
	Type        EventType         `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Payload     map[string]string `json:"payload,omitempty"`
	Confidence  float64           `json:"confidence"`
	SafetyClass SafetyClass       `json:"safetyClass"`
	TrustImpact int               `json:"trustImpact"` // bounded to [-2, 2]
}

// RelationshipStage tracks where the coach/user relationship sits.
type RelationshipStage string

const (
	StageOnboarding        RelationshipStage = "onboarding"
	StageTrustBuilding     RelationshipStage = "trust_building"
	StageStablePartnership RelationshipStage = "stable_partnership"
	StageRelapseRecovery   RelationshipStage = "relapse_recovery"
	StageLongTermCompanion RelationshipStage = "long_term_companion"
)

// EmotionalState is the coach's read of the user's current state.
type EmotionalState string

const (
	EmotionCalm        EmotionalState = "calm"
	EmotionNeutral     EmotionalState = "neutral"
	EmotionCautious    EmotionalState = "cautious"
	EmotionFatigued    EmotionalState = "fatigued"
	EmotionRecovering  EmotionalState = "recovering"
	EmotionTrustRepair EmotionalState = "trust_repair"
	EmotionConfident   EmotionalState = "confident"
	EmotionMotivated   EmotionalState = "motivated"
)

// RelationshipProfile is the mutable relationship state between user and coach.
// TrustLevel is always clamped to [0,100]. SafetyMode latches on a
// medical_risk event and clears only on a trust reset.
type RelationshipProfile struct {
	Stage                RelationshipStage `json:"stage"`
	TrustLevel           int               `json:"trustLevel"`
	EmotionalState       EmotionalState    `json:"emotionalState"`
	Resilience           float64           `json:"resilience"`
	Autonomy             float64           `json:"autonomy"`
	SafetyMode           bool              `json:"safetyMode"`
	ConfidenceGrowthRate float64           `json:"confidenceGrowthRate"`
	ConfidenceDecayRate  float64           `json:"confidenceDecayRate"`
	LastUpdated          time.Time         `json:"lastUpdated"`
}

// SubscriptionTier mirrors the entitlement source of truth.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierTrial   SubscriptionTier = "trial"
	TierGrace   SubscriptionTier = "grace"
	TierExpired SubscriptionTier = "expired"
)

// HasPremiumAccess reports whether the tier unlocks personalization and
// full explainability. Trial and grace periods count as unlocked.
func (t SubscriptionTier) HasPremiumAccess() bool {
	return t == TierPremium || t == TierTrial || t == TierGrace
}

// UserMode distinguishes manual tracking from plan-following.
type UserMode string

const (
	ModeManual        UserMode = "manual"
	ModePlanFollowing UserMode = "plan_following"
)

// CoachScreenContext is a read-only per-request snapshot of screen state.
// Optional signals are pointers; nil means the screen did not supply them.
type CoachScreenContext struct {
	Screen          string           `json:"screen"`
	UserMode        UserMode         `json:"userMode"`
	Subscription    SubscriptionTier `json:"subscription"`
	TrustLevel      *int             `json:"trustLevel,omitempty"`
	FatigueLevel    *float64         `json:"fatigueLevel,omitempty"`
	RelapseRisk     *float64         `json:"relapseRisk,omitempty"`
	MotivationLevel *float64         `json:"motivationLevel,omitempty"`
	SafetyFlags     []string         `json:"safetyFlags,omitempty"`
	Adherence       *float64         `json:"adherence,omitempty"`
	Streak          *int             `json:"streak,omitempty"`
	TimeGapDays     *int             `json:"timeGapDays,omitempty"`
}

// UISurface tells the screen layer where to render a coach message.
type UISurface string

const (
	SurfaceCard            UISurface = "card"
	SurfaceNudge           UISurface = "nudge"
	SurfaceDialog          UISurface = "dialog"
	SurfaceBanner          UISurface = "banner"
	SurfaceTimelineComment UISurface = "timeline_comment"
)

// UIMode sets the tone of the rendered surface.
type UIMode string

const (
	UIModeSupport   UIMode = "support"
	UIModeMotivate  UIMode = "motivate"
	UIModeStabilize UIMode = "stabilize"
	UIModeProtect   UIMode = "protect"
	UIModeCelebrate UIMode = "celebrate"
	UIModeGuide     UIMode = "guide"
	UIModeReframe   UIMode = "reframe"
)

// CoachResponse is the output contract of the coach runtime.
//
// For non-premium entitlement, PersonalizationBasis, DataSources and
// TrustReason are always cleared while Message, EmotionalState and UISurface
// remain present in neutral form.
type CoachResponse struct {
	Message              string                      `json:"coach_message"`
	EmotionalState       EmotionalState              `json:"emotional_state"`
	UISurface            UISurface                   `json:"ui_surface"`
	UIMode               UIMode                      `json:"ui_mode"`
	DecisionID           string                      `json:"decision_id,omitempty"`
	TrustState           string                      `json:"trust_state,omitempty"`
	TrustReason          string                      `json:"trust_reason,omitempty"`
	SafetyFlags          []string                    `json:"safety_flags,omitempty"`
	SafetyReason         string                      `json:"safety_reason,omitempty"`
	Confidence           float64                     `json:"confidence,omitempty"`
	PersonalizationBasis []string                    `json:"personalization_basis,omitempty"`
	DataSources          []string                    `json:"data_sources,omitempty"`
	Explainability       *CoachExplainabilityBinding `json:"explainability,omitempty"`
}

// MemoryRef points at a prior episode used to justify a decision.
type MemoryRef struct {
	Ref        string    `json:"ref"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurredAt"`
	Layer      string    `json:"layer"`
	Tags       []string  `json:"tags"`
}

// TrustPoint is one entry of a trust trajectory.
type TrustPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Delta      int       `json:"delta"`
	TrustLevel int       `json:"trustLevel"`
	Reason     string    `json:"reason"`
}

// CoachExplainabilityBinding is the structured "why" trace attached to a
// coaching decision. Entitlement gating empties the memory, trust and pattern
// arrays (non-nil) rather than dropping the binding; callers can always
// render it. Safety flags survive gating.
type CoachExplainabilityBinding struct {
	DecisionID     string         `json:"decisionId"`
	MemoryRefs     []MemoryRef    `json:"memory_refs"`
	TrustHistory   []TrustPoint   `json:"trust_history"`
	EmotionalState EmotionalState `json:"emotional_state"`
	SafetyFlags    []string       `json:"safety_flags"`
	PatternMatches []string       `json:"pattern_matches"`
}

// CoachLongTermContext is the durable half of memory as seen by the runtime.
type CoachLongTermContext struct {
	Profile        RelationshipProfile `json:"profile"`
	JourneySummary string              `json:"journeySummary"`
	EventCount     int                 `json:"eventCount"`
	LastEventAt    *time.Time          `json:"lastEventAt,omitempty"`
}

// ClampTrust bounds a trust level to [0,100].
func ClampTrust(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// DefaultProfile returns the neutral profile used before any event is seen.
// First-time users must never observe zero values.
func DefaultProfile() RelationshipProfile {
	return RelationshipProfile{
		Stage:                StageOnboarding,
		TrustLevel:           50,
		EmotionalState:       EmotionCalm,
		Resilience:           0.5,
		Autonomy:             0.5,
		SafetyMode:           false,
		ConfidenceGrowthRate: 0.10,
		ConfidenceDecayRate:  0.05,
	}
}
