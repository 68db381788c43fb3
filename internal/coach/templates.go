package coach

import "github.com/stridewell/coachcore/internal/model"

// responseTemplate is a fixed message/surface pair keyed by event type.
type responseTemplate struct {
	Message string
	Surface model.UISurface
}

var eventTemplates = map[model.EventType]responseTemplate{
	model.EventDayCompleted: {
		Message: "Another day in the books. That's how habits are made.",
		Surface: model.SurfaceCard,
	},
	model.EventWorkoutCompleted: {
		Message: "Session done. Your future self just got stronger.",
		Surface: model.SurfaceCard,
	},
	model.EventStrengthPR: {
		Message: "New personal record! This is what consistent work looks like.",
		Surface: model.SurfaceDialog,
	},
	model.EventHabitBroken: {
		Message: "One missed day doesn't undo the ones you showed up for.",
		Surface: model.SurfaceCard,
	},
	model.EventPainReported: {
		Message: "Thanks for telling me. Let's take the pressure off and protect that.",
		Surface: model.SurfaceDialog,
	},
	model.EventMealLogged: {
		Message: "Logged. Every entry sharpens the picture.",
		Surface: model.SurfaceTimelineComment,
	},
	model.EventCalorieOverTarget: {
		Message: "One heavy day won't sink the week. Tomorrow is a clean slate.",
		Surface: model.SurfaceCard,
	},
	model.EventPlateauDetected: {
		Message: "Progress is hiding under the surface right now. Plateaus break.",
		Surface: model.SurfaceCard,
	},
	model.EventReturnAfterPause: {
		Message: "Good to have you back. We pick up right where it makes sense.",
		Surface: model.SurfaceBanner,
	},
}

// fallbackTemplate covers event types outside the closed set.
var fallbackTemplate = responseTemplate{
	Message: "Noted. I'm keeping track so you don't have to.",
	Surface: model.SurfaceCard,
}

func templateFor(t model.EventType) responseTemplate {
	if tpl, ok := eventTemplates[t]; ok {
		return tpl
	}
	return fallbackTemplate
}

// uiModeFor maps an emotional state to the tone of the rendered surface.
var uiModeFor = map[model.EmotionalState]model.UIMode{
	model.EmotionCautious:    model.UIModeProtect,
	model.EmotionFatigued:    model.UIModeStabilize,
	model.EmotionRecovering:  model.UIModeReframe,
	model.EmotionTrustRepair: model.UIModeSupport,
	model.EmotionConfident:   model.UIModeCelebrate,
	model.EmotionMotivated:   model.UIModeMotivate,
	model.EmotionNeutral:     model.UIModeSupport,
	model.EmotionCalm:        model.UIModeGuide,
}

func modeFor(state model.EmotionalState) model.UIMode {
	if m, ok := uiModeFor[state]; ok {
		return m
	}
	return model.UIModeSupport
}

// overlayMessages are the lower-key ambient lines used without a triggering
// event.
var overlayMessages = map[model.EmotionalState]string{
	model.EmotionCautious:    "No pressure today. We move at whatever pace feels safe.",
	model.EmotionFatigued:    "You've earned an easier day. Rest is part of the plan.",
	model.EmotionRecovering:  "Coming back is the hard part, and you're doing it.",
	model.EmotionTrustRepair: "I'm here when you're ready. No judgment, just next steps.",
	model.EmotionConfident:   "You're in a strong rhythm. Keep doing what works.",
	model.EmotionMotivated:   "That streak is building real momentum.",
	model.EmotionNeutral:     "Whenever you're ready, the next small step is waiting.",
}

// NudgeKind selects one of the four fixed nudges.
type NudgeKind string

const (
	NudgeMorning    NudgeKind = "morning"
	NudgeEvening    NudgeKind = "evening"
	NudgeRecovery   NudgeKind = "recovery"
	NudgeMotivation NudgeKind = "motivation"
)

type nudgeTemplate struct {
	Message string
	Mode    model.UIMode
}

var nudgeTemplates = map[NudgeKind]nudgeTemplate{
	NudgeMorning:    {Message: "Morning. One small win before noon sets the whole day.", Mode: model.UIModeMotivate},
	NudgeEvening:    {Message: "Before the day closes: a two-minute log keeps the picture honest.", Mode: model.UIModeGuide},
	NudgeRecovery:   {Message: "Recovery counts as training. Let today be light on purpose.", Mode: model.UIModeStabilize},
	NudgeMotivation: {Message: "You don't need a perfect week. You need the next rep.", Mode: model.UIModeMotivate},
}

// Trust modulation bands. Contiguous and non-overlapping over [0,100]:
// [0,35) repair, [35,60) encouragement, [60,75] ritual, (75,100] autonomy.
const (
	trustRepairCeiling    = 35
	trustEncourageCeiling = 60
	trustRitualCeiling    = 75
)

const (
	trustRepairSuffix    = " I'm here with you. Small steps still count."
	trustEncourageSuffix = " You're building something real here."
	trustRitualSuffix    = " Let's keep our rhythm going."
	trustAutonomySuffix  = " You know what works for you. I trust your call."
)

// applyTrustModulation appends a trust-appropriate sentence and adjusts the
// trust state. Every integer trust level hits exactly one band.
func applyTrustModulation(resp *model.CoachResponse, trustLevel int) {
	switch {
	case trustLevel < trustRepairCeiling:
		resp.Message += trustRepairSuffix
		resp.TrustState = "trust_repair"
	case trustLevel < trustEncourageCeiling:
		resp.Message += trustEncourageSuffix
	case trustLevel <= trustRitualCeiling:
		resp.Message += trustRitualSuffix
	default:
		resp.Message += trustAutonomySuffix
		resp.TrustState = "stable"
	}
}

// applyEntitlementGate is the single enforcement point for premium gating.
// Non-premium responses keep message, emotional state and surface in neutral
// form; personalization and reasoning fields are stripped.
func applyEntitlementGate(resp *model.CoachResponse, tier model.SubscriptionTier) {
	if tier.HasPremiumAccess() {
		return
	}
	resp.EmotionalState = model.EmotionNeutral
	resp.UIMode = model.UIModeSupport
	resp.PersonalizationBasis = nil
	resp.DataSources = nil
	resp.TrustReason = ""
}

// gateBinding reduces explainability depth for non-premium users: the trace
// always renders, just with the memory, trust and pattern arrays emptied.
// Safety flags are never entitlement-gated.
func gateBinding(b *model.CoachExplainabilityBinding, tier model.SubscriptionTier) *model.CoachExplainabilityBinding {
	if b == nil {
		return nil
	}
	if tier.HasPremiumAccess() {
		return b
	}
	gated := *b
	gated.MemoryRefs = []model.MemoryRef{}
	gated.TrustHistory = []model.TrustPoint{}
	gated.PatternMatches = []string{}
	return &gated
}
