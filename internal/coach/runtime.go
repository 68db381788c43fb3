// Package coach holds the decision engine: it classifies emotional state,
// selects a response template, applies trust modulation and entitlement
// gating, and attaches an explainability trace.
package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/model"
	"github.com/stridewell/coachcore/internal/safety"
	"github.com/stridewell/coachcore/internal/telemetry"
)

const (
	fatigueThreshold   = 0.7
	relapseThreshold   = 0.6
	lowTrustThreshold  = 40
	highTrustThreshold = 70
	streakThreshold    = 5

	defaultConfidence = 0.6
)

// Runtime is the coach decision engine. One instance per process (or per
// test); all collaborators are injected.
type Runtime struct {
	mem *memory.Facade
	tel *telemetry.Sink
	log zerolog.Logger
	now func() time.Time
}

// NewRuntime wires a Runtime.
func NewRuntime(mem *memory.Facade, tel *telemetry.Sink, log zerolog.Logger) *Runtime {
	return &Runtime{
		mem: mem,
		tel: tel,
		log: log,
		now: time.Now,
	}
}

// HandleUserEvent turns one behavioral event plus screen context into a
// coaching response. Memory write failures are logged and swallowed: a
// memory outage degrades personalization, never availability.
func (r *Runtime) HandleUserEvent(ctx context.Context, ev model.CoachMemoryEvent, screen model.CoachScreenContext) *model.CoachResponse {
	if err := r.mem.RecordExperience(ctx, ev, screen); err != nil {
		r.log.Debug().Err(err).Str("event_type", string(ev.Type)).Msg("experience not persisted")
	}

	state := r.evaluateEmotionalState(screen, &ev)
	resp := r.generateCoachResponse(state, &ev, screen)
	applyTrustModulation(resp, r.trustLevel(screen))
	resp.DecisionID = fmt.Sprintf("%s:%d", ev.Type, r.eventTimestamp(ev))
	r.attachExplainability(ctx, resp, screen)

	r.tel.Increment("coach_responses", 1, map[string]string{"event_type": string(ev.Type)})
	return resp
}

// CoachOverlay produces a lower-key ambient message for a screen without a
// triggering event. Same state evaluation, trust modulation and gating
// pipeline as HandleUserEvent.
func (r *Runtime) CoachOverlay(ctx context.Context, screen model.CoachScreenContext) *model.CoachResponse {
	state := r.evaluateEmotionalState(screen, nil)

	msg, ok := overlayMessages[state]
	if !ok {
		msg = overlayMessages[model.EmotionNeutral]
	}
	resp := &model.CoachResponse{
		Message:        msg,
		EmotionalState: state,
		UISurface:      model.SurfaceBanner,
		UIMode:         modeFor(state),
		Confidence:     defaultConfidence,
	}
	r.decorate(resp, nil, screen)
	applyEntitlementGate(resp, screen.Subscription)
	applyTrustModulation(resp, r.trustLevel(screen))
	resp.DecisionID = fmt.Sprintf("overlay:%d", r.now().Unix())
	r.attachExplainability(ctx, resp, screen)
	return resp
}

// CoachNudge returns one of the four fixed nudges. No state evaluation.
func (r *Runtime) CoachNudge(kind NudgeKind) *model.CoachResponse {
	tpl, ok := nudgeTemplates[kind]
	if !ok {
		tpl = nudgeTemplates[NudgeMotivation]
	}
	return &model.CoachResponse{
		Message:        tpl.Message,
		EmotionalState: model.EmotionNeutral,
		UISurface:      model.SurfaceNudge,
		UIMode:         tpl.Mode,
		Confidence:     defaultConfidence,
	}
}

// Explainability returns the reasoning trace for a decision. Non-premium
// callers receive the trace with memory/trust/pattern arrays cleared rather
// than nothing: the drawer must always render.
func (r *Runtime) Explainability(ctx context.Context, decisionID string, screen model.CoachScreenContext) *model.CoachExplainabilityBinding {
	binding := r.mem.ExplainableReasoningTrace(ctx, decisionID)
	return gateBinding(binding, screen.Subscription)
}

// evaluateEmotionalState runs the fixed priority ladder. Safety always
// pre-empts everything else; the remaining rungs are ordered by urgency.
func (r *Runtime) evaluateEmotionalState(screen model.CoachScreenContext, ev *model.CoachMemoryEvent) model.EmotionalState {
	if ev != nil && ev.SafetyClass != "" && ev.SafetyClass != model.SafetyNormal {
		return model.EmotionCautious
	}
	if len(screen.SafetyFlags) > 0 {
		return model.EmotionCautious
	}
	if screen.FatigueLevel != nil && *screen.FatigueLevel > fatigueThreshold {
		return model.EmotionFatigued
	}
	if screen.RelapseRisk != nil && *screen.RelapseRisk > relapseThreshold {
		return model.EmotionRecovering
	}
	trust := r.trustLevel(screen)
	if trust < lowTrustThreshold {
		return model.EmotionTrustRepair
	}
	if trust >= highTrustThreshold {
		return model.EmotionConfident
	}
	if screen.Streak != nil && *screen.Streak >= streakThreshold {
		return model.EmotionMotivated
	}
	return model.EmotionNeutral
}

// generateCoachResponse looks up the fixed template for the event type,
// attaches descriptors, and applies the entitlement gate.
func (r *Runtime) generateCoachResponse(state model.EmotionalState, ev *model.CoachMemoryEvent, screen model.CoachScreenContext) *model.CoachResponse {
	tpl := templateFor(ev.Type)

	confidence := ev.Confidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}

	resp := &model.CoachResponse{
		Message:        tpl.Message,
		EmotionalState: state,
		UISurface:      tpl.Surface,
		UIMode:         modeFor(state),
		Confidence:     confidence,
	}
	r.decorate(resp, ev, screen)
	applyEntitlementGate(resp, screen.Subscription)
	return resp
}

// decorate attaches safety and trust descriptors plus the personalization
// basis. These fields are subject to the entitlement gate afterwards.
func (r *Runtime) decorate(resp *model.CoachResponse, ev *model.CoachMemoryEvent, screen model.CoachScreenContext) {
	if len(screen.SafetyFlags) > 0 || (ev != nil && ev.SafetyClass == model.SafetyMedicalRisk) {
		flags := append([]string{}, screen.SafetyFlags...)
		if ev != nil && ev.SafetyClass == model.SafetyMedicalRisk {
			flags = append(flags, "medical_risk")
		}
		cls := safety.Classify(nil, safety.Context{SafetyFlags: flags})
		resp.SafetyFlags = flags
		resp.SafetyReason = cls.Message
	}

	trust := r.trustLevel(screen)
	switch {
	case trust < lowTrustThreshold:
		resp.TrustState = "rebuilding"
		resp.TrustReason = "trust dipped after recent missed commitments"
	case trust >= highTrustThreshold:
		resp.TrustState = "stable"
		resp.TrustReason = "steady follow-through over recent weeks"
	default:
		resp.TrustState = "building"
		resp.TrustReason = "trust is growing with each completed day"
	}

	resp.PersonalizationBasis = []string{"relationship_profile", "screen_context"}
	resp.DataSources = []string{"volatile_memory", "long_term_profile"}
}

// attachExplainability binds the reasoning trace, depth-gated by tier.
func (r *Runtime) attachExplainability(ctx context.Context, resp *model.CoachResponse, screen model.CoachScreenContext) {
	binding := r.mem.ExplainableReasoningTrace(ctx, resp.DecisionID)
	binding.EmotionalState = resp.EmotionalState
	resp.Explainability = gateBinding(binding, screen.Subscription)
}

// trustLevel prefers the fresh screen signal over the volatile profile.
func (r *Runtime) trustLevel(screen model.CoachScreenContext) int {
	if screen.TrustLevel != nil {
		return model.ClampTrust(*screen.TrustLevel)
	}
	return r.mem.Service().Profile().TrustLevel
}

func (r *Runtime) eventTimestamp(ev model.CoachMemoryEvent) int64 {
	if ev.Timestamp.IsZero() {
		return r.now().Unix()
	}
	return ev.Timestamp.Unix()
}
