package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stridewell/coachcore/internal/breaker"
	"github.com/stridewell/coachcore/internal/model"
	"github.com/stridewell/coachcore/internal/telemetry"
)

// TrustResetReason is the fixed reason attached to administrative trust
// resets on both the durable and the in-process trust models.
const TrustResetReason = "trust_reset"

// maxPayloadFieldLen caps event payload strings before persistence.
const maxPayloadFieldLen = 500

const truncationMarker = "...[truncated]"

// fallbackNarrative is returned when the journey summary is unavailable.
// Narrative text is cosmetic, never load-bearing.
const fallbackNarrative = "You've been showing up and putting in the work. That consistency is what carries progress."

// Facade is the single front door to memory. It hides the split between the
// volatile in-process service and the durable port, and enforces resilience
// (circuit breaker) and privacy (payload minimization) on the way through.
type Facade struct {
	svc  *Service
	port Port
	br   *breaker.Breaker
	tel  *telemetry.Sink
	log  zerolog.Logger
	now  func() time.Time
}

// NewFacade wires the facade. All collaborators are injected; there are no
// package-level singletons.
func NewFacade(svc *Service, port Port, br *breaker.Breaker, tel *telemetry.Sink, log zerolog.Logger) *Facade {
	return &Facade{
		svc:  svc,
		port: port,
		br:   br,
		tel:  tel,
		log:  log,
		now:  time.Now,
	}
}

// Service exposes the volatile half for callers that only need session state.
func (f *Facade) Service() *Service { return f.svc }

// bestEffort runs fn and absorbs its failure: one telemetry increment, one
// debug log line, no propagation. Used for narrative, explainability and
// volatile-memory paths whose failure must never reach the user.
func (f *Facade) bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		f.tel.Increment("memory_best_effort_failures", 1, map[string]string{"op": op})
		f.log.Debug().Err(err).Str("op", op).Msg("best-effort memory call failed")
	}
}

// RecordExperience records one behavioral event.
//
// The volatile copy is written unconditionally, even when the breaker is
// open, so the live UI stays responsive during an outage. The durable write
// is breaker-gated and fails fast with model.ErrCircuitOpen instead of
// hanging. Payload strings longer than 500 characters are truncated with a
// marker before leaving the process.
func (f *Facade) RecordExperience(ctx context.Context, ev model.CoachMemoryEvent, screen model.CoachScreenContext) error {
	f.svc.RecordEvent(ev)

	if !f.br.CanRequest() {
		f.tel.Increment("memory_circuit_rejections", 1, nil)
		return model.ErrCircuitOpen
	}

	minimized := minimizeEvent(ev)
	meta := PersistMeta{
		SourceScreen:      screen.Screen,
		ExplainabilityRef: fmt.Sprintf("%s:%d", ev.Type, timestampOf(ev, f.now)),
	}

	if err := f.port.PersistEventMemory(ctx, minimized, meta); err != nil {
		f.br.RecordFailure()
		return fmt.Errorf("persist event memory: %w", err)
	}
	f.br.RecordSuccess()
	return nil
}

// LoadCoachContext reads the durable long-term profile, timed against the
// memory_fetch_time budget. Fails fast with model.ErrCircuitOpen when the
// breaker denies the request.
func (f *Facade) LoadCoachContext(ctx context.Context) (*model.RelationshipProfile, error) {
	if !f.br.CanRequest() {
		f.tel.Increment("memory_circuit_rejections", 1, nil)
		return nil, model.ErrCircuitOpen
	}

	start := f.now()
	profile, err := f.port.LoadLongTermProfile(ctx)
	f.tel.TrackTiming("memory_fetch_time", f.now().Sub(start), nil)
	if err != nil {
		f.br.RecordFailure()
		return nil, fmt.Errorf("load long-term profile: %w", err)
	}
	f.br.RecordSuccess()
	return profile, nil
}

// UpdateTrustModel applies a trust delta to both halves of memory. The
// volatile value always moves; the durable curve is breaker-gated.
func (f *Facade) UpdateTrustModel(ctx context.Context, delta int, reason string) error {
	start := f.now()
	defer func() {
		f.tel.TrackTiming("trust_update_time", f.now().Sub(start), nil)
	}()

	f.svc.UpdateTrust(delta, reason)

	if !f.br.CanRequest() {
		f.tel.Increment("memory_circuit_rejections", 1, nil)
		return model.ErrCircuitOpen
	}
	if err := f.port.UpdateTrustCurve(ctx, delta, reason); err != nil {
		f.br.RecordFailure()
		return fmt.Errorf("update trust curve: %w", err)
	}
	f.br.RecordSuccess()
	return nil
}

// UpdateEmotionalBaseline mirrors the emotional state into both halves.
// Durable failure is absorbed; the baseline is a soft signal.
func (f *Facade) UpdateEmotionalBaseline(ctx context.Context, state model.EmotionalState) {
	f.svc.UpdateEmotionalState(state)
	if !f.br.CanRequest() {
		return
	}
	f.bestEffort("emotional_baseline", func() error {
		if err := f.port.UpdateEmotionalBaseline(ctx, state); err != nil {
			f.br.RecordFailure()
			return err
		}
		f.br.RecordSuccess()
		return nil
	})
}

// LongTermNarrative returns the journey summary, or a fixed generic sentence
// when the store cannot produce one.
func (f *Facade) LongTermNarrative(ctx context.Context) string {
	if !f.br.CanRequest() {
		return fallbackNarrative
	}
	summary, err := f.port.SummarizeUserJourney(ctx)
	if err != nil {
		f.br.RecordFailure()
		f.tel.Increment("memory_best_effort_failures", 1, map[string]string{"op": "narrative"})
		return fallbackNarrative
	}
	f.br.RecordSuccess()
	if summary == "" {
		return fallbackNarrative
	}
	return summary
}

// CoachContextForResponse returns the durable long-term context, falling
// back to the volatile view when the store is unhealthy.
func (f *Facade) CoachContextForResponse(ctx context.Context) model.CoachLongTermContext {
	if f.br.CanRequest() {
		ltc, err := f.port.CoachContextForResponse(ctx)
		if err == nil && ltc != nil {
			f.br.RecordSuccess()
			return *ltc
		}
		if err != nil {
			f.br.RecordFailure()
			f.log.Debug().Err(err).Msg("durable coach context unavailable, using volatile view")
		}
	}
	return f.svc.LongTermContext()
}

// ExplainableReasoningTrace synthesizes the "why" trace for a decision.
// It never fails: a persistence failure during synthesis still yields a
// structurally valid binding, degraded to volatile state and empty history.
func (f *Facade) ExplainableReasoningTrace(ctx context.Context, decisionID string) *model.CoachExplainabilityBinding {
	profile := f.svc.Profile()
	if f.br.CanRequest() {
		if durable, err := f.port.LoadLongTermProfile(ctx); err != nil {
			f.br.RecordFailure()
			f.tel.Increment("memory_best_effort_failures", 1, map[string]string{"op": "trace_profile"})
		} else {
			f.br.RecordSuccess()
			if durable != nil {
				profile = *durable
			}
		}
	}

	now := f.now()
	cat := DetectCategory(decisionID)

	history := f.trustHistory(ctx, profile.TrustLevel, now)

	return &model.CoachExplainabilityBinding{
		DecisionID:     decisionID,
		MemoryRefs:     buildMemoryRefs(cat, now),
		TrustHistory:   history,
		EmotionalState: profile.EmotionalState,
		SafetyFlags:    safetyFlagsFor(decisionID),
		PatternMatches: patternMatches(cat),
	}
}

// trustHistory prefers a real append-only log when the port provides one;
// an empty or unavailable log falls back to the synthetic two-point curve.
func (f *Facade) trustHistory(ctx context.Context, trustLevel int, now time.Time) []model.TrustPoint {
	if tl, ok := f.port.(TrustLog); ok && f.br.CanRequest() {
		points, err := tl.TrustHistory(ctx, 20)
		if err == nil && len(points) > 0 {
			f.br.RecordSuccess()
			return points
		}
		if err != nil {
			f.br.RecordFailure()
		}
	}
	return syntheticTrustHistory(trustLevel, now)
}

// ClearCoachHistory resets both halves of memory. Ports without an
// administrative reset surface only lose the volatile copy.
func (f *Facade) ClearCoachHistory(ctx context.Context) error {
	f.svc.Reset()
	clearer, ok := f.port.(Clearer)
	if !ok {
		return nil
	}
	if !f.br.CanRequest() {
		return model.ErrCircuitOpen
	}
	if err := clearer.ClearCoachMemory(ctx); err != nil {
		f.br.RecordFailure()
		return fmt.Errorf("clear coach memory: %w", err)
	}
	f.br.RecordSuccess()
	return nil
}

// ClearTrustModel resets trust on both models: delta zero with the fixed
// trust_reset reason. This is also the only path that clears safety mode.
func (f *Facade) ClearTrustModel(ctx context.Context) error {
	f.svc.UpdateTrust(0, TrustResetReason)
	if !f.br.CanRequest() {
		return model.ErrCircuitOpen
	}
	if err := f.port.UpdateTrustCurve(ctx, 0, TrustResetReason); err != nil {
		f.br.RecordFailure()
		return fmt.Errorf("reset trust curve: %w", err)
	}
	f.br.RecordSuccess()
	return nil
}

// minimizeEvent truncates oversized payload strings before persistence.
// The original event is never mutated.
func minimizeEvent(ev model.CoachMemoryEvent) model.CoachMemoryEvent {
	if len(ev.Payload) == 0 {
		return ev
	}
	minimized := make(map[string]string, len(ev.Payload))
	for k, v := range ev.Payload {
		if len(v) > maxPayloadFieldLen {
			v = v[:maxPayloadFieldLen] + truncationMarker
		}
		minimized[k] = v
	}
	out := ev
	out.Payload = minimized
	return out
}

func timestampOf(ev model.CoachMemoryEvent, now func() time.Time) int64 {
	if ev.Timestamp.IsZero() {
		return now().Unix()
	}
	return ev.Timestamp.Unix()
}
