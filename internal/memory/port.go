package memory

import (
	"context"

	"github.com/stridewell/coachcore/internal/model"
)

// PersistMeta travels with an event to the durable store.
type PersistMeta struct {
	SourceScreen      string
	ExplainabilityRef string
}

// Port is the interface to the durable memory store. Implementations live
// under internal/store/<driver>/ and are assumed to have network-call
// semantics: they may fail, they may be slow, and they provide their own
// consistency guarantees. Every call through the port is wrapped by the
// facade's circuit breaker.
type Port interface {
	PersistEventMemory(ctx context.Context, ev model.CoachMemoryEvent, meta PersistMeta) error
	LoadLongTermProfile(ctx context.Context) (*model.RelationshipProfile, error)
	UpdateTrustCurve(ctx context.Context, delta int, reason string) error
	UpdateEmotionalBaseline(ctx context.Context, state model.EmotionalState) error
	SummarizeUserJourney(ctx context.Context) (string, error)
	CoachContextForResponse(ctx context.Context) (*model.CoachLongTermContext, error)
}

// Clearer is the optional administrative reset surface of a Port.
type Clearer interface {
	ClearCoachMemory(ctx context.Context) error
}

// TrustLog is the optional append-only trust audit trail of a Port. Ports
// without one fall back to the synthetic two-point history during trace
// synthesis.
type TrustLog interface {
	TrustHistory(ctx context.Context, limit int) ([]model.TrustPoint, error)
}
