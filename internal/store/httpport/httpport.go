// Package httpport implements the memory persistence port against the
// hosted profile store's REST API.
package httpport

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/model"
)

// Store is an HTTP-backed persistence port. Timeouts are owned here, not by
// the coach runtime.
type Store struct {
	client *resty.Client
}

var _ memory.Port = (*Store)(nil)
var _ memory.Clearer = (*Store)(nil)

// New creates a store for the hosted profile store at baseURL.
func New(baseURL, apiKey string) *Store {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	// The breaker owns failure isolation; a failed call must not be
	// retried synchronously.
	client.SetRetryCount(0)
	return &Store{client: client}
}

// Ping verifies the remote store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get("/v0/health")
	if err != nil {
		return fmt.Errorf("ping profile store: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ping profile store: status %d", resp.StatusCode())
	}
	return nil
}

type persistEventRequest struct {
	Event             model.CoachMemoryEvent `json:"event"`
	SourceScreen      string                 `json:"sourceScreen,omitempty"`
	ExplainabilityRef string                 `json:"explainabilityRef,omitempty"`
}

// PersistEventMemory forwards one event to the hosted store.
func (s *Store) PersistEventMemory(ctx context.Context, ev model.CoachMemoryEvent, meta memory.PersistMeta) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(persistEventRequest{
			Event:             ev,
			SourceScreen:      meta.SourceScreen,
			ExplainabilityRef: meta.ExplainabilityRef,
		}).
		Post("/v0/coach/events")
	if err != nil {
		return fmt.Errorf("persist event: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("persist event: status %d", resp.StatusCode())
	}
	return nil
}

// LoadLongTermProfile fetches the durable relationship profile.
func (s *Store) LoadLongTermProfile(ctx context.Context) (*model.RelationshipProfile, error) {
	var profile model.RelationshipProfile
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&profile).
		Get("/v0/coach/profile")
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("load profile: status %d", resp.StatusCode())
	}
	return &profile, nil
}

type trustUpdateRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// UpdateTrustCurve posts a trust delta.
func (s *Store) UpdateTrustCurve(ctx context.Context, delta int, reason string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(trustUpdateRequest{Delta: delta, Reason: reason}).
		Post("/v0/coach/trust")
	if err != nil {
		return fmt.Errorf("update trust curve: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update trust curve: status %d", resp.StatusCode())
	}
	return nil
}

// UpdateEmotionalBaseline puts the emotional state.
func (s *Store) UpdateEmotionalBaseline(ctx context.Context, state model.EmotionalState) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"emotionalState": string(state)}).
		Put("/v0/coach/emotional-baseline")
	if err != nil {
		return fmt.Errorf("update emotional baseline: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update emotional baseline: status %d", resp.StatusCode())
	}
	return nil
}

// SummarizeUserJourney fetches the journey narrative.
func (s *Store) SummarizeUserJourney(ctx context.Context) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v0/coach/journey")
	if err != nil {
		return "", fmt.Errorf("summarize journey: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("summarize journey: status %d", resp.StatusCode())
	}
	return out.Summary, nil
}

// CoachContextForResponse fetches the long-term context.
func (s *Store) CoachContextForResponse(ctx context.Context) (*model.CoachLongTermContext, error) {
	var ltc model.CoachLongTermContext
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&ltc).
		Get("/v0/coach/context")
	if err != nil {
		return nil, fmt.Errorf("load coach context: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("load coach context: status %d", resp.StatusCode())
	}
	return &ltc, nil
}

// ClearCoachMemory asks the hosted store to wipe coach memory.
func (s *Store) ClearCoachMemory(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Delete("/v0/coach/memory")
	if err != nil {
		return fmt.Errorf("clear coach memory: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("clear coach memory: status %d", resp.StatusCode())
	}
	return nil
}
