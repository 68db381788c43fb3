// Package redis implements the memory persistence port on a shared Redis
// tier. Suitable for deployments where durable coach memory lives alongside
// the session cache; profile and trust history are stored as JSON values.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/model"
)

const (
	profileKey    = "coach:profile"
	eventsKey     = "coach:events"
	trustKey      = "coach:trust_events"
	maxEventsKept = 500
	maxTrustKept  = 200
)

// Store is a Redis-backed persistence port.
type Store struct {
	rdb *redis.Client
	now func() time.Time
}

var _ memory.Port = (*Store)(nil)
var _ memory.Clearer = (*Store)(nil)
var _ memory.TrustLog = (*Store)(nil)

// New creates a store on an existing client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, now: time.Now}
}

// Open dials addr and returns a store.
func Open(addr string, db int) *Store {
	return New(redis.NewClient(&redis.Options{Addr: addr, DB: db}))
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

// Close releases the client.
func (s *Store) Close() error { return s.rdb.Close() }

type storedEvent struct {
	Event            model.CoachMemoryEvent `json:"event"`
	SourceScreen     string                 `json:"sourceScreen,omitempty"`
	ExplainabilityRef string                `json:"explainabilityRef,omitempty"`
	StoredAt         time.Time              `json:"storedAt"`
}

// PersistEventMemory appends one event to the capped event list.
func (s *Store) PersistEventMemory(ctx context.Context, ev model.CoachMemoryEvent, meta memory.PersistMeta) error {
	raw, err := json.Marshal(storedEvent{
		Event:             ev,
		SourceScreen:      meta.SourceScreen,
		ExplainabilityRef: meta.ExplainabilityRef,
		StoredAt:          s.now(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, eventsKey, raw)
	pipe.LTrim(ctx, eventsKey, -maxEventsKept, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// LoadLongTermProfile reads the profile, creating neutral defaults on first
// access.
func (s *Store) LoadLongTermProfile(ctx context.Context) (*model.RelationshipProfile, error) {
	raw, err := s.rdb.Get(ctx, profileKey).Bytes()
	if err == redis.Nil {
		p := model.DefaultProfile()
		p.LastUpdated = s.now()
		if err := s.saveProfile(ctx, p); err != nil {
			return nil, err
		}
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	var p model.RelationshipProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (s *Store) saveProfile(ctx context.Context, p model.RelationshipProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.rdb.Set(ctx, profileKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// UpdateTrustCurve applies a delta and appends a trust event.
func (s *Store) UpdateTrustCurve(ctx context.Context, delta int, reason string) error {
	p, err := s.LoadLongTermProfile(ctx)
	if err != nil {
		return err
	}
	p.TrustLevel = model.ClampTrust(p.TrustLevel + delta)
	if reason == memory.TrustResetReason {
		p.SafetyMode = false
	}
	p.LastUpdated = s.now()
	if err := s.saveProfile(ctx, *p); err != nil {
		return err
	}

	point := model.TrustPoint{
		Timestamp:  s.now(),
		Delta:      delta,
		TrustLevel: p.TrustLevel,
		Reason:     reason,
	}
	raw, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("encode trust event: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, trustKey, raw)
	pipe.LTrim(ctx, trustKey, -maxTrustKept, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append trust event: %w", err)
	}
	return nil
}

// UpdateEmotionalBaseline persists the emotional state.
func (s *Store) UpdateEmotionalBaseline(ctx context.Context, state model.EmotionalState) error {
	p, err := s.LoadLongTermProfile(ctx)
	if err != nil {
		return err
	}
	p.EmotionalState = state
	p.LastUpdated = s.now()
	return s.saveProfile(ctx, *p)
}

// SummarizeUserJourney renders a short narrative from the event list.
func (s *Store) SummarizeUserJourney(ctx context.Context) (string, error) {
	count, err := s.rdb.LLen(ctx, eventsKey).Result()
	if err != nil {
		return "", fmt.Errorf("summarize journey: %w", err)
	}
	if count == 0 {
		return "", nil
	}
	return fmt.Sprintf("We've logged %d moments together.", count), nil
}

// CoachContextForResponse assembles the durable long-term context.
func (s *Store) CoachContextForResponse(ctx context.Context) (*model.CoachLongTermContext, error) {
	p, err := s.LoadLongTermProfile(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.rdb.LLen(ctx, eventsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	summary, err := s.SummarizeUserJourney(ctx)
	if err != nil {
		return nil, err
	}
	ltc := &model.CoachLongTermContext{
		Profile:        *p,
		JourneySummary: summary,
		EventCount:     int(count),
	}
	if count > 0 {
		if raw, err := s.rdb.LIndex(ctx, eventsKey, -1).Bytes(); err == nil {
			var se storedEvent
			if json.Unmarshal(raw, &se) == nil {
				t := se.StoredAt
				ltc.LastEventAt = &t
			}
		}
	}
	return ltc, nil
}

// TrustHistory returns the most recent trust events, oldest first.
func (s *Store) TrustHistory(ctx context.Context, limit int) ([]model.TrustPoint, error) {
	if limit <= 0 {
		limit = 20
	}
	raws, err := s.rdb.LRange(ctx, trustKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("query trust history: %w", err)
	}
	points := make([]model.TrustPoint, 0, len(raws))
	for _, raw := range raws {
		var p model.TrustPoint
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode trust event: %w", err)
		}
		points = append(points, p)
	}
	return points, nil
}

// ClearCoachMemory wipes all coach keys.
func (s *Store) ClearCoachMemory(ctx context.Context) error {
	if err := s.rdb.Del(ctx, profileKey, eventsKey, trustKey).Err(); err != nil {
		return fmt.Errorf("clear coach memory: %w", err)
	}
	return nil
}
