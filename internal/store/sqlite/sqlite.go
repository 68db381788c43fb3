// Package sqlite implements the memory persistence port on a local SQLite
// file. It carries the append-only trust-event log, so explainability
// traces built on this store use real history instead of the synthetic
// fallback.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS coach_profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	stage TEXT NOT NULL,
	trust_level INTEGER NOT NULL,
	emotional_state TEXT NOT NULL,
	resilience REAL NOT NULL,
	autonomy REAL NOT NULL,
	safety_mode INTEGER NOT NULL,
	confidence_growth_rate REAL NOT NULL,
	confidence_decay_rate REAL NOT NULL,
	last_updated TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS coach_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	occurred_at TIMESTAMP NOT NULL,
	payload TEXT,
	confidence REAL NOT NULL,
	safety_class TEXT NOT NULL,
	trust_impact INTEGER NOT NULL,
	source_screen TEXT,
	explainability_ref TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS trust_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at TIMESTAMP NOT NULL,
	delta INTEGER NOT NULL,
	trust_level INTEGER NOT NULL,
	reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coach_events_occurred_at ON coach_events(occurred_at);
CREATE INDEX IF NOT EXISTS idx_trust_events_occurred_at ON trust_events(occurred_at);
`

// Store is a SQLite-backed persistence port.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ memory.Port = (*Store)(nil)
var _ memory.Clearer = (*Store)(nil)
var _ memory.TrustLog = (*Store)(nil)

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// PersistEventMemory appends one event row.
func (s *Store) PersistEventMemory(ctx context.Context, ev model.CoachMemoryEvent, meta memory.PersistMeta) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	occurred := ev.Timestamp
	if occurred.IsZero() {
		occurred = s.now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO coach_events
			(event_type, occurred_at, payload, confidence, safety_class, trust_impact, source_screen, explainability_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.Type), occurred, string(payload), ev.Confidence,
		string(ev.SafetyClass), ev.TrustImpact, meta.SourceScreen, meta.ExplainabilityRef, s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert coach event: %w", err)
	}
	return nil
}

// LoadLongTermProfile reads the profile row, creating neutral defaults on
// first access.
func (s *Store) LoadLongTermProfile(ctx context.Context) (*model.RelationshipProfile, error) {
	p := model.DefaultProfile()
	var safetyMode int
	err := s.db.QueryRowContext(ctx, `
		SELECT stage, trust_level, emotional_state, resilience, autonomy,
		       safety_mode, confidence_growth_rate, confidence_decay_rate, last_updated
		FROM coach_profile WHERE id = 1`).Scan(
		&p.Stage, &p.TrustLevel, &p.EmotionalState, &p.Resilience, &p.Autonomy,
		&safetyMode, &p.ConfidenceGrowthRate, &p.ConfidenceDecayRate, &p.LastUpdated,
	)
	if err == sql.ErrNoRows {
		p.LastUpdated = s.now()
		if err := s.saveProfile(ctx, p); err != nil {
			return nil, err
		}
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.SafetyMode = safetyMode != 0
	return &p, nil
}

func (s *Store) saveProfile(ctx context.Context, p model.RelationshipProfile) error {
	safetyMode := 0
	if p.SafetyMode {
		safetyMode = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coach_profile
			(id, stage, trust_level, emotional_state, resilience, autonomy,
			 safety_mode, confidence_growth_rate, confidence_decay_rate, last_updated)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage = excluded.stage,
			trust_level = excluded.trust_level,
			emotional_state = excluded.emotional_state,
			resilience = excluded.resilience,
			autonomy = excluded.autonomy,
			safety_mode = excluded.safety_mode,
			confidence_growth_rate = excluded.confidence_growth_rate,
			confidence_decay_rate = excluded.confidence_decay_rate,
			last_updated = excluded.last_updated`,
		string(p.Stage), p.TrustLevel, string(p.EmotionalState), p.Resilience, p.Autonomy,
		safetyMode, p.ConfidenceGrowthRate, p.ConfidenceDecayRate, p.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// UpdateTrustCurve applies a delta to the stored trust level and appends a
// trust-event row. A trust_reset reason clears safety mode.
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
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trust_events (occurred_at, delta, trust_level, reason)
		VALUES (?, ?, ?, ?)`,
		s.now(), delta, p.TrustLevel, reason,
	)
	if err != nil {
		return fmt.Errorf("insert trust event: %w", err)
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

// SummarizeUserJourney renders a short narrative from stored events.
func (s *Store) SummarizeUserJourney(ctx context.Context) (string, error) {
	var count int
	var first, last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(occurred_at), MAX(occurred_at) FROM coach_events`).
		Scan(&count, &first, &last)
	if err != nil {
		return "", fmt.Errorf("summarize journey: %w", err)
	}
	if count == 0 {
		return "", nil
	}
	days := 1
	if first.Valid && last.Valid {
		days += int(last.Time.Sub(first.Time).Hours() / 24)
	}
	parts := []string{
		fmt.Sprintf("We've logged %d moments together over %d days.", count, days),
	}
	p, err := s.LoadLongTermProfile(ctx)
	if err == nil && p.TrustLevel >= 70 {
		parts = append(parts, "The partnership is in a strong place.")
	}
	return strings.Join(parts, " "), nil
}

// CoachContextForResponse assembles the durable long-term context.
func (s *Store) CoachContextForResponse(ctx context.Context) (*model.CoachLongTermContext, error) {
	p, err := s.LoadLongTermProfile(ctx)
	if err != nil {
		return nil, err
	}
	var count int
	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(occurred_at) FROM coach_events`).Scan(&count, &last); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	summary, err := s.SummarizeUserJourney(ctx)
	if err != nil {
		return nil, err
	}
	ltc := &model.CoachLongTermContext{
		Profile:        *p,
		JourneySummary: summary,
		EventCount:     count,
	}
	if last.Valid {
		t := last.Time
		ltc.LastEventAt = &t
	}
	return ltc, nil
}

// TrustHistory returns the most recent trust events, oldest first.
func (s *Store) TrustHistory(ctx context.Context, limit int) ([]model.TrustPoint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, delta, trust_level, reason
		FROM (
			SELECT id, occurred_at, delta, trust_level, reason
			FROM trust_events ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trust history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []model.TrustPoint
	for rows.Next() {
		var p model.TrustPoint
		if err := rows.Scan(&p.Timestamp, &p.Delta, &p.TrustLevel, &p.Reason); err != nil {
			return nil, fmt.Errorf("scan trust event: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ClearCoachMemory wipes events, trust history and the profile row.
func (s *Store) ClearCoachMemory(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM coach_events`,
		`DELETE FROM trust_events`,
		`DELETE FROM coach_profile`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear coach memory: %w", err)
		}
	}
	return nil
}
