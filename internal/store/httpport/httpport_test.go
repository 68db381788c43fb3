package httpport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/model"
)

func TestPersistEventMemory(t *testing.T) {
	var received persistEventRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v0/coach/events", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := New(srv.URL, "secret-key")
	err := s.PersistEventMemory(context.Background(), model.CoachMemoryEvent{
		Type: model.EventStrengthPR,
	}, memory.PersistMeta{SourceScreen: "training", ExplainabilityRef: "strength_pr:1"})

	require.NoError(t, err)
	assert.Equal(t, model.EventStrengthPR, received.Event.Type)
	assert.Equal(t, "training", received.SourceScreen)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestLoadLongTermProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v0/coach/profile", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.RelationshipProfile{
			Stage:      model.StageStablePartnership,
			TrustLevel: 72,
		})
	}))
	defer srv.Close()

	s := New(srv.URL, "")
	p, err := s.LoadLongTermProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 72, p.TrustLevel)
	assert.Equal(t, model.StageStablePartnership, p.Stage)
}

func TestErrorStatusSurfacesAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(srv.URL, "")

	_, err := s.LoadLongTermProfile(context.Background())
	assert.Error(t, err)

	err = s.UpdateTrustCurve(context.Background(), 1, "test")
	assert.Error(t, err)

	err = s.ClearCoachMemory(context.Background())
	assert.Error(t, err)
}

func TestSummarizeUserJourney(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v0/coach/journey", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary": "three strong weeks"}`))
	}))
	defer srv.Close()

	s := New(srv.URL, "")
	summary, err := s.SummarizeUserJourney(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "three strong weeks", summary)
}

func TestPingHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v0/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(srv.URL, "")
	assert.NoError(t, s.Ping(context.Background()))
}
