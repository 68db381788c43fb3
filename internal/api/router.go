package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stridewell/coachcore/internal/api/recovery"
	"github.com/stridewell/coachcore/internal/coach"
)

// NewRouter creates the HTTP router for the coach runtime.
func NewRouter(rt *coach.Runtime, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware(log))

	coachHandler := NewCoachHandler(rt)
	healthHandler := NewHealthHandler()

	// Health and metrics
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Coach runtime entry points
	router.HandleFunc("/api/coach/events", coachHandler.HandleUserEvent).Methods("POST")
	router.HandleFunc("/api/coach/overlay", coachHandler.GetCoachOverlay).Methods("GET")
	router.HandleFunc("/api/coach/nudges/{kind}", coachHandler.GetCoachNudge).Methods("GET")
	router.HandleFunc("/api/coach/decisions/{decisionId}/explainability", coachHandler.GetExplainability).Methods("GET")

	return router
}
