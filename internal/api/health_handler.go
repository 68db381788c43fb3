package api

import (
	"net/http"
	"time"

	"github.com/stridewell/coachcore/internal/api/respond"
)

// HealthHandler reports process liveness. Durable-store health is owned by
// the circuit breaker and surfaced through logs and metrics, not here; the
// coach keeps serving through a store outage.
type HealthHandler struct{}

// NewHealthHandler creates the handler.
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// CheckHealth handles GET /api/health.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
