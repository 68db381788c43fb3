package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/stridewell/coachcore/internal/api/respond"
	"github.com/stridewell/coachcore/internal/coach"
	"github.com/stridewell/coachcore/internal/model"
)

// CoachHandler exposes the four runtime entry points over HTTP. Screens
// must go through these; nothing reaches the memory facade or the breaker
// directly.
type CoachHandler struct {
	rt *coach.Runtime
}

// NewCoachHandler creates the handler.
func NewCoachHandler(rt *coach.Runtime) *CoachHandler {
	return &CoachHandler{rt: rt}
}

type userEventRequest struct {
	Event   model.CoachMemoryEvent   `json:"event"`
	Context model.CoachScreenContext `json:"context"`
}

// HandleUserEvent handles POST /api/coach/events.
func (h *CoachHandler) HandleUserEvent(w http.ResponseWriter, r *http.Request) {
	var req userEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid request body")
		return
	}
	if req.Event.Type == "" {
		respond.WriteBadRequest(w, "event type is required")
		return
	}
	if req.Event.Timestamp.IsZero() {
		req.Event.Timestamp = time.Now()
	}

	resp := h.rt.HandleUserEvent(r.Context(), req.Event, req.Context)
	respond.WriteJSON(w, http.StatusOK, resp)
}

// GetCoachOverlay handles GET /api/coach/overlay.
func (h *CoachHandler) GetCoachOverlay(w http.ResponseWriter, r *http.Request) {
	screen := screenContextFromQuery(r)
	resp := h.rt.CoachOverlay(r.Context(), screen)
	respond.WriteJSON(w, http.StatusOK, resp)
}

// GetCoachNudge handles GET /api/coach/nudges/{kind}.
func (h *CoachHandler) GetCoachNudge(w http.ResponseWriter, r *http.Request) {
	kind := coach.NudgeKind(mux.Vars(r)["kind"])
	respond.WriteJSON(w, http.StatusOK, h.rt.CoachNudge(kind))
}

// GetExplainability handles GET /api/coach/decisions/{decisionId}/explainability.
func (h *CoachHandler) GetExplainability(w http.ResponseWriter, r *http.Request) {
	decisionID := mux.Vars(r)["decisionId"]
	if decisionID == "" {
		respond.WriteBadRequest(w, "decisionId is required")
		return
	}
	screen := screenContextFromQuery(r)
	binding := h.rt.Explainability(r.Context(), decisionID, screen)
	respond.WriteJSON(w, http.StatusOK, binding)
}

// screenContextFromQuery builds a screen context from query parameters.
// Absent optional signals stay nil.
func screenContextFromQuery(r *http.Request) model.CoachScreenContext {
	q := r.URL.Query()
	screen := model.CoachScreenContext{
		Screen:       q.Get("screen"),
		UserMode:     model.UserMode(q.Get("userMode")),
		Subscription: model.SubscriptionTier(q.Get("subscription")),
	}
	if screen.Subscription == "" {
		screen.Subscription = model.TierFree
	}
	if v, err := strconv.Atoi(q.Get("trustLevel")); err == nil {
		screen.TrustLevel = &v
	}
	if v, err := strconv.ParseFloat(q.Get("fatigueLevel"), 64); err == nil {
		screen.FatigueLevel = &v
	}
	if v, err := strconv.ParseFloat(q.Get("relapseRisk"), 64); err == nil {
		screen.RelapseRisk = &v
	}
	if v, err := strconv.ParseFloat(q.Get("motivationLevel"), 64); err == nil {
		screen.MotivationLevel = &v
	}
	if v, err := strconv.ParseFloat(q.Get("adherence"), 64); err == nil {
		screen.Adherence = &v
	}
	if v, err := strconv.Atoi(q.Get("streak")); err == nil {
		screen.Streak = &v
	}
	if v, err := strconv.Atoi(q.Get("timeGapDays")); err == nil {
		screen.TimeGapDays = &v
	}
	if flags, ok := q["safetyFlag"]; ok {
		screen.SafetyFlags = flags
	}
	return screen
}
