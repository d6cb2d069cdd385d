package api

import (
	"net/http"

	"github.com/mindcare/mindcare-server/internal/api/respond"
)

// HealthReporter is the read side of the aggregate service health flag.
type HealthReporter interface {
	IsHealthy() bool
}

type HealthHandler struct {
	health HealthReporter
}

// NewHealthHandler creates a handler over the service health flag.
// A nil reporter always reports healthy (used by tests).
func NewHealthHandler(h HealthReporter) *HealthHandler {
	return &HealthHandler{health: h}
}

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && !h.health.IsHealthy() {
		respond.WriteUnavailable(w, "service dependencies unhealthy")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
