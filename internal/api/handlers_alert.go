package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mindcare/mindcare-server/internal/api/respond"
	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/services"
)

// AlertHandler provides HTTP transport for emergency-alert tracking:
// intake from the conversation surface, the reviewer-facing listing, and
// triage status updates. Access control sits in front of this handler.
type AlertHandler struct {
	svc *services.AlertService
	log zerolog.Logger
}

func NewAlertHandler(svc *services.AlertService, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, log: log}
}

// CreateAlert POST /api/alert-tracking
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var in services.CreateAlertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	id, err := h.svc.CreateAlert(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": id})
}

// ListAlerts GET /api/alert-tracking?limit=
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.WriteBadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	alerts, err := h.svc.ListAlerts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if alerts == nil {
		alerts = []*model.EmergencyAlert{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// UpdateStatus PATCH /api/alert-tracking
func (h *AlertHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	// id arrives as a string or a JSON number depending on the caller;
	// the service normalizes it.
	var in struct {
		ID     interface{} `json:"id"`
		Status string      `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := h.svc.UpdateStatus(r.Context(), in.ID, in.Status); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
