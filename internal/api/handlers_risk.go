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

// RiskHandler provides HTTP transport for risk-record intake and listing.
type RiskHandler struct {
	svc *services.RiskService
	log zerolog.Logger
}

func NewRiskHandler(svc *services.RiskService, log zerolog.Logger) *RiskHandler {
	return &RiskHandler{svc: svc, log: log}
}

// RecordRisk POST /api/risks
func (h *RiskHandler) RecordRisk(w http.ResponseWriter, r *http.Request) {
	var in services.RecordRiskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	rec, err := h.svc.RecordRisk(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, rec)
}

// ListRisks GET /api/risks?userId=&limit=
func (h *RiskHandler) ListRisks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.WriteBadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	recs, err := h.svc.ListRisks(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if recs == nil {
		recs = []*model.RiskRecord{}
	}
	respond.WriteJSON(w, http.StatusOK, recs)
}
