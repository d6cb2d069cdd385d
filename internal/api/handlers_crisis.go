package api

import (
	"net/http"

	"github.com/mindcare/mindcare-server/internal/api/respond"
	"github.com/mindcare/mindcare-server/internal/crisis"
)

// CrisisHandler exposes the crisis resource resolver so the chat surface
// can render localized safety messaging. Resolution never fails.
type CrisisHandler struct {
	resolver *crisis.Resolver
}

func NewCrisisHandler(resolver *crisis.Resolver) *CrisisHandler {
	return &CrisisHandler{resolver: resolver}
}

// GetResources GET /api/crisis-resources?region=
func (h *CrisisHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	rs := h.resolver.Resolve(r.URL.Query().Get("region"))
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"resources": rs,
		"advisory":  crisis.Format(rs),
	})
}
