package httptransport

import (
	"net/http"

	"meridian/internal/platform/middleware"
)

// handleSecurityOverview serves the security panel aggregate. Role gating
// lives in the security service so CLI consumers get the same check.
func (h *Handler) handleSecurityOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.security.Build(r.Context(), middleware.GetRole(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
