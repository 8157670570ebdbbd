package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meridian/internal/access"
	"meridian/internal/platform/middleware"
	httpErrors "meridian/pkg/http-errors"
)

type checkRequest struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type checkResponse struct {
	Allowed bool   `json:"allowed"`
	Role    string `json:"role"`
}

// handleAccessCheck evaluates one (resource, action) pair for the caller's
// session role. Unknown resources or actions are rejected at the boundary
// rather than silently denied so integration bugs surface as 400s.
func (h *Handler) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	resource, err := access.ParseResource(req.Resource)
	if err != nil {
		writeError(w, err)
		return
	}
	action, err := access.ParseAction(req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	role := middleware.GetRole(r.Context())
	writeJSON(w, http.StatusOK, checkResponse{
		Allowed: h.access.Check(role, resource, action),
		Role:    string(role),
	})
}

type permissionEntry struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

type permissionsResponse struct {
	UserID      string            `json:"user_id"`
	Role        string            `json:"role"`
	Permissions []permissionEntry `json:"permissions"`
}

// handleAccessPermissions returns the caller's resolved role and full grant
// set so the dashboard can hide controls the caller cannot use.
func (h *Handler) handleAccessPermissions(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())

	grants := access.Permissions(role)
	permissions := make([]permissionEntry, 0, len(grants))
	for _, p := range grants {
		permissions = append(permissions, permissionEntry{
			Resource: string(p.Resource),
			Action:   string(p.Action),
		})
	}

	writeJSON(w, http.StatusOK, permissionsResponse{
		UserID:      middleware.GetUserID(r.Context()),
		Role:        string(role),
		Permissions: permissions,
	})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	targetUserID := chi.URLParam(r, "userID")
	caller := middleware.GetCaller(r.Context())

	if err := h.access.UpdateUserRole(r.Context(), caller, targetUserID, req.Role); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": targetUserID,
		"role":    req.Role,
	})
}
