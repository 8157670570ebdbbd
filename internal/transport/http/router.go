// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meridian/internal/access"
	"meridian/internal/audit"
	"meridian/internal/platform/middleware"
	"meridian/internal/security"
	httpErrors "meridian/pkg/http-errors"
)

// AccessService is the role + permission surface the handlers call.
type AccessService interface {
	Check(role access.Role, resource access.Resource, action access.Action) bool
	UpdateUserRole(ctx context.Context, caller access.Caller, targetUserID string, newRole string) error
}

// AuditRecorder accepts fire-and-forget audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// AuditReader serves the audit view and its CSV export.
type AuditReader interface {
	List(ctx context.Context, filter audit.Filter) []audit.Entry
	Export(ctx context.Context, filter audit.Filter, sink audit.Sink) error
}

// SecurityService builds the security panel aggregate.
type SecurityService interface {
	Build(ctx context.Context, role access.Role) (*security.Overview, error)
}

// HealthChecker reports backing-store health for /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler holds the domain services behind the API.
type Handler struct {
	access   AccessService
	recorder AuditRecorder
	reader   AuditReader
	security SecurityService
	health   HealthChecker // nil when running on in-memory stores
	logger   *slog.Logger
}

func NewHandler(
	accessSvc AccessService,
	recorder AuditRecorder,
	reader AuditReader,
	securitySvc SecurityService,
	health HealthChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		access:   accessSvc,
		recorder: recorder,
		reader:   reader,
		security: securitySvc,
		health:   health,
		logger:   logger,
	}
}

// NewRouter wires all endpoints with the middleware stack. Everything except
// /healthz and /metrics sits behind bearer auth with per-request role
// resolution.
func NewRouter(h *Handler, validator middleware.TokenValidator, roles middleware.RoleResolver, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, roles, logger))

		r.Post("/access/check", h.handleAccessCheck)
		r.Get("/access/permissions", h.handleAccessPermissions)
		r.Put("/admin/users/{userID}/role", h.handleUpdateUserRole)

		r.Post("/audit/events", h.handleRecordEvent)
		r.Get("/audit/logs", h.handleListLogs)
		r.Get("/audit/logs/export", h.handleExportLogs)

		r.Get("/security/overview", h.handleSecurityOverview)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Health(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses so all
// handlers produce the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	gw, ok := err.(httpErrors.GatewayError)
	if !ok {
		gw = httpErrors.FromDomain(err)
	}
	writeJSON(w, httpErrors.ToHTTPStatus(gw.Code), map[string]string{
		"error":             string(gw.Code),
		"error_description": gw.Message,
	})
}
