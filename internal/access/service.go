package access

import (
	"context"
	"errors"
	"log/slog"

	"meridian/internal/access/metrics"
	"meridian/internal/audit"
	"meridian/internal/platform/tracing"
	"meridian/internal/sentinel"
	dErrors "meridian/pkg/domain-errors"
)

// ProfileStore is the external collaborator holding user roles.
type ProfileStore interface {
	FindRole(ctx context.Context, userID string) (string, error)
	UpdateRole(ctx context.Context, userID string, role string) error
}

// AuditRecorder captures privileged mutations for the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Caller identifies the authenticated actor and their session-scoped role.
// The role is resolved once per session and passed explicitly; consumers do
// not re-fetch it ad hoc.
type Caller struct {
	UserID string
	Role   Role
}

// Service resolves roles and guards privileged role mutations. Access
// control is fail-closed: any doubt about identity or role resolves to
// readonly, never to an error and never to broader access.
type Service struct {
	profiles ProfileStore
	recorder AuditRecorder
	metrics  *metrics.Metrics
	tracer   tracing.Tracer
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithTracer sets the tracer for the service.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New creates an access service with required dependencies.
// Panics if required dependencies are nil - fail fast at startup. The
// recorder is required: role changes must leave an audit trail.
func New(profiles ProfileStore, recorder AuditRecorder, opts ...Option) *Service {
	if profiles == nil {
		panic("access.New: profile store is required")
	}
	if recorder == nil {
		panic("access.New: audit recorder is required")
	}
	s := &Service{
		profiles: profiles,
		recorder: recorder,
		tracer:   tracing.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveRole looks up the caller's role from the profile store, exactly
// once per session. A missing profile row or any store failure resolves to
// readonly rather than an error: a new user without a role assignment and a
// store outage are indistinguishable, and both must deny by default.
func (s *Service) ResolveRole(ctx context.Context, userID string) Role {
	ctx, span := s.tracer.Start(ctx, tracing.SpanResolveRole)

	if userID == "" {
		s.countResolution("missing")
		span.SetAttributes(tracing.Bool(tracing.AttrFailClosed, true))
		span.End(nil)
		return RoleReadonly
	}

	stored, err := s.profiles.FindRole(ctx, userID)
	if err != nil {
		result := "error"
		if errors.Is(err, sentinel.ErrNotFound) {
			result = "missing"
		} else if s.logger != nil {
			s.logger.WarnContext(ctx, "role lookup failed, defaulting to readonly",
				"error", err,
				"user_id", userID,
			)
		}
		s.countResolution(result)
		span.SetAttributes(tracing.Bool(tracing.AttrFailClosed, true))
		span.End(nil)
		return RoleReadonly
	}

	role, err := ParseRole(stored)
	if err != nil {
		// An unrecognized stored role grants nothing; resolve it to
		// readonly explicitly instead of relying on that fallthrough.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "unknown stored role, defaulting to readonly",
				"stored_role", stored,
				"user_id", userID,
			)
		}
		s.countResolution("error")
		span.SetAttributes(tracing.Bool(tracing.AttrFailClosed, true))
		span.End(nil)
		return RoleReadonly
	}

	s.countResolution("resolved")
	span.SetAttributes(tracing.String(tracing.AttrRole, string(role)))
	span.End(nil)
	return role
}

// Check evaluates one (resource, action) request for the caller's role and
// records the decision. It never fails; unknown inputs deny.
func (s *Service) Check(role Role, resource Resource, action Action) bool {
	allowed := HasPermission(role, resource, action)
	if s.metrics != nil {
		s.metrics.IncrementDecision(string(resource), string(action), allowed)
	}
	return allowed
}

// UpdateUserRole persists a new role for the target user. Only admins may
// call it; the UI hides the control for everyone else, and this guard is the
// defense-in-depth for direct invocation bypassing the UI.
//
// The caller's own in-memory role is not refreshed here - a caller
// re-targeting themselves observes the change only after a fresh resolution.
//
// Errors: CodeForbidden for non-admin callers, CodeInvalidInput for unknown
// roles, CodeNotFound when the target has no profile row.
func (s *Service) UpdateUserRole(ctx context.Context, caller Caller, targetUserID string, newRole string) error {
	ctx, span := s.tracer.Start(ctx, tracing.SpanUpdateRole,
		tracing.String(tracing.AttrRole, newRole),
	)

	if !IsAdmin(caller.Role) {
		s.countRoleUpdate("forbidden")
		err := dErrors.New(dErrors.CodeForbidden, "insufficient permissions to update user roles")
		span.End(err)
		return err
	}

	role, err := ParseRole(newRole)
	if err != nil {
		s.countRoleUpdate("invalid")
		span.End(err)
		return err
	}

	oldRole, err := s.profiles.FindRole(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countRoleUpdate("error")
			err = dErrors.New(dErrors.CodeNotFound, "target user has no profile")
			span.End(err)
			return err
		}
		s.countRoleUpdate("error")
		err = dErrors.Wrap(err, dErrors.CodeUnavailable, "could not read target profile")
		span.End(err)
		return err
	}

	if err := s.profiles.UpdateRole(ctx, targetUserID, string(role)); err != nil {
		s.countRoleUpdate("error")
		err = dErrors.Wrap(err, dErrors.CodeUnavailable, "could not persist role update")
		span.End(err)
		return err
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:       caller.UserID,
		Action:       audit.ActionUpdate,
		ResourceType: "profiles",
		ResourceID:   targetUserID,
		OldValues:    map[string]any{"role": oldRole},
		NewValues:    map[string]any{"role": string(role)},
	})

	if s.logger != nil {
		s.logger.InfoContext(ctx, "user role updated",
			"admin_user_id", caller.UserID,
			"target_user_id", targetUserID,
			"old_role", oldRole,
			"new_role", string(role),
		)
	}
	s.countRoleUpdate("applied")
	span.End(nil)
	return nil
}

func (s *Service) countResolution(result string) {
	if s.metrics != nil {
		s.metrics.IncrementRoleResolution(result)
	}
}

func (s *Service) countRoleUpdate(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRoleUpdate(outcome)
	}
}
