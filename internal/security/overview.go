// Package security aggregates recent audit activity into the data the
// security panel renders. It is read-only and manager-gated.
package security

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"meridian/internal/access"
	"meridian/internal/audit"
	"meridian/internal/platform/tracing"
	dErrors "meridian/pkg/domain-errors"
)

// Overview is the security panel aggregate: the most recent audit entries
// plus per-resource activity counts derived from the same recent window.
type Overview struct {
	RecentEntries []audit.Entry             `json:"recent_entries"`
	Activity      map[string]map[string]int `json:"activity"` // resource type -> action -> count
	GeneratedAt   time.Time                 `json:"generated_at"`
}

// Service builds security overviews from the audit log store.
type Service struct {
	store  audit.Store
	tracer tracing.Tracer
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithTracer sets the tracer for overview spans.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New creates the security overview service. The store is required.
func New(store audit.Store, opts ...Option) *Service {
	if store == nil {
		panic("security.New: store is required")
	}
	s := &Service{store: store, tracer: tracing.NewNoop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build assembles the overview for the given role. Non-managers are refused
// outright; the aggregate exposes activity across every resource type, so
// per-resource grants are not sufficient.
//
// The recent window and the per-resource counts are fetched concurrently;
// a failure on any leg fails the whole overview rather than rendering a
// partially populated panel.
func (s *Service) Build(ctx context.Context, role access.Role) (*Overview, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanSecurityReport,
		tracing.String(tracing.AttrRole, string(role)),
	)

	if !access.IsManager(role) {
		err := dErrors.New(dErrors.CodeForbidden, "insufficient permissions to view security overview")
		span.End(err)
		return nil, err
	}

	overview := &Overview{
		Activity:    make(map[string]map[string]int, len(access.Resources)),
		GeneratedAt: time.Now().UTC(),
	}
	perResource := make([][]audit.Entry, len(access.Resources))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := s.store.Query(gctx, audit.Filter{})
		if err != nil {
			return err
		}
		overview.RecentEntries = entries
		return nil
	})
	for i, resource := range access.Resources {
		g.Go(func() error {
			entries, err := s.store.Query(gctx, audit.Filter{ResourceType: string(resource)})
			if err != nil {
				return err
			}
			perResource[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End(err)
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to build security overview", "error", err)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to build security overview")
	}

	for i, resource := range access.Resources {
		counts := make(map[string]int)
		for _, e := range perResource[i] {
			counts[e.Action]++
		}
		overview.Activity[string(resource)] = counts
	}

	span.SetAttributes(tracing.Int64(tracing.AttrEntryCount, int64(len(overview.RecentEntries))))
	span.End(nil)
	return overview, nil
}
