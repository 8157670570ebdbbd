package audit

import (
	"context"
	"log/slog"
	"time"

	"meridian/internal/audit/metrics"
	"meridian/internal/notify"
	"meridian/internal/platform/tracing"
	dErrors "meridian/pkg/domain-errors"
)

// Reader serves filtered, ordered audit queries for the security view.
// Store failures never reach rendering code: List degrades to an empty
// result plus a user-facing notification, so the audit view stays usable
// even when the log store is unreachable.
type Reader struct {
	store    Store
	notifier notify.Notifier
	tracer   tracing.Tracer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// ReaderOption configures the Reader.
type ReaderOption func(*Reader)

// WithReaderLogger sets the logger for diagnostic output.
func WithReaderLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = l
	}
}

// WithReaderMetrics sets the metrics collector for query latency.
func WithReaderMetrics(m *metrics.Metrics) ReaderOption {
	return func(r *Reader) {
		r.metrics = m
	}
}

// WithReaderTracer sets the tracer for query spans.
func WithReaderTracer(t tracing.Tracer) ReaderOption {
	return func(r *Reader) {
		r.tracer = t
	}
}

// NewReader creates an audit reader. The store and notifier are required.
func NewReader(store Store, notifier notify.Notifier, opts ...ReaderOption) *Reader {
	if store == nil {
		panic("audit.NewReader: store is required")
	}
	if notifier == nil {
		panic("audit.NewReader: notifier is required")
	}
	r := &Reader{store: store, notifier: notifier, tracer: tracing.NewNoop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns entries matching the filter, ordered by Timestamp descending
// and capped at QueryLimit. On store error it notifies the user and returns
// an empty list; no error escapes to the caller.
func (r *Reader) List(ctx context.Context, filter Filter) []Entry {
	ctx, span := r.tracer.Start(ctx, tracing.SpanAuditList,
		tracing.String(tracing.AttrResourceType, filter.ResourceType),
	)

	start := time.Now()
	entries, err := r.store.Query(ctx, filter)
	if r.metrics != nil {
		r.metrics.ObserveQueryLatency(time.Since(start).Seconds())
	}
	if err != nil {
		span.End(err)
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to fetch audit logs", "error", err)
		}
		r.notifier.Notify(ctx, notify.Notification{
			Title:       "Error",
			Description: "Failed to fetch audit logs",
			Severity:    notify.SeverityError,
		})
		return []Entry{}
	}

	// The store contract already caps results; enforce it defensively so a
	// misbehaving implementation cannot flood the view.
	if len(entries) > QueryLimit {
		entries = entries[:QueryLimit]
	}
	span.SetAttributes(tracing.Int64(tracing.AttrEntryCount, int64(len(entries))))
	span.End(nil)
	return entries
}

// Export retrieves entries for the filter, serializes them to CSV and
// delivers the complete file through the sink as ExportFilename. Failure at
// any stage notifies the user and delivers nothing - a partial or corrupt
// file is never produced.
func (r *Reader) Export(ctx context.Context, filter Filter, sink Sink) error {
	ctx, span := r.tracer.Start(ctx, tracing.SpanAuditExport,
		tracing.String(tracing.AttrResourceType, filter.ResourceType),
	)

	entries, err := r.store.Query(ctx, filter)
	if err != nil {
		span.End(err)
		r.notifyExportFailed(ctx, err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to export audit logs")
	}
	if len(entries) > QueryLimit {
		entries = entries[:QueryLimit]
	}

	data := ToCSV(entries)
	if err := sink.Deliver(ctx, ExportFilename, data); err != nil {
		span.End(err)
		r.notifyExportFailed(ctx, err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deliver audit log export")
	}

	span.SetAttributes(tracing.Int64(tracing.AttrEntryCount, int64(len(entries))))
	span.End(nil)
	r.notifier.Notify(ctx, notify.Notification{
		Title:       "Success",
		Description: "Audit logs exported successfully",
		Severity:    notify.SeverityInfo,
	})
	return nil
}

func (r *Reader) notifyExportFailed(ctx context.Context, err error) {
	if r.logger != nil {
		r.logger.ErrorContext(ctx, "failed to export audit logs", "error", err)
	}
	r.notifier.Notify(ctx, notify.Notification{
		Title:       "Error",
		Description: "Failed to export audit logs",
		Severity:    notify.SeverityError,
	})
}
