package audit

import (
	"context"
	"log/slog"
	"sync"

	"meridian/internal/audit/metrics"
)

// Recorder captures audit entries without blocking or failing the business
// operation being audited. It is append-only and uses the storage layer for
// persistence so tests can swap sinks easily.
//
// A dropped entry is a degraded-observability event, not a correctness
// failure: the recorder never retries a failed insert (retry storms would
// produce duplicates) and never propagates store errors to callers. Callers
// with compliance requirements may retry at a higher level.
type Recorder struct {
	store   Store
	entries chan Entry
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   bool
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithBuffer enables async processing with the specified queue size.
// Entries are queued and persisted by a background goroutine; a full queue
// drops the entry rather than blocking the caller.
func WithBuffer(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.entries = make(chan Entry, size)
			r.async = true
		}
	}
}

// WithRecorderLogger sets a logger for the diagnostic channel.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithRecorderMetrics sets the metrics collector for queue depth and drops.
func WithRecorderMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.async {
		r.wg.Add(1)
		go r.processEntries()
	}
	return r
}

// processEntries runs in a goroutine and persists entries from the queue.
func (r *Recorder) processEntries() {
	defer r.wg.Done()
	for entry := range r.entries {
		r.observeQueueDepth()
		r.persist(context.Background(), entry)
	}
}

func (r *Recorder) persist(ctx context.Context, entry Entry) {
	if err := r.store.Insert(ctx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.IncrementInsertFailures()
		}
		if r.logger != nil {
			r.logger.Error("failed to persist audit entry",
				"error", err,
				"action", entry.Action,
				"resource_type", entry.ResourceType,
			)
		}
	}
}

// Record submits an entry for persistence. Fire-and-forget: it never blocks
// and never reports failure to the caller. ID and Timestamp are left for the
// store to assign.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r.metrics != nil {
		r.metrics.IncrementRecorded()
	}
	if r.async {
		select {
		case r.entries <- entry:
			r.observeQueueDepth()
		default:
			if r.metrics != nil {
				r.metrics.IncrementDropped()
			}
			if r.logger != nil {
				r.logger.Warn("audit queue full, entry dropped",
					"action", entry.Action,
					"resource_type", entry.ResourceType,
				)
			}
		}
		return
	}
	r.persist(ctx, entry)
}

// Close shuts down the async recorder and waits for pending entries to drain.
func (r *Recorder) Close() {
	if r.async && r.entries != nil {
		close(r.entries)
		r.wg.Wait()
	}
}

func (r *Recorder) observeQueueDepth() {
	if r.metrics != nil {
		r.metrics.SetQueueDepth(len(r.entries))
	}
}
