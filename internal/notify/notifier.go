// Package notify carries transient user-facing feedback out of domain code.
// Failures that must reach the user without becoming errors (audit read and
// export failures) go through a Notifier instead of propagating raw store
// exceptions to rendering code.
package notify

import (
	"context"
	"log/slog"
)

// Severity classifies a notification for presentation.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is a short title/description/severity tuple.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier delivers transient user-facing feedback.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// SlogNotifier logs notifications. It stands in for the product's toast
// surface in headless deployments and tests.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlog constructs a logging notifier.
func NewSlog(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

func (n *SlogNotifier) Notify(ctx context.Context, notification Notification) {
	level := slog.LevelInfo
	if notification.Severity == SeverityError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, "user notification",
		"title", notification.Title,
		"description", notification.Description,
		"severity", string(notification.Severity),
	)
}

var _ Notifier = (*SlogNotifier)(nil)
