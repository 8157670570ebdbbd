package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the access subsystem.
type Metrics struct {
	Decisions       *prometheus.CounterVec
	RoleResolutions *prometheus.CounterVec
	RoleUpdates     *prometheus.CounterVec
}

// New creates and registers all access metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_access_decisions_total",
			Help: "Total access decisions, labeled by resource, action and outcome",
		}, []string{"resource", "action", "outcome"}),
		RoleResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_role_resolutions_total",
			Help: "Total role resolutions, labeled by result (resolved, missing, error)",
		}, []string{"result"}),
		RoleUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_role_updates_total",
			Help: "Total role update attempts, labeled by outcome (applied, forbidden, invalid, error)",
		}, []string{"outcome"}),
	}
}

// IncrementDecision records one access decision.
func (m *Metrics) IncrementDecision(resource, action string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.Decisions.WithLabelValues(resource, action, outcome).Inc()
}

// IncrementRoleResolution records one role resolution with its result.
func (m *Metrics) IncrementRoleResolution(result string) {
	m.RoleResolutions.WithLabelValues(result).Inc()
}

// IncrementRoleUpdate records one role update attempt with its outcome.
func (m *Metrics) IncrementRoleUpdate(outcome string) {
	m.RoleUpdates.WithLabelValues(outcome).Inc()
}
