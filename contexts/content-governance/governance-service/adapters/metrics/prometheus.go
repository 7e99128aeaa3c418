package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kdom/contexts/content-governance/governance-service/ports"
)

// Metrics provides observability for moderation and collaboration decisions.
type Metrics struct {
	// Single-item moderation decisions by action and outcome
	ModerationDecisions *prometheus.CounterVec

	// Items processed by bulk moderation by action and outcome
	BulkItems *prometheus.CounterVec

	// Wall time of whole bulk batches by action
	BulkDuration *prometheus.HistogramVec

	// Collaboration workflow transitions by action and outcome
	CollaborationDecisions *prometheus.CounterVec
}

// New registers the governance metrics with reg. A nil registerer uses the
// process-wide default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ModerationDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kdom_moderation_decisions_total",
			Help: "Total moderation decisions by action and outcome",
		}, []string{"action", "outcome"}),

		BulkItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kdom_bulk_moderation_items_total",
			Help: "Items processed by bulk moderation by action and outcome",
		}, []string{"action", "outcome"}),

		BulkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kdom_bulk_moderation_duration_seconds",
			Help:    "Duration of bulk moderation batches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"action"}),

		CollaborationDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kdom_collaboration_decisions_total",
			Help: "Collaboration workflow transitions by action and outcome",
		}, []string{"action", "outcome"}),
	}
}

func (m *Metrics) ObserveModeration(action string, outcome string) {
	if m != nil {
		m.ModerationDecisions.WithLabelValues(action, outcome).Inc()
	}
}

func (m *Metrics) ObserveBulkModeration(action string, succeeded int, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BulkItems.WithLabelValues(action, "succeeded").Add(float64(succeeded))
	m.BulkItems.WithLabelValues(action, "failed").Add(float64(failed))
	m.BulkDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCollaboration(action string, outcome string) {
	if m != nil {
		m.CollaborationDecisions.WithLabelValues(action, outcome).Inc()
	}
}

var _ ports.GovernanceMetrics = (*Metrics)(nil)
