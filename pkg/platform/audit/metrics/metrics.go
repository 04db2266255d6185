// Package metrics instruments the audit publisher.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// Outcomes recorded per event.
const (
	OutcomeQueued    = "queued"
	OutcomeDropped   = "dropped"
	OutcomePersisted = "persisted"
	OutcomeFailed    = "failed"
)

// Metrics holds the audit publisher collectors.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	Events          *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "esignet_audit_queue_depth",
			Help: "Audit events waiting in the async publisher buffer",
		}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_audit_events_total",
			Help: "Audit events by category and outcome (queued, dropped, persisted, failed)",
		}, []string{"category", "outcome"}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "esignet_audit_persist_duration_seconds",
			Help:    "Time taken to append an audit event to the store",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// Record counts one event outcome.
func (m *Metrics) Record(category audit.EventCategory, outcome string) {
	if m == nil {
		return
	}
	if category == "" {
		category = audit.CategoryOperations
	}
	m.Events.WithLabelValues(string(category), outcome).Inc()
}

// ObservePersist records a store append.
func (m *Metrics) ObservePersist(seconds float64) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(seconds)
}

// SetQueueDepth reports the buffered event count.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
