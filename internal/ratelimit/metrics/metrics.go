package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts rate limit decisions per endpoint class.
type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
}

// NewWithRegisterer registers the rate limit collectors with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_ratelimit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_ratelimit_store_errors_total",
			Help: "Bucket store failures; the request is let through",
		}, []string{"class"}),
	}
}

func (m *Metrics) IncrementDecision(class string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "limited"
	}
	m.Decisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncrementStoreError(class string) {
	m.StoreErrors.WithLabelValues(class).Inc()
}
