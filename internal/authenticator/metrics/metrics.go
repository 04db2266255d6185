// Package metrics provides Prometheus metrics for the KYC authenticator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all authenticator metrics.
type Metrics struct {
	// Flow outcomes
	AuthTotal      *prometheus.CounterVec // KYC auth outcomes by result (success, rejected, failed)
	ExchangeTotal  *prometheus.CounterVec // KYC exchange outcomes by result (success, degraded, failed)
	OTPTotal       *prometheus.CounterVec // send-OTP outcomes by result
	StateTransited *prometheus.CounterVec // terminal flow states reached

	// Provider latency
	ProviderDurationSeconds *prometheus.HistogramVec // IDA round-trip latency by operation

	// Payload store
	StoreHitsTotal          *prometheus.CounterVec
	StoreMissesTotal        *prometheus.CounterVec
	StoreOpDurationSeconds  *prometheus.HistogramVec
	ClaimsResolvedHistogram prometheus.Histogram // claims emitted per exchange
}

// New creates a new Metrics instance with all metrics registered on the
// default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers metrics on reg. Tests pass a fresh registry to
// avoid duplicate registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuthTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_kyc_auth_total",
			Help: "Total number of KYC authentication attempts by result",
		}, []string{"result"}),

		ExchangeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_kyc_exchange_total",
			Help: "Total number of KYC exchanges by result",
		}, []string{"result"}),

		OTPTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_send_otp_total",
			Help: "Total number of send-OTP requests by result",
		}, []string{"result"}),

		StateTransited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_kyc_flow_state_total",
			Help: "Total number of KYC flow transitions into a state",
		}, []string{"state"}),

		ProviderDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "esignet_ida_request_duration_seconds",
			Help:    "Duration of identity provider requests by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),

		StoreHitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_kyc_store_hits_total",
			Help: "Total number of payload store hits by operation",
		}, []string{"op"}),

		StoreMissesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "esignet_kyc_store_misses_total",
			Help: "Total number of payload store misses by operation",
		}, []string{"op"}),

		StoreOpDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "esignet_kyc_store_op_duration_seconds",
			Help:    "Duration of payload store operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
		}, []string{"op"}),

		ClaimsResolvedHistogram: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "esignet_kyc_claims_resolved",
			Help:    "Number of claims emitted per KYC exchange",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}),
	}
}

// RecordAuth records a KYC auth outcome.
func (m *Metrics) RecordAuth(result string) {
	m.AuthTotal.WithLabelValues(result).Inc()
}

// RecordExchange records a KYC exchange outcome.
func (m *Metrics) RecordExchange(result string) {
	m.ExchangeTotal.WithLabelValues(result).Inc()
}

// RecordOTP records a send-OTP outcome.
func (m *Metrics) RecordOTP(result string) {
	m.OTPTotal.WithLabelValues(result).Inc()
}

// RecordState counts a transition into state.
func (m *Metrics) RecordState(state string) {
	m.StateTransited.WithLabelValues(state).Inc()
}

// ObserveProvider records the latency of one provider call.
func (m *Metrics) ObserveProvider(operation string, durationSeconds float64) {
	m.ProviderDurationSeconds.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordStoreHit records a payload store hit.
func (m *Metrics) RecordStoreHit(op string, durationSeconds float64) {
	m.StoreHitsTotal.WithLabelValues(op).Inc()
	m.StoreOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

// RecordStoreMiss records a payload store miss.
func (m *Metrics) RecordStoreMiss(op string, durationSeconds float64) {
	m.StoreMissesTotal.WithLabelValues(op).Inc()
	m.StoreOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

// ObserveClaims records how many claims an exchange produced.
func (m *Metrics) ObserveClaims(n int) {
	m.ClaimsResolvedHistogram.Observe(float64(n))
}
