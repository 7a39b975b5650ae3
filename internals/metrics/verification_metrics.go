package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess         = "success"
	ResultNotFound        = "not_found"
	ResultAlreadyConsumed = "already_consumed"
	ResultError           = "error"
)

// VerificationMetrics counts issuance/consumption per variant.
// Semua method nil-safe supaya service bisa jalan tanpa registry (test).
type VerificationMetrics struct {
	issued   *prometheus.CounterVec
	consumed *prometheus.CounterVec
	expired  *prometheus.CounterVec
}

func NewVerificationMetrics(reg prometheus.Registerer) *VerificationMetrics {
	factory := promauto.With(reg)
	return &VerificationMetrics{
		issued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compsphere_verifications_issued_total",
			Help: "Verification records created, by variant",
		}, []string{"variant"}),
		consumed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compsphere_verifications_consumed_total",
			Help: "Consume attempts, by variant and result",
		}, []string{"variant", "result"}),
		expired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compsphere_verifications_expired_total",
			Help: "Verification records moved to expired (regenerate or TTL sweep), by variant",
		}, []string{"variant"}),
	}
}

func (m *VerificationMetrics) Issued(variant string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(variant).Inc()
}

func (m *VerificationMetrics) Consumed(variant, result string) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(variant, result).Inc()
}

func (m *VerificationMetrics) Expired(variant string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.WithLabelValues(variant).Add(float64(n))
}

// Counter accessors (dipakai test).

func (m *VerificationMetrics) IssuedCounter(variant string) prometheus.Counter {
	return m.issued.WithLabelValues(variant)
}

func (m *VerificationMetrics) ConsumedCounter(variant, result string) prometheus.Counter {
	return m.consumed.WithLabelValues(variant, result)
}

func (m *VerificationMetrics) ExpiredCounter(variant string) prometheus.Counter {
	return m.expired.WithLabelValues(variant)
}
