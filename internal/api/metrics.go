package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics registra latencia y resultado de las llamadas al backend.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "allowance_client",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Backend requests by operation and status.",
		}, []string{"op", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "allowance_client",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(op, method, status string, d time.Duration) {
	m.requests.WithLabelValues(op, method, status).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}
