package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics expone contadores del cache. Un *Metrics nil no registra nada.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	shared        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "allowance_client",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Reads served from a fresh cache entry.",
		}, []string{"endpoint"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "allowance_client",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Reads that started a network fetch.",
		}, []string{"endpoint"}),
		shared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "allowance_client",
			Subsystem: "cache",
			Name:      "shared_total",
			Help:      "Reads that joined a fetch already in flight.",
		}, []string{"endpoint"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "allowance_client",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Entries marked stale by tag invalidation.",
		}, []string{"tag"}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.shared, m.invalidations)
	}
	return m
}

func (m *Metrics) hit(endpoint string) {
	if m != nil {
		m.hits.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) miss(endpoint string) {
	if m != nil {
		m.misses.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) join(endpoint string) {
	if m != nil {
		m.shared.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) invalidated(tag Tag, n int) {
	if m != nil && n > 0 {
		m.invalidations.WithLabelValues(string(tag)).Add(float64(n))
	}
}
