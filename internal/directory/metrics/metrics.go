package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the directory cache.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	// Redis failures by operation: get or set
	CacheErrors *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "cpfgate_directory_cache_hits_total",
			Help: "Directory lookups served from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "cpfgate_directory_cache_misses_total",
			Help: "Directory lookups that went to the directory",
		}),
		CacheErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cpfgate_directory_cache_errors_total",
			Help: "Directory cache failures by operation",
		}, []string{"op"}),
	}
}

func (m *Metrics) IncrementHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncrementMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) IncrementError(op string) {
	if m != nil {
		m.CacheErrors.WithLabelValues(op).Inc()
	}
}
