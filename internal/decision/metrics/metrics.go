package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Decision outcomes by strategy, state and kind
	DecisionOutcome *prometheus.CounterVec

	// Full decision latency including customer resolution
	DecideLatency *prometheus.HistogramVec

	// Customer resolution latency by result: found, not_found or an error kind
	ResolveLatency *prometheus.HistogramVec
}

// New registers the decision metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cpfgate_decision_outcomes_total",
			Help: "Total decision outcomes by strategy, state and kind",
		}, []string{"strategy", "state", "kind"}),

		DecideLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cpfgate_decision_duration_seconds",
			Help:    "Duration of a full decision including customer resolution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"strategy"}),

		ResolveLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cpfgate_customer_resolve_duration_seconds",
			Help:    "Duration of customer resolution by result",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"result"}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(strategy, state, kind string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(strategy, state, kind).Inc()
	}
}

// ObserveDecideLatency records the total decision duration.
func (m *Metrics) ObserveDecideLatency(strategy string, d time.Duration) {
	if m != nil {
		m.DecideLatency.WithLabelValues(strategy).Observe(d.Seconds())
	}
}

// ObserveResolve records one customer resolution.
func (m *Metrics) ObserveResolve(result string, d time.Duration) {
	if m != nil {
		m.ResolveLatency.WithLabelValues(result).Observe(d.Seconds())
	}
}
