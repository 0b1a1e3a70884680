package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the determination module.
type Metrics struct {
	// Determination outcomes by clause outcome, office and contract type
	Outcomes *prometheus.CounterVec

	// Inputs rejected by validation
	InvalidInputs prometheus.Counter

	// Engine evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates the determination metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contractguide_determination_outcomes_total",
			Help: "Total determinations by clause outcome, office and contract type",
		}, []string{"outcome", "office", "contract_type"}),

		InvalidInputs: f.NewCounter(prometheus.CounterOpts{
			Name: "contractguide_determination_invalid_inputs_total",
			Help: "Total determination requests rejected as invalid input",
		}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "contractguide_determination_evaluate_duration_seconds",
			Help:    "Duration of a single determination evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}
}

// IncrementOutcome records a determination outcome.
func (m *Metrics) IncrementOutcome(outcome, office, contractType string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome, office, contractType).Inc()
	}
}

// IncrementInvalidInput records a rejected input.
func (m *Metrics) IncrementInvalidInput() {
	if m != nil {
		m.InvalidInputs.Inc()
	}
}

// ObserveEvaluateLatency records the evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
