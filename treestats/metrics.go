package treestats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "docimportance"

// Metrics instruments tree statistics evaluation.
type Metrics struct {
	// TreesProcessed counts trees whose statistics were produced.
	TreesProcessed prometheus.Counter
	// TreeDurationSeconds measures the time spent on one tree.
	TreeDurationSeconds prometheus.Histogram
	// NonFiniteLeaves counts NaN or infinite leaf values produced.
	NonFiniteLeaves prometheus.Counter
	// Evaluations counts evaluation calls.
	// Labels: method (Gradient, Newton), status (success, error)
	Evaluations *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TreesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "trees_processed_total",
			Help:      "Number of trees whose leaf estimation was replayed.",
		}),
		TreeDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "tree_duration_seconds",
			Help:      "Time spent replaying the leaf estimation of one tree.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		NonFiniteLeaves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "nonfinite_leaves_total",
			Help:      "Number of NaN or infinite leaf values produced.",
		}),
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evaluations_total",
			Help:      "Number of tree statistics evaluations.",
		}, []string{"method", "status"}),
	}
}

func (m *Metrics) recordEvaluation(method string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Evaluations.WithLabelValues(method, status).Inc()
}
