package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// post-processing pipeline.
type Metrics struct {
	CubesConsumed   prometheus.Counter
	CubesProduced   prometheus.Counter
	TransformErrors prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Post-processing metrics.
	OperationDuration *prometheus.HistogramVec // label: operation={blend,threshold}
	GridPoints        prometheus.Histogram
	ThresholdsApplied prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CubesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postproc",
			Name:      "cubes_consumed_total",
			Help:      "Total forecast cubes read from the source topic.",
		}),
		CubesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postproc",
			Name:      "cubes_produced_total",
			Help:      "Total processed cubes written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postproc",
			Name:      "transform_errors_total",
			Help:      "Total cube transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "postproc",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "postproc",
			Name:      "batch_size",
			Help:      "Number of cubes per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "postproc",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "postproc",
			Name:      "operation_duration_seconds",
			Help:      "Duration of one blend or threshold operation on a cube.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		GridPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "postproc",
			Name:      "grid_points",
			Help:      "Number of grid values in each processed cube.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
		}),
		ThresholdsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "postproc",
			Name:      "thresholds_applied_total",
			Help:      "Total threshold evaluations across all cubes.",
		}),
	}

	prometheus.MustRegister(
		m.CubesConsumed,
		m.CubesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.OperationDuration,
		m.GridPoints,
		m.ThresholdsApplied,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CubesConsumed:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "postproc", Name: "cubes_consumed_total"}),
		CubesProduced:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "postproc", Name: "cubes_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "postproc", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "postproc", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "postproc", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "postproc", Name: "batch_processing_duration_seconds"}),
		OperationDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "postproc", Name: "operation_duration_seconds"}, []string{"operation"}),
		GridPoints:              prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "postproc", Name: "grid_points"}),
		ThresholdsApplied:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "postproc", Name: "thresholds_applied_total"}),
	}
}
