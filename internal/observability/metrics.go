package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lumen_indicators"

// Metrics holds the Prometheus counters, histograms, and gauges for the indicator service.
type Metrics struct {
	ObservationsConsumed prometheus.Counter
	SnapshotsProduced    prometheus.Counter
	ParseErrors          prometheus.Counter
	PipelineRunning      prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Indicator metrics.
	SnapshotComputeDuration prometheus.Histogram
	SnapshotCache           *prometheus.CounterVec // labels: result={hit,miss}
	StoredObservations      prometheus.Gauge
	NationalIndicator       *prometheus.GaugeVec // labels: indicator={rt,sc,severity,lumen}
	RegionalIndicator       *prometheus.GaugeVec // labels: region, indicator

	// Attention signal metrics.
	SignalRequests    *prometheus.CounterVec // labels: outcome={success,error}
	SignalCache       *prometheus.CounterVec // labels: result={hit,miss}
	SignalAPIDuration prometheus.Histogram
	SignalEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_consumed_total",
			Help:      "Total observation messages read from the source topic.",
		}),
		SnapshotsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_produced_total",
			Help:      "Total indicator snapshots published to the sink topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Total observation messages skipped because they could not be parsed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract, compute and publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_compute_duration_seconds",
			Help:      "Duration of an indicator snapshot computation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		StoredObservations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_observations",
			Help:      "Number of (region, date) rows held in the observation store.",
		}),
		NationalIndicator: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "national_indicator",
			Help:      "Latest national indicator value.",
		}, []string{"indicator"}),
		RegionalIndicator: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regional_indicator",
			Help:      "Latest regional indicator value.",
		}, []string{"region", "indicator"}),
		SignalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signal_requests_total",
			Help:      "Wikimedia pageview requests by outcome.",
		}, []string{"outcome"}),
		SignalCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signal_cache_total",
			Help:      "Pageview cache lookups by result.",
		}, []string{"result"}),
		SignalAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signal_api_duration_seconds",
			Help:      "Wikimedia API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SignalEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_enabled",
			Help:      "1 when Wikimedia enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ObservationsConsumed,
		m.SnapshotsProduced,
		m.ParseErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SnapshotComputeDuration,
		m.SnapshotCache,
		m.StoredObservations,
		m.NationalIndicator,
		m.RegionalIndicator,
		m.SignalRequests,
		m.SignalCache,
		m.SignalAPIDuration,
		m.SignalEnabled,
	}
}
