package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// obstacle ETL service.
type Metrics struct {
	LinesProcessed  prometheus.Counter
	ObstaclesParsed prometheus.Counter
	ParseErrors     *prometheus.CounterVec // labels: kind={line_too_short,field,encoding,format,other}
	ParseDuration   prometheus.Histogram

	// Archive fetch metrics.
	Fetches       *prometheus.CounterVec // labels: outcome={success,error,cached}
	FetchDuration prometheus.Histogram

	// Kafka publish metrics.
	Publishes          *prometheus.CounterVec // labels: outcome={success,error}
	ObstaclesPublished prometheus.Counter
	PublishDuration    prometheus.Histogram

	// Sync loop metrics.
	LastSyncCycle  prometheus.Gauge
	SyncInProgress prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		LinesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "obstacle_etl",
			Name:      "lines_processed_total",
			Help:      "Total DOF lines consumed across all parses.",
		}),
		ObstaclesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "obstacle_etl",
			Name:      "obstacles_parsed_total",
			Help:      "Total obstacle records decoded successfully.",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "obstacle_etl",
			Name:      "parse_errors_total",
			Help:      "Lines dropped during parsing, by failure kind.",
		}, []string{"kind"}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "obstacle_etl",
			Name:      "parse_duration_seconds",
			Help:      "Duration of a complete DOF parse.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "obstacle_etl",
			Name:      "fetches_total",
			Help:      "Archive fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "obstacle_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of an archive download and extraction.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "obstacle_etl",
			Name:      "publishes_total",
			Help:      "Container publish attempts by outcome.",
		}, []string{"outcome"}),
		ObstaclesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "obstacle_etl",
			Name:      "obstacles_published_total",
			Help:      "Total obstacle messages written to the sink topic.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "obstacle_etl",
			Name:      "publish_duration_seconds",
			Help:      "Duration of a complete container publish.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSyncCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "obstacle_etl",
			Name:      "last_sync_cycle",
			Help:      "Cycle id (YYYYMMDD) of the most recent successful sync, 0 before the first.",
		}),
		SyncInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "obstacle_etl",
			Name:      "sync_in_progress",
			Help:      "1 while a sync pass is running, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.LinesProcessed,
		m.ObstaclesParsed,
		m.ParseErrors,
		m.ParseDuration,
		m.Fetches,
		m.FetchDuration,
		m.Publishes,
		m.ObstaclesPublished,
		m.PublishDuration,
		m.LastSyncCycle,
		m.SyncInProgress,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		LinesProcessed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "obstacle_etl", Name: "lines_processed_total"}),
		ObstaclesParsed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "obstacle_etl", Name: "obstacles_parsed_total"}),
		ParseErrors:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "obstacle_etl", Name: "parse_errors_total"}, []string{"kind"}),
		ParseDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "obstacle_etl", Name: "parse_duration_seconds"}),
		Fetches:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "obstacle_etl", Name: "fetches_total"}, []string{"outcome"}),
		FetchDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "obstacle_etl", Name: "fetch_duration_seconds"}),
		Publishes:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "obstacle_etl", Name: "publishes_total"}, []string{"outcome"}),
		ObstaclesPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "obstacle_etl", Name: "obstacles_published_total"}),
		PublishDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "obstacle_etl", Name: "publish_duration_seconds"}),
		LastSyncCycle:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "obstacle_etl", Name: "last_sync_cycle"}),
		SyncInProgress:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "obstacle_etl", Name: "sync_in_progress"}),
	}
}
