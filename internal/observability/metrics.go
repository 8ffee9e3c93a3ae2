package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "camels"

// Metrics holds the Prometheus counters, histograms, and gauges for dataset
// curation.
type Metrics struct {
	// Station record metrics.
	SeriesSaved         prometheus.Counter
	SeriesRows          prometheus.Histogram
	ValidationFailures  *prometheus.CounterVec // labels: rule
	ExtraColumnWarnings prometheus.Counter
	MetadataUpserts     *prometheus.CounterVec // labels: mode={create,append,replace,rewrite}

	// Mapping metrics.
	MappingRegistrations *prometheus.CounterVec // labels: region
	MappingEntries       prometheus.Gauge

	// Import pipeline metrics.
	StationsExtracted       prometheus.Counter
	StationsImported        prometheus.Counter
	ImportErrors            prometheus.Counter
	EventsPublished         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SeriesSaved,
		m.SeriesRows,
		m.ValidationFailures,
		m.ExtraColumnWarnings,
		m.MetadataUpserts,
		m.MappingRegistrations,
		m.MappingEntries,
		m.StationsExtracted,
		m.StationsImported,
		m.ImportErrors,
		m.EventsPublished,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SeriesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_saved_total",
			Help:      "Total station series written.",
		}),
		SeriesRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "series_rows",
			Help:      "Hourly rows per saved series.",
			Buckets:   []float64{24, 24 * 30, 24 * 365, 24 * 365 * 5, 24 * 365 * 10, 24 * 365 * 20, 24 * 365 * 40},
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected series by violated rule.",
		}, []string{"rule"}),
		ExtraColumnWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extra_column_warnings_total",
			Help:      "Saved series that carried unrecognized columns.",
		}),
		MetadataUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_upserts_total",
			Help:      "Global metadata index writes by mode.",
		}, []string{"mode"}),
		MappingRegistrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapping_registrations_total",
			Help:      "New provider ID registrations by region.",
		}, []string{"region"}),
		MappingEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapping_entries",
			Help:      "Entries currently in the NUTS mapping.",
		}),
		StationsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_stations_extracted_total",
			Help:      "Station inputs found in the input directory.",
		}),
		StationsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_stations_imported_total",
			Help:      "Station inputs imported successfully.",
		}),
		ImportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_errors_total",
			Help:      "Station inputs skipped because of an error.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Change events handed to the event sink.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "import_running",
			Help:      "1 while an import is in progress, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_batch_size",
			Help:      "Station inputs per import batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_batch_duration_seconds",
			Help:      "Duration of one import batch.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}
