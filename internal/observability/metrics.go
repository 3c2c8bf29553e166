package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_history"

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	// Upstream provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: upstream, outcome={success,error,rejected}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream

	// Request lifecycle metrics.
	RequestsCreated  prometheus.Counter
	RequestsUpdated  *prometheus.CounterVec // labels: refetch={true,false}
	RequestsDeleted  prometheus.Counter
	SnapshotsCreated prometheus.Counter

	// Export metrics.
	ExportsRendered *prometheus.CounterVec // labels: format
	ExportRows      prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all service metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RequestsCreated,
		m.RequestsUpdated,
		m.RequestsDeleted,
		m.SnapshotsCreated,
		m.ExportsRendered,
		m.ExportRows,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics so that tests may build
// as many instances as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),
		RequestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "Weather requests created.",
		}),
		RequestsUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_updated_total",
			Help:      "Weather requests updated, by whether the weather was re-fetched.",
		}, []string{"refetch"}),
		RequestsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_deleted_total",
			Help:      "Weather requests deleted.",
		}),
		SnapshotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_created_total",
			Help:      "Weather snapshots persisted.",
		}),
		ExportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_rendered_total",
			Help:      "Exports rendered by format.",
		}, []string{"format"}),
		ExportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_rows",
			Help:      "Number of records per export.",
			Buckets:   []float64{0, 1, 10, 50, 100, 250, 500},
		}),
	}
}
