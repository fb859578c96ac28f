package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_probability"

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	// labels: status={live,partial,simulated}
	Analyses *prometheus.CounterVec
	// labels: family, outcome={success,error}
	UpstreamFetches  *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	// labels: dimension, origin={LIVE,SYNTHETIC}
	MetricOrigins *prometheus.CounterVec
	// labels: source={popular,cache,mapbox,google}, outcome={hit,miss,error}
	GeocodeLookups *prometheus.CounterVec
	UpstreamUp     prometheus.Gauge
}

func newCollectors() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Weather probability analyses by resulting status.",
		}, []string{"status"}),
		UpstreamFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Probability service requests by metric family and outcome.",
		}, []string{"family", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Probability service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"family"}),
		MetricOrigins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metric_origins_total",
			Help:      "Merged record dimensions by origin.",
		}, []string{"dimension", "origin"}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Location lookups by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_up",
			Help:      "1 when the last probability service check succeeded, 0 otherwise.",
		}),
	}
}

// NewMetrics creates the collectors and registers them with the default registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.Analyses,
		m.UpstreamFetches,
		m.UpstreamDuration,
		m.MetricOrigins,
		m.GeocodeLookups,
		m.UpstreamUp,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build as many
// as they need.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}
