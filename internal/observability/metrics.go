package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	AnalyzeRequests  *prometheus.CounterVec // labels: outcome={success,client_error,server_error}
	AnalyzeDuration  prometheus.Histogram
	PointsPerRequest prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge

	// Collaborator metrics.
	WeatherRequests *prometheus.CounterVec // labels: outcome={success,error}
	ChatRequests    *prometheus.CounterVec // labels: outcome={success,error}

	// Result publishing.
	ResultsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalyzeRequests,
		m.AnalyzeDuration,
		m.PointsPerRequest,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.WeatherRequests,
		m.ChatRequests,
		m.ResultsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalyzeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "analyze_requests_total",
			Help:      "Analyze requests by outcome.",
		}, []string{"outcome"}),
		AnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uhi",
			Name:      "analyze_duration_seconds",
			Help:      "Duration of a complete city analysis.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PointsPerRequest: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uhi",
			Name:      "points_per_request",
			Help:      "Number of sample points per analysis.",
			Buckets:   []float64{10, 50, 100, 200, 300, 500, 1000},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "geocode_requests_total",
			Help:      "Reverse-geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "uhi",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "uhi",
			Name:      "geocode_enabled",
			Help:      "1 when reverse geocoding is enabled, 0 otherwise.",
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "weather_requests_total",
			Help:      "Ambient temperature lookups by outcome.",
		}, []string{"outcome"}),
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "chat_requests_total",
			Help:      "Chat/generation requests by outcome.",
		}, []string{"outcome"}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "results_published_total",
			Help:      "Analysis summaries published to the results topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uhi",
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish analysis summaries.",
		}),
	}
}
