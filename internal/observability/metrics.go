package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// location provider, the event query controller, and the geocoder.
type Metrics struct {
	// Location acquisition metrics.
	Acquisitions        *prometheus.CounterVec // labels: source, outcome={success,failure}
	AcquisitionFailures *prometheus.CounterVec // labels: code={permission_denied,position_unavailable,timeout,unknown}
	ReadingPresent      prometheus.Gauge

	// Event query metrics.
	QueryIssued     *prometheus.CounterVec // labels: outcome={ready,error,superseded}
	QueryDuration   prometheus.Histogram
	ControllerState prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "location_acquisitions_total",
			Help:      help("Location acquisition attempts by platform and outcome."),
		}, []string{"source", "outcome"}),
		AcquisitionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "location_acquisition_failures_total",
			Help:      help("Failed location acquisitions by position error code."),
		}, []string{"code"}),
		ReadingPresent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "event_finder",
			Name:      "location_reading_present",
			Help:      help("1 when a coordinate reading is known, 0 otherwise."),
		}),
		QueryIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "event_queries_total",
			Help:      help("Event queries issued by the controller, by outcome."),
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "event_finder",
			Name:      "event_query_duration_seconds",
			Help:      help("Duration of event queries against the events API."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ControllerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "event_finder",
			Name:      "event_controller_state",
			Help:      help("Controller state: 0 uninitialized, 1 loading, 2 ready, 3 error."),
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "geocode_requests_total",
			Help:      help("Geocoding API requests by method and outcome."),
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_finder",
			Name:      "geocode_cache_total",
			Help:      help("Geocoding cache lookups by method and result."),
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "event_finder",
			Name:      "geocode_api_duration_seconds",
			Help:      help("Mapbox API request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.Acquisitions,
		m.AcquisitionFailures,
		m.ReadingPresent,
		m.QueryIssued,
		m.QueryDuration,
		m.ControllerState,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
