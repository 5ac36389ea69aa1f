// Package observability defines the Prometheus metrics exposed at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the campground API.
type Metrics struct {
	// HTTPRequestDuration observes request latency per route.
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route, status

	// External-service call metrics.
	ExternalRequests   *prometheus.CounterVec   // labels: service={geocode,upload}, outcome={success,error,empty}
	ExternalDuration   *prometheus.HistogramVec // labels: service={geocode,upload}
	CampgroundsCreated prometheus.Counter
	CampgroundsDeleted prometheus.Counter
}

// NewMetrics creates metrics and registers them with the given registerer.
// Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campground_api",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by method, route, and status.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
		ExternalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campground_api",
			Name:      "external_requests_total",
			Help:      "Calls to collaborating services by outcome.",
		}, []string{"service", "outcome"}),
		ExternalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campground_api",
			Name:      "external_request_duration_seconds",
			Help:      "Duration of geocode and upload round-trips.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service"}),
		CampgroundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campground_api",
			Name:      "campgrounds_created_total",
			Help:      "Total campgrounds successfully created.",
		}),
		CampgroundsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campground_api",
			Name:      "campgrounds_deleted_total",
			Help:      "Total campgrounds successfully deleted.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestDuration,
		m.ExternalRequests,
		m.ExternalDuration,
		m.CampgroundsCreated,
		m.CampgroundsDeleted,
	)
	return m
}

// NewMetricsForTesting creates metrics on a private registry so tests can
// construct clients without tripping duplicate-registration panics.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
