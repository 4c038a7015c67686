package fixture

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered on a per-server registry so several servers can run
// in one process
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	faults   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apichain_fixture_requests_total",
				Help: "Total number of fixture requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apichain_fixture_request_duration_seconds",
				Help:    "Duration of fixture requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apichain_fixture_faults_total",
				Help: "Total number of forced failures",
			},
			[]string{"method", "path"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.faults)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
