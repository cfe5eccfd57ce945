// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. Construct it once per registry.
type Metrics struct {
	httpRequestDuration *prometheus.HistogramVec
	authAttempts        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "altera_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		authAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "altera_auth_attempts_total",
				Help: "Total register/login attempts by outcome",
			},
			[]string{"event", "outcome"},
		),
	}
	reg.MustRegister(m.httpRequestDuration, m.authAttempts)
	return m
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}

// RecordAuthAttempt counts a register or login attempt.
func (m *Metrics) RecordAuthAttempt(event, outcome string) {
	m.authAttempts.WithLabelValues(event, outcome).Inc()
}
