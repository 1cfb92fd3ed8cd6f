package gateway

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors on a private registry
// so multiple gateway instances (tests) never collide.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	reasons   *prometheus.CounterVec
	followUps prometheus.Counter
	duration  prometheus.Histogram
	backendUp prometheus.Gauge

	backendAvailable atomic.Bool
}

// NewMetrics creates the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floofbridge",
			Name:      "requests_total",
			Help:      "Handle requests by outcome.",
		}, []string{"outcome"}),
		reasons: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floofbridge",
			Name:      "decisions_total",
			Help:      "Engagement decisions by reason.",
		}, []string{"reason"}),
		followUps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "floofbridge",
			Name:      "follow_ups_total",
			Help:      "Scheduled follow-up messages.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floofbridge",
			Name:      "request_duration_seconds",
			Help:      "Handle request latency, inference included.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 45, 60},
		}),
		backendUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "floofbridge",
			Name:      "backend_up",
			Help:      "Whether the last inference backend probe succeeded.",
		}),
	}
	m.SetBackendUp(true)
	return m
}

// RecordRequest counts one handled request and its decision.
func (m *Metrics) RecordRequest(engaged bool, reason string, seconds float64) {
	outcome := "skipped"
	if engaged {
		outcome = "engaged"
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.reasons.WithLabelValues(reason).Inc()
	m.duration.Observe(seconds)
}

// RecordFollowUp counts one scheduled follow-up.
func (m *Metrics) RecordFollowUp() {
	m.followUps.Inc()
}

// SetBackendUp records the latest backend probe result. Called by the
// maintenance probe job and by the health endpoint.
func (m *Metrics) SetBackendUp(up bool) {
	m.backendAvailable.Store(up)
	if up {
		m.backendUp.Set(1)
	} else {
		m.backendUp.Set(0)
	}
}

// BackendUp returns the latest recorded probe result.
func (m *Metrics) BackendUp() bool {
	return m.backendAvailable.Load()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
