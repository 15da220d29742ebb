// Package metrics exposes Prometheus collectors for monitoring sessions,
// presence detection and the auth forms.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and the mock server can each
// create their own without clashing on the global one.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsFailed    prometheus.Counter
	DetectionTicks    *prometheus.CounterVec
	AuthSubmissions   *prometheus.CounterVec
	VitalsLatency     prometheus.Histogram
	MockRequests      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalscan_sessions_started_total",
			Help: "Monitoring sessions that entered the countdown",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalscan_sessions_completed_total",
			Help: "Monitoring sessions that displayed results",
		}),
		SessionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitalscan_sessions_failed_total",
			Help: "Monitoring sessions whose backend call failed",
		}),
		DetectionTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalscan_detection_ticks_total",
			Help: "Presence poll ticks by outcome",
		}, []string{"outcome"}),
		AuthSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalscan_auth_submissions_total",
			Help: "Auth form submissions by form and outcome",
		}, []string{"form", "outcome"}),
		VitalsLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vitalscan_vitals_request_seconds",
			Help:    "Latency of the vitals processing request",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		MockRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalscan_mock_requests_total",
			Help: "Requests served by the mock backend",
		}, []string{"endpoint", "code"}),
	}

	m.registry.MustRegister(
		m.SessionsStarted,
		m.SessionsCompleted,
		m.SessionsFailed,
		m.DetectionTicks,
		m.AuthSubmissions,
		m.VitalsLatency,
		m.MockRequests,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDetection records one poll tick.
func (m *Metrics) ObserveDetection(present bool, err error) {
	if m == nil {
		return
	}
	outcome := "absent"
	switch {
	case err != nil:
		outcome = "error"
	case present:
		outcome = "present"
	}
	m.DetectionTicks.WithLabelValues(outcome).Inc()
}

// ObserveAuth records one auth form submission.
func (m *Metrics) ObserveAuth(form string, ok bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "success"
	}
	m.AuthSubmissions.WithLabelValues(form, outcome).Inc()
}

// SessionStarted records a session entering the countdown.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// ObserveSession records a finished submission and its latency.
func (m *Metrics) ObserveSession(ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.VitalsLatency.Observe(seconds)
	if ok {
		m.SessionsCompleted.Inc()
	} else {
		m.SessionsFailed.Inc()
	}
}

// ObserveMock records one mock backend request.
func (m *Metrics) ObserveMock(endpoint string, code int) {
	if m == nil {
		return
	}
	m.MockRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}
