package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks the number of outbound API calls to the data platform.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdp_api_requests_total",
			Help: "Total number of RDP API requests made (by endpoint, method, and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration measures the duration of outbound RDP API calls.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rdp_api_request_duration_seconds",
			Help:    "Duration of RDP API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint", "method"},
	)

	// AuthFailures counts token acquisitions that did not yield a usable token, per call path.
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdp_auth_failures_total",
			Help: "Number of failed RDP authentications by call path.",
		},
		[]string{"path"},
	)
)

// IncRequest increments the RDP API request counter.
func IncRequest(endpoint, method, status string) {
	RequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// IncAuthFailure increments the authentication failure counter for a call path.
func IncAuthFailure(path string) {
	AuthFailures.WithLabelValues(path).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

// WriteTextfile writes the default registry in the text exposition format to path,
// for pickup by the node exporter textfile collector. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
