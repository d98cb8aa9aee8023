// ABOUTME: Prometheus implementation of the polling metrics hooks
// ABOUTME: Counts status checks by outcome and tracks the number of active pollers

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "capture"

// PollMetrics implements interfaces.PollMetrics with Prometheus collectors
type PollMetrics struct {
	registry  *prometheus.Registry
	completed *prometheus.CounterVec
	failed    prometheus.Counter
	active    prometheus.Gauge
}

// NewPollMetrics registers the polling collectors on a fresh registry
func NewPollMetrics() *PollMetrics {
	m := &PollMetrics{
		registry: prometheus.NewRegistry(),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_checks_total",
			Help:      "Status checks that returned a response, by reported job status.",
		}, []string{"status"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_check_failures_total",
			Help:      "Status checks that failed before a response was received.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_pollers",
			Help:      "Jobs currently being polled.",
		}),
	}

	m.registry.MustRegister(m.completed, m.failed, m.active)
	return m
}

// PollCompleted records one status check and its outcome status
func (m *PollMetrics) PollCompleted(status string) {
	m.completed.WithLabelValues(status).Inc()
}

// PollFailed records one failed status check
func (m *PollMetrics) PollFailed() {
	m.failed.Inc()
}

// ActivePollers sets the number of jobs being polled
func (m *PollMetrics) ActivePollers(n int) {
	m.active.Set(float64(n))
}

// Registry exposes the registry so other collectors can be added
func (m *PollMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *PollMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
