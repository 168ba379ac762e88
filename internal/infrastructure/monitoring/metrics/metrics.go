// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics instruments analysis runs.
type PipelineMetrics struct {
	registry *prometheus.Registry

	analysisTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPipelineMetrics builds and registers the pipeline collectors on a fresh
// registry.
func NewPipelineMetrics() *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		analysisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenderwise",
			Name:      "analysis_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"outcome"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tenderwise",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenderwise",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenderwise",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(m.analysisTotal, m.analysisDuration, m.httpRequests, m.httpDuration)
	return m
}

// ObserveAnalysis records one analysis run. A zero elapsed only counts the
// outcome.
func (m *PipelineMetrics) ObserveAnalysis(outcome string, elapsed time.Duration) {
	m.analysisTotal.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.analysisDuration.Observe(elapsed.Seconds())
	}
}

// ObserveHTTP records one handled HTTP request.
func (m *PipelineMetrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
