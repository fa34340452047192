// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tubegrab"

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, which keeps test wiring free of registry collisions.
type Metrics struct {
	// Format resolution metrics
	FormatRequests  prometheus.Counter
	FormatFallbacks prometheus.Counter

	// Download metrics
	DownloadsStarted    prometheus.Counter
	DownloadsCompleted  prometheus.Counter
	DownloadsFailed     prometheus.Counter
	DownloadsCancelled  prometheus.Counter
	DownloadsInProgress prometheus.Gauge
	DownloadDuration    prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all application metrics.
func New() *Metrics {
	return &Metrics{
		FormatRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "formats",
			Name:      "requests_total",
			Help:      "Total number of format resolution requests",
		}),
		FormatFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "formats",
			Name:      "fallback_total",
			Help:      "Total number of format resolutions served from the fallback list",
		}),

		DownloadsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "started_total",
			Help:      "Total number of download operations started",
		}),
		DownloadsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "completed_total",
			Help:      "Total number of download operations completed successfully",
		}),
		DownloadsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "failed_total",
			Help:      "Total number of download operations that failed",
		}),
		DownloadsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "cancelled_total",
			Help:      "Total number of download operations cancelled",
		}),
		DownloadsInProgress: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "in_progress",
			Help:      "Number of download operations currently in progress",
		}),
		DownloadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "duration_seconds",
			Help:      "Histogram of download operation duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordFormatRequest increments the format request counter.
func (m *Metrics) RecordFormatRequest() {
	if m == nil {
		return
	}

	m.FormatRequests.Inc()
}

// RecordFormatFallback increments the format fallback counter.
func (m *Metrics) RecordFormatFallback() {
	if m == nil {
		return
	}

	m.FormatFallbacks.Inc()
}

// RecordDownloadStarted records a started download operation.
func (m *Metrics) RecordDownloadStarted() {
	if m == nil {
		return
	}

	m.DownloadsStarted.Inc()
	m.DownloadsInProgress.Inc()
}

// RecordDownloadCompleted records a completed download operation.
func (m *Metrics) RecordDownloadCompleted() {
	if m == nil {
		return
	}

	m.DownloadsCompleted.Inc()
	m.DownloadsInProgress.Dec()
}

// RecordDownloadFailed records a failed download operation.
func (m *Metrics) RecordDownloadFailed() {
	if m == nil {
		return
	}

	m.DownloadsFailed.Inc()
	m.DownloadsInProgress.Dec()
}

// RecordDownloadCancelled records a cancelled download operation.
func (m *Metrics) RecordDownloadCancelled() {
	if m == nil {
		return
	}

	m.DownloadsCancelled.Inc()
	m.DownloadsInProgress.Dec()
}

// DownloadTimer returns a function to record download duration.
func (m *Metrics) DownloadTimer() func() {
	if m == nil {
		return func() {}
	}

	start := time.Now()

	return func() {
		m.DownloadDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
