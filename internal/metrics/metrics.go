package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Upload results
const (
	UploadSuccess = "success"
	UploadNoFile  = "no_file"
	UploadFailed  = "failed"
)

// Metrics holds all Prometheus metrics for the builder
type Metrics struct {
	// Template counters
	TemplatesCreatedTotal  prometheus.Counter
	TemplatesUpdatedTotal  prometheus.Counter
	TemplatesRenderedTotal prometheus.Counter
	StoreErrorsTotal       *prometheus.CounterVec

	// Image uploads
	ImageUploadsTotal          *prometheus.CounterVec
	ImageUploadBytes           prometheus.Histogram
	ImageUploadDurationSeconds prometheus.Histogram

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// System metrics
	UptimeSeconds prometheus.Gauge
	Goroutines    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TemplatesCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "emailbuilder_templates_created_total",
				Help: "Total number of templates saved",
			},
		),
		TemplatesUpdatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "emailbuilder_templates_updated_total",
				Help: "Total number of templates edited",
			},
		),
		TemplatesRenderedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "emailbuilder_templates_rendered_total",
				Help: "Total number of HTML downloads produced",
			},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailbuilder_store_errors_total",
				Help: "Total number of failed template store operations",
			},
			[]string{"operation"},
		),

		ImageUploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailbuilder_image_uploads_total",
				Help: "Total number of image uploads by result",
			},
			[]string{"provider", "result"},
		),
		ImageUploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "emailbuilder_image_upload_bytes",
				Help:    "Size of uploaded images in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KB .. 16MB
			},
		),
		ImageUploadDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "emailbuilder_image_upload_duration_seconds",
				Help:    "Time spent forwarding an image to the hosted service",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),

		// API metrics
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailbuilder_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emailbuilder_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailbuilder_api_errors_total",
				Help: "Total number of API errors",
			},
			[]string{"error_type"},
		),

		// System metrics
		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "emailbuilder_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "emailbuilder_goroutines",
				Help: "Number of active goroutines",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.TemplatesCreatedTotal,
		m.TemplatesUpdatedTotal,
		m.TemplatesRenderedTotal,
		m.StoreErrorsTotal,
		m.ImageUploadsTotal,
		m.ImageUploadBytes,
		m.ImageUploadDurationSeconds,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.UptimeSeconds,
		m.Goroutines,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// IncTemplatesCreated increments the created template counter
func IncTemplatesCreated() {
	if m := Global(); m != nil {
		m.TemplatesCreatedTotal.Inc()
	}
}

// IncTemplatesUpdated increments the updated template counter
func IncTemplatesUpdated() {
	if m := Global(); m != nil {
		m.TemplatesUpdatedTotal.Inc()
	}
}

// IncTemplatesRendered increments the render counter
func IncTemplatesRendered() {
	if m := Global(); m != nil {
		m.TemplatesRenderedTotal.Inc()
	}
}

// IncStoreErrors increments the store error counter for an operation
func IncStoreErrors(operation string) {
	if m := Global(); m != nil {
		m.StoreErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// ObserveImageUpload records one upload attempt
func ObserveImageUpload(provider, result string, size int64, seconds float64) {
	m := Global()
	if m == nil {
		return
	}
	m.ImageUploadsTotal.WithLabelValues(provider, result).Inc()
	if result == UploadNoFile {
		return
	}
	m.ImageUploadBytes.Observe(float64(size))
	m.ImageUploadDurationSeconds.Observe(seconds)
}
