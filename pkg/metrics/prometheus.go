// Package metrics provides Prometheus metrics for the enrolld admission service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the enrolld service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Reconciliation metrics
	uploadsTotal        *prometheus.CounterVec
	uploadRows          prometheus.Counter
	applicationsDeleted prometheus.Counter
	reconcileDuration   prometheus.Histogram
	reconcileErrors     prometheus.Counter

	// Allocation metrics
	allocationRuns     prometheus.Counter
	allocationDuration prometheus.Histogram
	admittedTotal      *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "enrolld",
		subsystem:        "admission",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.uploadsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "uploads_total",
			Help:      "Total number of competition-list uploads reconciled, by program",
		},
		[]string{"program"},
	)

	m.uploadRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upload_rows_total",
		Help:      "Total number of batch rows upserted during reconciliation",
	})

	m.applicationsDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "applications_deleted_total",
		Help:      "Total number of application rows deleted as absent from newer snapshots",
	})

	m.reconcileDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_duration_milliseconds",
		Help:      "Histogram of reconciliation transaction duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.reconcileErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_errors_total",
		Help:      "Total number of failed reconciliations (validation or store errors)",
	})

	m.allocationRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocation_runs_total",
		Help:      "Total number of admission allocation computations",
	})

	m.allocationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocation_duration_milliseconds",
		Help:      "Histogram of allocation computation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.admittedTotal = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "admitted_total",
			Help:      "Number of admitted applicants per program in the latest allocation",
		},
		[]string{"program"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordUpload increments the uploads counter for a program.
func RecordUpload(program string) {
	globalManager.uploadsTotal.WithLabelValues(program).Inc()
}

// RecordUploadRows adds to the upserted batch-row counter.
func RecordUploadRows(n int) {
	globalManager.uploadRows.Add(float64(n))
}

// RecordApplicationsDeleted adds to the deleted-applications counter.
func RecordApplicationsDeleted(n int) {
	globalManager.applicationsDeleted.Add(float64(n))
}

// RecordReconcileDuration records reconciliation latency in milliseconds.
func RecordReconcileDuration(latencyMs float64) {
	globalManager.reconcileDuration.Observe(latencyMs)
}

// RecordReconcileError increments the failed-reconciliation counter.
func RecordReconcileError() {
	globalManager.reconcileErrors.Inc()
}

// RecordAllocationRun increments the allocation-run counter.
func RecordAllocationRun() {
	globalManager.allocationRuns.Inc()
}

// RecordAllocationDuration records allocation latency in milliseconds.
func RecordAllocationDuration(latencyMs float64) {
	globalManager.allocationDuration.Observe(latencyMs)
}

// UpdateAdmitted sets the latest admitted count for a program.
func UpdateAdmitted(program string, count int) {
	globalManager.admittedTotal.WithLabelValues(program).Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
