package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters and a histogram for served HTTP requests, a histogram
// for database queries, counters for blob uploads, authentication attempts
// and password reset emails.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	DBQueryDuration   *prometheus.HistogramVec
	BlobUploads       *prometheus.CounterVec
	BlobUploadedBytes prometheus.Counter
	AuthAttempts      *prometheus.CounterVec
	ResetEmails       *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_http_requests_total",
			Help: "Total number of handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_http_request_duration_seconds",
			Help:    "Duration of handled HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'get_employee', 'create_user'
		BlobUploads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_blob_uploads_total",
			Help: "Total number of photo uploads to the blob store.",
		}, []string{"status"}),
		BlobUploadedBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "athena_blob_uploaded_bytes_total",
			Help: "Total number of bytes written to the blob store.",
		}),
		AuthAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_auth_attempts_total",
			Help: "Total number of register, login and reset attempts by outcome.",
		}, []string{"action", "status"}),
		ResetEmails: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_reset_emails_total",
			Help: "Total number of password reset emails by delivery outcome.",
		}, []string{"status"}),
	}

	metrics.BlobUploads.WithLabelValues("success")
	metrics.BlobUploads.WithLabelValues("failure")
	metrics.ResetEmails.WithLabelValues("success")
	metrics.ResetEmails.WithLabelValues("failure")

	return metrics
}

// ObserveDB records the duration of the named query in seconds.
func (m *Metrics) ObserveDB(queryType string, seconds float64) {
	m.DBQueryDuration.WithLabelValues(queryType).Observe(seconds)
}
