package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Audit pipeline metrics
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_audits_total",
			Help: "Total number of audit runs",
		},
		[]string{"result"},
	)

	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stock_audit_duration_seconds",
			Help:    "Audit run duration in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of feed fetches by source",
		},
		[]string{"source", "result"},
	)

	PageChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_checks_total",
			Help: "Total number of product page checks by resulting status",
		},
		[]string{"status"},
	)

	PageCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "page_check_duration_seconds",
			Help:    "Product page check duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Application health metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"version", "cache_backend"},
	)
)

// Initialize metrics with default values
func Init(version, cacheBackend string) {
	ApplicationInfo.WithLabelValues(version, cacheBackend).Set(1)
}
