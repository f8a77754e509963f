package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snippets_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snippets_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snippets_backend_request_duration_seconds",
			Help:    "Latency of calls to the remote backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	backendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snippets_backend_errors_total",
			Help: "Backend calls that failed, by operation and kind",
		},
		[]string{"operation", "kind"},
	)

	PostsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snippets_posts_total",
		Help: "Number of posts at the last stats collection.",
	})

	ProfilesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snippets_profiles_total",
		Help: "Number of profiles at the last stats collection.",
	})
)

// RecordBackendError counts one failed backend call by operation and kind.
func RecordBackendError(operation, kind string) {
	backendErrors.WithLabelValues(operation, kind).Inc()
}
