package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_lookups_total",
			Help: "Query cache lookups by resource and result (hit, miss)",
		},
		[]string{"resource", "result"},
	)

	CacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_invalidations_total",
			Help: "Query cache invalidations by resource",
		},
		[]string{"resource"},
	)

	ChangeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_change_events_total",
			Help: "Change events by table and direction (published, received)",
		},
		[]string{"table", "direction"},
	)

	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_uploads_total",
			Help: "File uploads by target (cdn, bucket) and outcome",
		},
		[]string{"target", "outcome"},
	)
)

var initOnce sync.Once

// Init registers metrics with Prometheus. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(CacheInvalidations)
		prometheus.MustRegister(ChangeEvents)
		prometheus.MustRegister(Uploads)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
