package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "limpeza",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "limpeza",
			Name:      "list_cache_lookups_total",
			Help:      "List cache lookups by outcome (hit or miss).",
		},
		[]string{"outcome"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "limpeza",
			Name:      "exports_total",
			Help:      "Export downloads by format.",
		},
		[]string{"format"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, cacheLookups, exports)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncCacheHit records a list cache hit.
func IncCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

// IncCacheMiss records a list cache miss.
func IncCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

// IncExport records an export in the given format (csv or xlsx).
func IncExport(format string) {
	exports.WithLabelValues(format).Inc()
}
