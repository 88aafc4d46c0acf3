package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moviesearch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "provider_requests_total",
		Help:      "Total metadata provider calls by operation and result status.",
	}, []string{"operation", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "moviesearch",
		Name:      "provider_request_duration_seconds",
		Help:      "Metadata provider call duration in seconds.",
		Buckets:   []float64{0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "cache_hits_total",
		Help:      "Total number of response cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "cache_misses_total",
		Help:      "Total number of response cache misses.",
	})

	EnrichmentFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "enrichment_failures_total",
		Help:      "Detail lookups that failed and degraded to summary-only records.",
	})

	HistoryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "history_failures_total",
		Help:      "History notifications that failed and were swallowed.",
	})

	HistoryDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "moviesearch",
		Name:      "history_dropped_total",
		Help:      "History notifications dropped because the queue was full.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		EnrichmentFailuresTotal,
		HistoryFailuresTotal,
		HistoryDroppedTotal,
	)
}
