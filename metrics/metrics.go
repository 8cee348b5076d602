package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RoutedRequests counts requests delegated to a handler collection
	RoutedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_api_routed_requests_total",
		Help: "The number of requests delegated to each handler collection",
	}, []string{"collection"})

	// ErrorResponses counts normalized error responses by status code and kind
	ErrorResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_api_error_responses_total",
		Help: "The number of normalized error responses sent to clients",
	}, []string{"status", "kind"})

	// CommittedFailures counts handler failures raised after the response was already started
	CommittedFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_api_committed_failures_total",
		Help: "The number of handler failures that could not be normalized because the response was already committed",
	})

	// RecoveredPanics counts panics recovered by the dispatch shell
	RecoveredPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_api_recovered_panics_total",
		Help: "The number of panics recovered while serving requests",
	})

	// RejectedBodies counts request bodies rejected by the JSON body parser
	RejectedBodies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_api_rejected_bodies_total",
		Help: "The number of request bodies rejected before routing",
	}, []string{"reason"})

	// StaticFileSize records the size of files served from the public directory
	StaticFileSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketplace_api_static_file_size_bytes",
		Help:    "The size in bytes of files served from the public directory",
		Buckets: prometheus.ExponentialBuckets(512, 4, 8),
	})

	// UpstreamRequests counts round trips to upstream collections by status
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_api_upstream_requests_total",
		Help: "The number of requests proxied to upstream collection services",
	}, []string{"collection", "status_code"})

	// UpstreamDuration records upstream round trip durations
	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "marketplace_api_upstream_request_duration_seconds",
		Help: "Upstream collection service request duration",
	}, []string{"collection", "status_code"})

	// UpstreamTraceDuration records the duration of each round trip phase
	UpstreamTraceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_api_upstream_trace_duration_seconds",
		Help:    "Upstream collection service round trip phase durations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"collection", "request_stage"})

	// RateLimitSourceIPCacheRequests is the number of source IP rate limiter cache lookups
	RateLimitSourceIPCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_api_rate_limit_source_ip_cache_requests",
		Help: "The number of source IP rate limiter cache requests by op and cache state",
	}, []string{"op", "cache"})

	// RateLimitSourceIPCachedEntries is the number of entries in the source IP rate limiter cache
	RateLimitSourceIPCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "marketplace_api_rate_limit_source_ip_cached_entries",
		Help: "The number of entries in the source IP rate limiter cache",
	}, []string{"op"})

	// RateLimitSourceIPBlockedCount counts requests rejected by the source IP rate limiter
	RateLimitSourceIPBlockedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_api_rate_limit_source_ip_blocked_count",
		Help: "The number of requests rejected by the source IP rate limiter",
	})

	// LimitListenerMaxConns is the maximum number of connections accepted at once
	LimitListenerMaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketplace_api_limit_listener_max_conns",
		Help: "The maximum number of connections the listeners accept at once",
	})

	// LimitListenerConcurrentConns is the number of open connections
	LimitListenerConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketplace_api_limit_listener_concurrent_conns",
		Help: "The number of connections currently held by the listeners",
	})

	// LimitListenerWaitingConns is the number of connections waiting for a free slot
	LimitListenerWaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "marketplace_api_limit_listener_waiting_conns",
		Help: "The number of connections waiting for a free slot",
	})
)

// MustRegister collectors with the Prometheus client
func MustRegister() {
	prometheus.MustRegister(
		RoutedRequests,
		ErrorResponses,
		CommittedFailures,
		RecoveredPanics,
		RejectedBodies,
		StaticFileSize,
		UpstreamRequests,
		UpstreamDuration,
		UpstreamTraceDuration,
		RateLimitSourceIPCacheRequests,
		RateLimitSourceIPCachedEntries,
		RateLimitSourceIPBlockedCount,
		LimitListenerMaxConns,
		LimitListenerConcurrentConns,
		LimitListenerWaitingConns,
	)
}
