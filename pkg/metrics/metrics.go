package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the API server.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method, and status.",
	}, []string{"route", "method", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request.
func (h *HTTPMetrics) Observe(route, method, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(normalizeLabel(route), method).Observe(elapsed.Seconds())
	h.requests.WithLabelValues(normalizeLabel(route), method, status).Inc()
}

// ListingCacheMetrics tracks the advisory cache in front of product listings.
type ListingCacheMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewListingCacheMetrics registers the cache counters on the provided registerer.
func NewListingCacheMetrics(reg prometheus.Registerer) *ListingCacheMetrics {
	if reg == nil {
		return &ListingCacheMetrics{}
	}
	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listing_cache_hits_total",
		Help: "Product listing responses served from cache.",
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listing_cache_misses_total",
		Help: "Product listing responses that required a database query.",
	})
	reg.MustRegister(hits, misses)
	return &ListingCacheMetrics{hits: hits, misses: misses}
}

// IncHit increments the cache hit counter.
func (c *ListingCacheMetrics) IncHit() {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.Inc()
}

// IncMiss increments the cache miss counter.
func (c *ListingCacheMetrics) IncMiss() {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
