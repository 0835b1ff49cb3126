package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PostsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "blog", Name: "posts_created_total", Help: "Number of posts persisted."},
	)
	AuthoringRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "authoring_rejected_total", Help: "Create-post attempts rejected before storage, by reason."},
		[]string{"reason"},
	)
	ViewCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "view_cache_lookups_total", Help: "Post view cache lookups by result."},
		[]string{"view", "result"},
	)
	ViewCacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "view_cache_invalidations_total", Help: "Post view invalidation signals by outcome."},
		[]string{"outcome"},
	)
	EventSubscriberFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "event_subscriber_failures_total", Help: "Failed post event deliveries by subscriber."},
		[]string{"subscriber"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "blog", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by route."},
		[]string{"route"},
	)
)

// RegisterCollectors registers every collector once on reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		PostsCreated,
		AuthoringRejected,
		ViewCacheLookups,
		ViewCacheInvalidations,
		EventSubscriberFailures,
		RateLimitRejected,
	)
}
