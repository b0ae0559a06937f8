// Package observability holds Prometheus collectors and OpenTelemetry setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PageCacheRequests counts cached-page lookups by route and result (hit, miss, unreachable).
	PageCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_requests_total",
		Help: "Page cache lookups by route and result",
	}, []string{"route", "result"})

	// PageCacheClears counts explicit page cache resets.
	PageCacheClears = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_page_cache_clears_total",
		Help: "Total number of explicit page cache clears",
	})

	// ContentWrites counts successful writes by kind (post_create, post_edit, comment, follow, unfollow).
	ContentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_content_writes_total",
		Help: "Successful content writes by kind",
	}, []string{"kind"})

	// FormRejections counts form submissions that failed validation.
	FormRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_form_rejections_total",
		Help: "Form submissions rejected by validation",
	}, []string{"form"})
)
