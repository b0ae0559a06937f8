package middleware

import (
	"sync"

	"yatube/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector. The collectors
// register with the default registry, so every server shares one instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records HTTP metrics for every request.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}

// PageCacheMetrics counts cache hits and misses reported by the cache
// middleware through its X-Cache header.
func PageCacheMetrics(route string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		result := c.GetRespHeader("X-Cache")
		if result == "" {
			result = "bypass"
		}
		observability.PageCacheRequests.WithLabelValues(route, result).Inc()
		return err
	}
}
