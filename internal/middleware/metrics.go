package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	metricsOnce sync.Once
	metrics     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector for serviceName.
// The collector registers with the default Prometheus registry, so it is
// created once and shared by every app built in the process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		metrics = fiberprometheus.New(serviceName)
	})
	return metrics
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
