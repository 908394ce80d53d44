package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/auth-portal/internal/metrics"
)

// MetricsMiddleware observes request latency by method and status.
func MetricsMiddleware(recorder metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		recorder.RecordRequest(c.Method(), responseStatus(c, err), time.Since(start))

		return err
	}
}
