package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Logger logs each HTTP request as one JSON line.
// Fields: request_id, method, path, status, latency (milliseconds, float).
// Server errors are logged at error level.
func Logger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := responseStatus(c, err)
		latency := float64(time.Since(start).Microseconds()) / 1000

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
			if err != nil {
				ev = ev.Err(err)
			}
		}

		ev.Str("request_id", RequestIDFrom(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", latency).
			Msg("request")

		return err
	}
}
