package handler

import "github.com/gofiber/fiber/v2"

// LivenessHandler answers 200 for as long as the process can serve HTTP.
func LivenessHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ReadinessHandler reports whether the instance should receive traffic.
// ready is consulted on every request; it turns false once shutdown has begun
// or a dependency check fails.
func ReadinessHandler(ready func() bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ready() {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service not ready")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready"})
	}
}
