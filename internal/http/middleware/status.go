package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// responseStatus resolves the status the client will see. Errors returned down the
// chain are only turned into a response by the global ErrorHandler after every
// middleware has returned, so the recorded status code is not final yet.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
