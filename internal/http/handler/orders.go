package handler

import (
	"github.com/gofiber/fiber/v2"

	"meshdemo/internal/model"
)

// RegisterOrderRoutes attaches the order-service route table.
func RegisterOrderRoutes(r fiber.Router) {
	r.Get("/api/orders/stats", OrderStats())
	r.Post("/api/orders", CreateOrder())
}

// OrderStats godoc
// @Summary  Order statistics
// @Tags     orders
// @Produce  json
// @Success  200 {object} model.Message
// @Router   /api/orders/stats [get]
func OrderStats() fiber.Handler {
	return staticMessage("Order stats")
}

// CreateOrder godoc
// @Summary  Create an order
// @Description The request body is not read.
// @Tags     orders
// @Produce  json
// @Success  200 {object} model.Message
// @Router   /api/orders [post]
func CreateOrder() fiber.Handler {
	return staticMessage("Order created")
}

func staticMessage(msg string) fiber.Handler {
	body := model.Message{Message: msg}
	return func(c *fiber.Ctx) error {
		return c.JSON(body)
	}
}
