package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"meshdemo/internal/http/middleware"
	"meshdemo/internal/model"
	"meshdemo/internal/service"
)

// RegisterOrderProcessingRoutes returns the order-processing route table bound to svc.
func RegisterOrderProcessingRoutes(svc service.OrderService) func(fiber.Router) {
	return func(r fiber.Router) {
		r.Post("/api/orders", ProcessOrder(svc))
		r.Get("/api/orders/:orderId", GetOrder(svc))
	}
}

// ProcessOrder godoc
// @Summary  Place and process an order
// @Description Stores the order, checks inventory per item, then charges the total.
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    order body model.OrderRequest true "order to place"
// @Success  201 {object} model.OrderResponse "order completed"
// @Failure  400 {object} errorPayload
// @Failure  422 {object} model.OrderResponse "rejected by inventory or payment"
// @Failure  502 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /api/orders [post]
func ProcessOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.OrderRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON order")
		}

		res, err := svc.ProcessOrder(c.UserContext(), req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidOrder):
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
			case errors.Is(err, service.ErrDependencyFailed):
				return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "a downstream service failed")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		res.RequestID = middleware.RequestIDFrom(c)
		status := fiber.StatusCreated
		if res.Status != model.OrderStatusCompleted {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(res)
	}
}

// GetOrder godoc
// @Summary  Get an order
// @Tags     orders
// @Produce  json
// @Param    orderId path string true "order ID (UUID)"
// @Success  200 {object} model.Order
// @Failure  404 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /api/orders/{orderId} [get]
func GetOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := svc.GetOrder(c.UserContext(), c.Params("orderId"))
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) || errors.Is(err, service.ErrOrderIDRequired) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "order not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(order)
	}
}
