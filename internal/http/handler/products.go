package handler

import "github.com/gofiber/fiber/v2"

// RegisterProductRoutes attaches the product-service route table.
//
// Routes match in registration order and the wildcard comes first, so
// GET /api/products/stats is answered by ProductData. ProductStats stays
// registered behind it; swapping the two lines would make it reachable.
// The wildcard matches an empty remainder too, so GET /api/products is
// also answered by ProductData.
func RegisterProductRoutes(r fiber.Router) {
	r.Get("/api/products/*", ProductData())
	r.Get("/api/products/stats", ProductStats())
}

// ProductData godoc
// @Summary  Product data
// @Tags     products
// @Produce  json
// @Param    path path string true "any product path"
// @Success  200 {object} model.Message
// @Router   /api/products/{path} [get]
func ProductData() fiber.Handler {
	return staticMessage("Product data")
}

// ProductStats answers GET /api/products/stats when it is reached.
// @Summary  Product statistics
// @Description Shadowed by the wildcard route, which is registered first.
// @Tags     products
// @Produce  json
// @Success  200 {object} model.Message
// @Router   /api/products/stats [get]
func ProductStats() fiber.Handler {
	return staticMessage("Product stats")
}
