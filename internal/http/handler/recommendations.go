package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"meshdemo/internal/service"
)

// RegisterRecommendationRoutes returns a route registrar bound to svc.
// POST is only registered for v2; on v1 the router answers it with 405
// before the body is read.
func RegisterRecommendationRoutes(svc service.RecommendationService) func(fiber.Router) {
	return func(r fiber.Router) {
		r.Get("/recommendations", ListRecommendations(svc))
		if svc.Version() == "v2" {
			r.Post("/recommendations", PersonalizeRecommendations(svc))
		}
	}
}

// ListRecommendations answers GET /recommendations with the configured catalog.
// @Summary  List recommendations
// @Tags     recommendations
// @Produce  json
// @Success  200 {object} model.RecommendationList
// @Router   /recommendations [get]
func ListRecommendations(svc service.RecommendationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// PersonalizeRecommendations answers POST /recommendations (JSON object body).
// @Summary  Personalized recommendations (v2 only)
// @Tags     recommendations
// @Accept   json
// @Produce  json
// @Param    preferences body object true "user preferences, userId is used in the first title"
// @Success  200 {object} model.PersonalizedRecommendations
// @Failure  400 {object} errorPayload
// @Failure  405 {object} errorPayload
// @Router   /recommendations [post]
func PersonalizeRecommendations(svc service.RecommendationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prefs, err := decodePreferences(c.Body())
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}

		res, err := svc.Personalize(c.UserContext(), prefs)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrPersonalizationUnsupported):
				return writeError(c, fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			case errors.Is(err, service.ErrPreferencesRequired):
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(res)
	}
}

// decodePreferences parses body as a JSON object, keeping numbers as written.
func decodePreferences(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var prefs map[string]any
	if err := dec.Decode(&prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, errors.New("body is not a JSON object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return prefs, nil
}
