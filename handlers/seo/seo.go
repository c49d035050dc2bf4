package seo

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// SEOHandler exposes SEO suggestions to authors
type SEOHandler struct {
	seoService *services.SEOService
	validator  *validation.Validator
}

// NewSEOHandler creates a new SEO handler
func NewSEOHandler(seoService *services.SEOService) *SEOHandler {
	return &SEOHandler{seoService: seoService, validator: validation.NewValidator()}
}

// SuggestRequest is the text to derive SEO metadata from
type SuggestRequest struct {
	Text string `json:"text" validate:"required,max=200000"`
}

// Suggest handles POST /api/v1/seo/suggest
func (h *SEOHandler) Suggest(c *fiber.Ctx) error {
	var req SuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.Check(req); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, h.seoService.Suggest(c.UserContext(), req.Text))
}
