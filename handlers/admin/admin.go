package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/query"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// AdminHandler serves the admin console: stats, directories, user
// management and upload moderation
type AdminHandler struct {
	adminService  *services.AdminService
	uploadService *services.UploadService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService, uploadService *services.UploadService) *AdminHandler {
	return &AdminHandler{adminService: adminService, uploadService: uploadService}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, stats)
}

// parseParams reads the shared directory query parameters
func parseParams(c *fiber.Ctx) (query.Params, error) {
	var p query.Params
	if err := c.QueryParser(&p); err != nil {
		return p, err
	}
	p.Normalize()
	return p, nil
}
