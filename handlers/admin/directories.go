package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// ListUsers handles GET /api/v1/admin/users?search=&role=&page=&limit=
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p, err := parseParams(c)
	if err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	users, total, err := h.adminService.ListUsers(c.UserContext(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, users, p.Page, p.Limit, total)
}

// ListModerators handles GET /api/v1/admin/moderators
func (h *AdminHandler) ListModerators(c *fiber.Ctx) error {
	p, err := parseParams(c)
	if err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	users, total, err := h.adminService.ListModerators(c.UserContext(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, users, p.Page, p.Limit, total)
}

// ListLessons handles GET /api/v1/admin/lessons?published=
func (h *AdminHandler) ListLessons(c *fiber.Ctx) error {
	p, err := parseParams(c)
	if err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	lessons, total, err := h.adminService.ListLessons(c.UserContext(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, lessons, p.Page, p.Limit, total)
}

// ListSubjects handles GET /api/v1/admin/subjects
func (h *AdminHandler) ListSubjects(c *fiber.Ctx) error {
	p, err := parseParams(c)
	if err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	subjects, total, err := h.adminService.ListSubjects(c.UserContext(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, subjects, p.Page, p.Limit, total)
}

// ListUploads handles GET /api/v1/admin/uploads?status=
func (h *AdminHandler) ListUploads(c *fiber.Ctx) error {
	p, err := parseParams(c)
	if err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	uploads, total, err := h.adminService.ListUploads(c.UserContext(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, uploads, p.Page, p.Limit, total)
}
