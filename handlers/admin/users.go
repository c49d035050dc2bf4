package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// UpdateUser handles PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	before, after, err := h.adminService.UpdateUser(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, id, before, after)
	return response.Success(c, after)
}

// DeleteUser handles DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	deleted, err := h.adminService.DeleteUser(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, id, deleted, nil)
	return response.SuccessWithMessage(c, "User deleted", nil)
}
