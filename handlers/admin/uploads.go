package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// ModerateUpload handles PATCH /api/v1/admin/uploads/:id with
// {"status": "approved"|"rejected", "reason": "..."}
func (h *AdminHandler) ModerateUpload(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req services.ModerateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminID, _ := middleware.GetUserID(c)
	upload, err := h.uploadService.Moderate(c.UserContext(), adminID, id, req)
	if err != nil {
		return response.FromError(c, err)
	}

	h.adminService.InvalidateStats(c.UserContext())
	middleware.RecordChange(c, id, fiber.Map{"status": "pending"}, fiber.Map{"status": upload.Status, "reason": upload.Reason})
	return response.Success(c, upload)
}

// DeleteUpload handles DELETE /api/v1/admin/uploads/:id
func (h *AdminHandler) DeleteUpload(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	deleted, err := h.uploadService.Remove(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	h.adminService.InvalidateStats(c.UserContext())
	middleware.RecordChange(c, id, deleted, nil)
	return response.SuccessWithMessage(c, "Upload deleted", nil)
}
