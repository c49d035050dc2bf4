package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// ListAuditLogs handles GET /api/v1/admin/audit-logs?action=&resource=
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	p, err := parseParams(c)
	if err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}
	logs, total, err := h.adminService.ListAuditLogs(c.UserContext(), p)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, logs, p.Page, p.Limit, total)
}
