package subject

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// SubjectHandler handles subject-related requests
type SubjectHandler struct {
	subjectService *services.SubjectService
	adminService   *services.AdminService
}

// NewSubjectHandler creates a new subject handler. adminService, when set,
// has its cached stats invalidated when the subject count changes.
func NewSubjectHandler(subjectService *services.SubjectService, adminService *services.AdminService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService, adminService: adminService}
}

// ListSubjects handles GET /api/v1/subjects?semester_id=
func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	semesterID, err := validation.QueryID(c, "semester_id")
	if err != nil {
		return response.FromError(c, err)
	}
	subjects, err := h.subjectService.List(c.UserContext(), semesterID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, subjects)
}

// GetSubject handles GET /api/v1/subjects/:slug
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	subject, err := h.subjectService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, subject)
}

// CreateSubject handles POST /api/v1/admin/subjects
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	var req services.SubjectInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	subject, err := h.subjectService.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, subject.ID, nil, subject)
	h.invalidateStats(c)
	return response.Created(c, subject)
}

// UpdateSubject handles PUT /api/v1/admin/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req services.UpdateSubjectInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	subject, err := h.subjectService.Update(c.UserContext(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, subject.ID, req, subject)
	return response.Success(c, subject)
}

// DeleteSubject handles DELETE /api/v1/admin/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.subjectService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	h.invalidateStats(c)
	return response.SuccessWithMessage(c, "Subject deleted", nil)
}

func (h *SubjectHandler) invalidateStats(c *fiber.Ctx) {
	if h.adminService != nil {
		h.adminService.InvalidateStats(c.UserContext())
	}
}
