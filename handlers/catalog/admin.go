package catalog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// CreateUniversity handles POST /api/v1/admin/catalog/universities
func (h *CatalogHandler) CreateUniversity(c *fiber.Ctx) error {
	var req services.CreateUniversityInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	university, err := h.catalogService.CreateUniversity(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, university.ID, nil, university)
	return response.Created(c, university)
}

// CreateFaculty handles POST /api/v1/admin/catalog/faculties
func (h *CatalogHandler) CreateFaculty(c *fiber.Ctx) error {
	var req services.CreateFacultyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	faculty, err := h.catalogService.CreateFaculty(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, faculty.ID, nil, faculty)
	return response.Created(c, faculty)
}

// CreateProgram handles POST /api/v1/admin/catalog/programs
func (h *CatalogHandler) CreateProgram(c *fiber.Ctx) error {
	var req services.CreateProgramInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	program, err := h.catalogService.CreateProgram(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, program.ID, nil, program)
	return response.Created(c, program)
}

// CreateSemester handles POST /api/v1/admin/catalog/semesters
func (h *CatalogHandler) CreateSemester(c *fiber.Ctx) error {
	var req services.CreateSemesterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	semester, err := h.catalogService.CreateSemester(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.RecordChange(c, semester.ID, nil, semester)
	return response.Created(c, semester)
}
