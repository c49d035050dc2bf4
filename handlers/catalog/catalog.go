package catalog

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// CatalogHandler serves the University → Faculty → Program → Semester →
// Subject hierarchy
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListUniversities handles GET /api/v1/universities
func (h *CatalogHandler) ListUniversities(c *fiber.Ctx) error {
	universities, err := h.catalogService.ListUniversities(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, universities)
}

// GetUniversity handles GET /api/v1/universities/:uni
func (h *CatalogHandler) GetUniversity(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveUniversity(c.UserContext(), c.Params("uni"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, view)
}

// GetFaculty handles GET /api/v1/universities/:uni/faculty/:fac
func (h *CatalogHandler) GetFaculty(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveFaculty(c.UserContext(), c.Params("uni"), c.Params("fac"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, view)
}

// GetProgram handles GET /api/v1/universities/:uni/faculty/:fac/program/:prog
func (h *CatalogHandler) GetProgram(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveProgram(c.UserContext(), c.Params("uni"), c.Params("fac"), c.Params("prog"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, view)
}

// GetSemester handles GET .../program/:prog/semester/:sem
func (h *CatalogHandler) GetSemester(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveSemester(c.UserContext(), c.Params("uni"), c.Params("fac"), c.Params("prog"), c.Params("sem"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, view)
}

// GetSubject handles GET .../semester/:sem/subject/:subj
func (h *CatalogHandler) GetSubject(c *fiber.Ctx) error {
	view, err := h.catalogService.ResolveSubject(c.UserContext(), c.Params("uni"), c.Params("fac"), c.Params("prog"), c.Params("sem"), c.Params("subj"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, view)
}
