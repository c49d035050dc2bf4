package lesson

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// LessonHandler handles lesson-related requests
type LessonHandler struct {
	lessonService   *services.LessonService
	bookmarkService *services.BookmarkService
	adminService    *services.AdminService
}

// NewLessonHandler creates a new lesson handler. bookmarkService and
// adminService are optional.
func NewLessonHandler(lessonService *services.LessonService, bookmarkService *services.BookmarkService, adminService *services.AdminService) *LessonHandler {
	return &LessonHandler{
		lessonService:   lessonService,
		bookmarkService: bookmarkService,
		adminService:    adminService,
	}
}

// ListLessons handles GET /api/v1/lessons?search=&subject_id=&sort=
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	subjectID, err := validation.QueryID(c, "subject_id")
	if err != nil {
		return response.FromError(c, err)
	}

	lessons, err := h.lessonService.List(c.UserContext(), services.LessonFilter{
		Search:    c.Query("search"),
		SubjectID: subjectID,
		Sort:      c.Query("sort"),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, lessons)
}

// GetLesson handles GET /api/v1/lessons/:slug
func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	lesson, err := h.lessonService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return response.FromError(c, err)
	}

	if userID, ok := middleware.GetUserID(c); ok && h.bookmarkService != nil {
		bookmarked, err := h.bookmarkService.IsBookmarked(c.UserContext(), userID, lesson.ID)
		if err != nil {
			return response.FromError(c, err)
		}
		lesson.Bookmarked = &bookmarked
	}
	return response.Success(c, lesson)
}

// GetAdjacent handles GET /api/v1/lessons/:id/adjacent
func (h *LessonHandler) GetAdjacent(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	adj, err := h.lessonService.Adjacent(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, adj)
}

// CreateLesson handles POST /api/v1/lessons (teacher or admin)
func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	var req services.LessonInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	lesson, err := h.lessonService.Create(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	h.invalidateStats(c)
	return response.Created(c, lesson)
}

// UpdateLesson handles PUT /api/v1/lessons/:id
func (h *LessonHandler) UpdateLesson(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req services.UpdateLessonInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	lesson, err := h.lessonService.Update(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	h.invalidateStats(c)
	return response.Success(c, lesson)
}

// DeleteLesson handles DELETE /api/v1/lessons/:id
func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.lessonService.Delete(c.UserContext(), middleware.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	h.invalidateStats(c)
	return response.SuccessWithMessage(c, "Lesson deleted", nil)
}

// invalidateStats drops the cached published lesson count
func (h *LessonHandler) invalidateStats(c *fiber.Ctx) {
	if h.adminService != nil {
		h.adminService.InvalidateStats(c.UserContext())
	}
}
