package bookmark

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// BookmarkHandler handles the caller's bookmarks
type BookmarkHandler struct {
	bookmarkService *services.BookmarkService
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(bookmarkService *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// ListBookmarks handles GET /api/v1/bookmarks
func (h *BookmarkHandler) ListBookmarks(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	bookmarks, err := h.bookmarkService.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, bookmarks)
}

// AddBookmark handles PUT /api/v1/bookmarks/:lesson_id
func (h *BookmarkHandler) AddBookmark(c *fiber.Ctx) error {
	lessonID, err := validation.ParamID(c, "lesson_id")
	if err != nil {
		return response.FromError(c, err)
	}
	userID, _ := middleware.GetUserID(c)
	if err := h.bookmarkService.Add(c.UserContext(), userID, lessonID); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Lesson bookmarked", fiber.Map{"lesson_id": lessonID})
}

// RemoveBookmark handles DELETE /api/v1/bookmarks/:lesson_id
func (h *BookmarkHandler) RemoveBookmark(c *fiber.Ctx) error {
	lessonID, err := validation.ParamID(c, "lesson_id")
	if err != nil {
		return response.FromError(c, err)
	}
	userID, _ := middleware.GetUserID(c)
	if err := h.bookmarkService.Remove(c.UserContext(), userID, lessonID); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Bookmark removed", nil)
}
