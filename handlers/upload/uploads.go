package upload

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
)

// UploadHandler handles user-facing upload requests
type UploadHandler struct {
	uploadService *services.UploadService
	adminService  *services.AdminService
}

// NewUploadHandler creates a new upload handler. adminService, when set, has
// its cached stats invalidated on each submission.
func NewUploadHandler(uploadService *services.UploadService, adminService *services.AdminService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, adminService: adminService}
}

// CreateUpload handles POST /api/v1/uploads. It accepts a JSON body or a
// multipart form with an optional "file" field.
func (h *UploadHandler) CreateUpload(c *fiber.Ctx) error {
	var (
		in  services.SubmitInput
		err error
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		in, err = parseMultipart(c)
	} else if perr := c.BodyParser(&in); perr != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := middleware.GetUserID(c)
	upload, err := h.uploadService.Submit(c.UserContext(), userID, in)
	if err != nil {
		return response.FromError(c, err)
	}

	if h.adminService != nil {
		h.adminService.InvalidateStats(c.UserContext())
	}
	return response.Created(c, upload)
}

// ListMyUploads handles GET /api/v1/uploads/mine
func (h *UploadHandler) ListMyUploads(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	uploads, err := h.uploadService.ListMine(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, uploads)
}

// GetUpload handles GET /api/v1/uploads/:id (owner or admin)
func (h *UploadHandler) GetUpload(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	upload, err := h.uploadService.Get(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, upload)
}

func parseMultipart(c *fiber.Ctx) (services.SubmitInput, error) {
	in := services.SubmitInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Content:     c.FormValue("content"),
	}

	if raw := strings.TrimSpace(c.FormValue("subject_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, apperr.Validation("subject_id", "subject_id must be a positive integer")
		}
		in.SubjectID = uint(id)
	}

	header, err := c.FormFile("file")
	if err != nil {
		// no file part
		return in, nil
	}
	if header.Size > services.MaxDocumentSize {
		return in, apperr.Validation("file", fmt.Sprintf("file exceeds %d MB", services.MaxDocumentSize>>20))
	}

	f, err := header.Open()
	if err != nil {
		return in, apperr.Validation("file", "file could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxDocumentSize+1))
	if err != nil {
		return in, apperr.Validation("file", "file could not be read")
	}
	in.File = &services.Attachment{Name: header.Filename, Data: data}
	return in, nil
}
