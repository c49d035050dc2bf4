package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/logger"
)

var log = logger.Nop()

// SetLogger sets the logger used to record upstream error details.
func SetLogger(l *logger.Logger) {
	if l != nil {
		log = l
	}
}

// Response represents a standardized API response
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Page is the body of every paginated admin listing
type Page struct {
	Items     interface{} `json:"items"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	Limit     int         `json:"limit"`
	PageCount int         `json:"page_count"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Resource created successfully",
		Data:    data,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorWithDetails returns an error response with details
func ErrorWithDetails(c *fiber.Ctx, statusCode int, message string, code string, details string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message, "BAD_REQUEST")
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized access"
	}
	return Error(c, fiber.StatusUnauthorized, message, "UNAUTHORIZED")
}

// Forbidden returns a 403 Forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Access forbidden"
	}
	return Error(c, fiber.StatusForbidden, message, "FORBIDDEN")
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message, "NOT_FOUND")
}

// Conflict returns a 409 Conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message, "CONFLICT")
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, message, "TOO_MANY_REQUESTS")
}

// ValidationError returns a 400 response naming the offending field
func ValidationError(c *fiber.Ctx, err error) error {
	return ErrorWithDetails(c, fiber.StatusBadRequest,
		"Validation failed", "VALIDATION_ERROR", err.Error())
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// Paginated wraps items into the admin page envelope
func Paginated(c *fiber.Ctx, items interface{}, page, limit int, total int64) error {
	return Success(c, Page{
		Items:     items,
		Total:     total,
		Page:      page,
		Limit:     limit,
		PageCount: PageCount(total, limit),
	})
}

// PageCount returns how many pages of size limit cover total rows
func PageCount(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

// FromError is the single boundary mapping from the error taxonomy to HTTP.
// Unrecognised errors become a generic 500 and their detail is only logged.
func FromError(c *fiber.Ctx, err error) error {
	var (
		validation  *apperr.ValidationError
		notFound    *apperr.NotFoundError
		authz       *apperr.AuthorizationError
		state       *apperr.InvalidStateError
		conflict    *apperr.ConflictError
		unsupported *apperr.UnsupportedFormatError
	)

	switch {
	case errors.As(err, &validation):
		return ErrorWithDetails(c, fiber.StatusBadRequest, validation.Error(), "VALIDATION_ERROR", validation.Field)
	case errors.As(err, &notFound):
		return NotFound(c, notFound.Error())
	case errors.As(err, &authz):
		if authz.Unauthenticated {
			return Unauthorized(c, authz.Message)
		}
		return Forbidden(c, authz.Message)
	case errors.As(err, &state):
		return ErrorWithDetails(c, fiber.StatusConflict, state.Message, "INVALID_STATE", state.Current)
	case errors.As(err, &conflict):
		return Conflict(c, conflict.Message)
	case errors.As(err, &unsupported):
		return Error(c, fiber.StatusUnsupportedMediaType, unsupported.Error(), "UNSUPPORTED_FORMAT")
	default:
		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return InternalServerError(c, "")
	}
}
