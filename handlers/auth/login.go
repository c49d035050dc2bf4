package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	authutil "github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.Check(req); err != nil {
		return response.FromError(c, err)
	}

	ctx := c.UserContext()
	ip := c.IP()

	var user model.User
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if dbErr := apperr.FromDB(err, "user", "find user"); !isNotFound(dbErr) {
			return response.FromError(c, dbErr)
		}
		h.recordFailure(c, ip)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, authutil.ErrPasswordMismatch) {
			h.log.Warn("password verification failed", "user_id", user.ID, "error", err)
		}
		h.recordFailure(c, ip)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(ctx, ip)
	}

	pair, err := h.jwtManager.GeneratePair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.FromError(c, apperr.Upstream("generate tokens", err))
	}

	return response.Success(c, AuthResponse{User: &user, TokenPair: pair})
}

func (h *AuthHandler) recordFailure(c *fiber.Ctx, ip string) {
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordFailedAttempt(c.UserContext(), ip)
	}
}

func isNotFound(err error) bool {
	var nf *apperr.NotFoundError
	return errors.As(err, &nf)
}

func isConflict(err error) bool {
	var conflict *apperr.ConflictError
	return errors.As(err, &conflict)
}
