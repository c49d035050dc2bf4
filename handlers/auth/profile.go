package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	authutil "github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"gorm.io/gorm"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, user)
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.Check(req); err != nil {
		return response.FromError(c, err)
	}

	if err := h.db.WithContext(c.UserContext()).Model(user).Update("name", strings.TrimSpace(req.Name)).Error; err != nil {
		return response.FromError(c, apperr.Upstream("update profile", err))
	}
	return response.Success(c, user)
}

// ChangePassword handles PUT /api/v1/auth/password. Every other session is
// signed out through the token version.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.Check(req); err != nil {
		return response.FromError(c, err)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.OldPassword); err != nil {
		return response.FromError(c, apperr.Validation("old_password", "current password is incorrect"))
	}

	hashed, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.FromError(c, apperr.Upstream("hash password", err))
	}

	err = h.db.WithContext(c.UserContext()).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"password_hash": hashed,
		"token_version": gorm.Expr("token_version + ?", 1),
	}).Error
	if err != nil {
		return response.FromError(c, apperr.Upstream("change password", err))
	}

	pair, err := h.jwtManager.GeneratePair(user.ID, user.Email, user.Role, user.TokenVersion+1)
	if err != nil {
		return response.FromError(c, apperr.Upstream("generate tokens", err))
	}
	return response.SuccessWithMessage(c, "Password changed", AuthResponse{TokenPair: pair})
}
