package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	authutil "github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the
// access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken handles POST /api/v1/auth/refresh. The presented refresh
// token is revoked and a new pair issued.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.Check(req); err != nil {
		return response.FromError(c, err)
	}

	ctx := c.UserContext()

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != authutil.TokenTypeRefresh {
		return response.Unauthorized(c, "Invalid or expired refresh token")
	}

	revoked, err := h.blacklistService.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return response.FromError(c, apperr.Upstream("check token status", err))
	}
	if revoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := h.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return response.Unauthorized(c, "User not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	pair, err := h.jwtManager.GeneratePair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.FromError(c, apperr.Upstream("generate tokens", err))
	}

	if err := h.blacklistService.RevokeToken(ctx, claims.ID, user.ID, h.jwtManager.ExpiresAt(claims), "token_refresh"); err != nil {
		// the old token still expires on its own
		h.log.Warn("failed to revoke refreshed token", "user_id", user.ID, "error", err)
	}

	return response.Success(c, AuthResponse{TokenPair: pair})
}

// Logout handles POST /api/v1/auth/logout by blacklisting the access token
// and, when supplied, the refresh token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req LogoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	ctx := c.UserContext()
	if err := h.blacklistService.RevokeToken(ctx, claims.ID, claims.UserID, h.jwtManager.ExpiresAt(claims), "logout"); err != nil {
		return response.FromError(c, apperr.Upstream("revoke token", err))
	}

	if req.RefreshToken != "" {
		refresh, err := h.jwtManager.ValidateToken(req.RefreshToken)
		if err == nil && refresh.UserID == claims.UserID && refresh.TokenType == authutil.TokenTypeRefresh {
			if err := h.blacklistService.RevokeToken(ctx, refresh.ID, claims.UserID, h.jwtManager.ExpiresAt(refresh), "logout"); err != nil {
				h.log.Warn("failed to revoke refresh token", "user_id", claims.UserID, "error", err)
			}
		}
	}

	return response.SuccessWithMessage(c, "Successfully logged out", nil)
}

// LogoutAll handles POST /api/v1/auth/logout-all by bumping the token
// version, which invalidates every token issued so far
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if err := h.blacklistService.RevokeAllUserTokens(c.UserContext(), userID); err != nil {
		return response.FromError(c, apperr.Upstream("revoke all tokens", err))
	}
	return response.SuccessWithMessage(c, "Logged out from all sessions", fiber.Map{"at": time.Now().UTC()})
}
