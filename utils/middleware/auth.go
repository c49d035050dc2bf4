package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"gorm.io/gorm"
)

var (
	errMissingToken = errors.New("missing authorization token")
	errTokenFormat  = errors.New("invalid authorization format")
	errTokenType    = errors.New("invalid token type")
	errRevoked      = errors.New("token has been revoked")
	errUnknownUser  = errors.New("user not found")
	errInvalidated  = errors.New("token has been invalidated")
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// Required is middleware that requires a valid access token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, user, err := m.authenticate(c)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				return response.Unauthorized(c, "Token has expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
				return response.Unauthorized(c, "Invalid token")
			case errors.Is(err, errMissingToken), errors.Is(err, errTokenFormat),
				errors.Is(err, errTokenType), errors.Is(err, errRevoked),
				errors.Is(err, errUnknownUser), errors.Is(err, errInvalidated):
				return response.Unauthorized(c, capitalize(err.Error()))
			default:
				return response.FromError(c, err)
			}
		}

		setLocals(c, claims, user)
		return c.Next()
	}
}

// Optional attaches the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, user, err := m.authenticate(c); err == nil {
			setLocals(c, claims, user)
		}
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles. It must
// run after Required.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := GetUserRole(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin is RequireRole(admin)
func RequireAdmin() fiber.Handler {
	return RequireRole(model.RoleAdmin)
}

// authenticate validates the bearer token, checks the blacklist and the
// user's token version, and loads the user. The role comes from the
// database row so demotions apply without waiting for token expiry.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*auth.Claims, *model.User, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, nil, errMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, nil, errTokenFormat
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		return nil, nil, err
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, nil, errTokenType
	}

	revoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, errRevoked
	}

	var user model.User
	if err := m.db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errUnknownUser
		}
		return nil, nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, errInvalidated
	}

	return claims, &user, nil
}

func setLocals(c *fiber.Ctx, claims *auth.Claims, user *model.User) {
	c.Locals("user_id", user.ID)
	c.Locals("user_email", user.Email)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
	c.Locals("token_jti", claims.ID)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (string, bool) {
	role, ok := c.Locals("user_role").(string)
	return role, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals("user").(*model.User)
	return user, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals("claims").(*auth.Claims)
	return claims, ok
}

// Actor returns the caller as the services see it. Anonymous callers get
// the zero Actor.
func Actor(c *fiber.Ctx) services.Actor {
	id, _ := GetUserID(c)
	role, _ := GetUserRole(c)
	return services.Actor{UserID: id, Role: role}
}
