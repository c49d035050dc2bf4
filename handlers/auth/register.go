package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/scholarhub/model"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	authutil "github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
	"github.com/sahilchouksey/scholarhub/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
	log                  *logger.Logger
}

// NewAuthHandler creates a new auth handler. bruteForceProtection may be nil.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
		log:                  log,
	}
}

// RegisterRequest represents a user registration request. Only the student
// and teacher roles can be self-assigned.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=student teacher"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User *model.User `json:"user,omitempty"`
	*authutil.TokenPair
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.Check(req); err != nil {
		return response.FromError(c, err)
	}
	if req.Role == "" {
		req.Role = model.RoleStudent
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.FromError(c, apperr.Upstream("hash password", err))
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		dbErr := apperr.FromDB(err, "user", "create user")
		if isConflict(dbErr) {
			return response.Conflict(c, "User with this email already exists")
		}
		return response.FromError(c, dbErr)
	}

	pair, err := h.jwtManager.GeneratePair(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.FromError(c, apperr.Upstream("generate tokens", err))
	}

	h.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	return response.Created(c, AuthResponse{User: &user, TokenPair: pair})
}
