package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/dto"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/auth"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/service"
	apperrors "github.com/neurobyte-x/AI-Maintainance-Reporter/pkg/util"
)

// AuthHandler exposes signup, login and current-user endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, err := h.auth.Signup(c.Context(), req.Email, req.Password, req.FullName, domain.Role(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        dto.NewUserResponse(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        dto.NewUserResponse(user),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.CurrentUser(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}
