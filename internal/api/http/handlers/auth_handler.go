package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/store"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// AuthHandler issues bearer tokens for seeded users.
type AuthHandler struct {
	store  *store.Store
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(st *store.Store, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username, password required", nil)
	}

	h.store.Lock()
	user, ok := h.store.User(req.Username)
	h.store.Unlock()
	if !ok {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		Username:  user.Username,
		Role:      string(user.Role),
	}})
}
