package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/store"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens and resolves the caller from the
// entity store.
type Middleware struct {
	tokens *TokenManager
	store  *store.Store
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, st *store.Store) *Middleware {
	return &Middleware{tokens: tokens, store: st}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	m.store.Lock()
	user, ok := m.store.User(claims.Username)
	m.store.Unlock()
	if !ok {
		return apperrors.NewUnauthorized("user not found")
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
