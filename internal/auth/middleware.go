package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/repository"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
	Role domain.UserRole
}

// AuthMiddleware validates session tokens and loads principals.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	cookieName string
}

// NewAuthMiddleware constructs middleware. Tokens are read from cookieName first, then
// from an Authorization bearer header.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads the principal when the request carries a valid session and lets
// anonymous or invalid sessions through without one.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if principal, err := m.authenticate(c); err == nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	raw, err := m.extract(c)
	if err != nil {
		return nil, err
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired session")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	return &Principal{User: user, Role: user.Role}, nil
}

func (m *AuthMiddleware) extract(c *fiber.Ctx) (string, error) {
	if token := c.Cookies(m.cookieName); token != "" {
		return token, nil
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
