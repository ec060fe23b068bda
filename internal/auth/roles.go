package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/domain"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
// With no roles given any authenticated caller passes.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin admits ADMIN and SUPER_ADMIN callers.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
}
