package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/auth"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// requireRoleGrant allows role assignment only to ADMIN and SUPER_ADMIN sessions.
func requireRoleGrant(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required to assign a role")
	}
	if !principal.Role.IsAdmin() {
		return apperrors.NewForbidden("only administrators can assign roles")
	}
	return nil
}

// requireSelfOrAdmin allows a caller to act on their own account; administrators may act on any.
func requireSelfOrAdmin(c *fiber.Ctx, userID string) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.Role.IsAdmin() || (principal.User != nil && principal.User.UserID == userID) {
		return nil
	}
	return apperrors.NewForbidden("cannot modify another user's profile")
}
