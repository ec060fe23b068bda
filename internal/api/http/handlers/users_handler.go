package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/api/dto"
	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/service"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// UsersHandler lists accounts for administrators.
type UsersHandler struct {
	customers *service.CustomerService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(customers *service.CustomerService) *UsersHandler {
	return &UsersHandler{customers: customers}
}

// ListByRole handles GET /api/users?role=.
func (h *UsersHandler) ListByRole(c *fiber.Ctx) error {
	raw, err := requireQuery(c, "role")
	if err != nil {
		return err
	}
	role, ok := domain.ParseRole(raw)
	if !ok {
		return apperrors.NewValidationError("validation failed", []string{"role must be one of [CUSTOMER ADMIN TECHNICIAN SUPER_ADMIN]"})
	}

	users, err := h.customers.UsersByRole(c.UserContext(), role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.UsersResponse{Success: true, Users: users})
}
