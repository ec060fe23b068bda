package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/api/dto"
	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/repository"
	"github.com/solarcare/inverter-service/internal/service"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// CustomerHandler exposes customer listing, profile and dashboard endpoints.
type CustomerHandler struct {
	customers *service.CustomerService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// List handles GET /api/customers and GET /api/customer.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.customers.List(c.UserContext(), service.CustomerQuery{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, dto.CustomerListResponse{
		Success: true,
		Data:    result.Customers,
		Pagination: dto.PaginationResponse{
			Page:            result.Pagination.Page,
			Limit:           result.Pagination.Limit,
			TotalCustomers:  result.Pagination.TotalCustomers,
			TotalPages:      result.Pagination.TotalPages,
			HasNextPage:     result.Pagination.HasNextPage,
			HasPreviousPage: result.Pagination.HasPreviousPage,
		},
		Query: dto.QueryEcho{
			Search:    result.Query.Search,
			SortBy:    result.Query.SortBy,
			SortOrder: result.Query.SortOrder,
		},
	})
}

// Update handles PATCH /api/customer and PATCH /api/customer/:id. Callers edit their own
// profile; administrators may edit any.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id := customerID(c, req.UserID)
	if id == "" {
		return apperrors.NewValidationError("validation failed", []string{"customer_id is required"})
	}
	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	update := repository.UserUpdate{
		FirstName:   trimmed(req.FirstName),
		LastName:    trimmed(req.LastName),
		Address:     req.Address,
		PhoneNo:     req.PhoneNo,
		DateOfBirth: req.DateOfBirth,
		State:       req.State,
		City:        req.City,
	}
	if req.Role != nil {
		if err := requireRoleGrant(c); err != nil {
			return err
		}
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			return apperrors.NewValidationError("validation failed", []string{"role must be one of [CUSTOMER ADMIN TECHNICIAN SUPER_ADMIN]"})
		}
		update.Role = &role
	}

	if _, err := h.customers.Update(c.UserContext(), id, update); err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.MessageResponse{Success: true, Message: "Customer updated successfully"})
}

// Delete handles DELETE /api/customer and DELETE /api/customer/:id.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id := customerID(c, "")
	if id == "" {
		return apperrors.NewValidationError("validation failed", []string{"customer_id is required"})
	}

	user, err := h.customers.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DeleteCustomerResponse{
		Success: true,
		UserID:  user.UserID,
		Message: "Customer deleted successfully",
	})
}

// Dashboard handles GET /api/customers/dashboard.
func (h *CustomerHandler) Dashboard(c *fiber.Ctx) error {
	id, err := requireQuery(c, "customer_id")
	if err != nil {
		return err
	}

	summary, err := h.customers.Dashboard(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DashboardResponse{
		Success: true,
		Data: dto.DashboardData{
			Customer:     *summary.Customer,
			DeviceCount:  summary.DeviceCount,
			TotalTickets: summary.TotalTickets,
			TicketCounts: summary.TicketCounts,
		},
		Message: "Dashboard loaded",
	})
}

// customerID resolves the target from the path, then the query, then the body.
func customerID(c *fiber.Ctx, fromBody string) string {
	for _, candidate := range []string{c.Params("id"), c.Query("customer_id"), fromBody} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	return ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
