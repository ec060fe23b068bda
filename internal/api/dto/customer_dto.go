package dto

import "github.com/solarcare/inverter-service/internal/domain"

// UpdateCustomerRequest payload. The customer id comes from the path, the query or UserID.
// emailId is immutable and not accepted.
type UpdateCustomerRequest struct {
	UserID      string  `json:"userId"`
	FirstName   *string `json:"firstName" validate:"omitnil,notblank,max=50"`
	LastName    *string `json:"lastName" validate:"omitnil,notblank,max=50"`
	Role        *string `json:"role" validate:"omitempty,oneof=CUSTOMER ADMIN TECHNICIAN SUPER_ADMIN"`
	Address     *string `json:"address" validate:"omitempty,max=200"`
	PhoneNo     *string `json:"phoneNo" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,max=30"`
	State       *string `json:"state" validate:"omitempty,max=50"`
	City        *string `json:"city" validate:"omitempty,max=50"`
}

// PaginationResponse describes where a page sits in the full result.
type PaginationResponse struct {
	Page            int  `json:"page" validate:"min=1"`
	Limit           int  `json:"limit" validate:"min=1,max=100"`
	TotalCustomers  int  `json:"totalCustomers" validate:"min=0"`
	TotalPages      int  `json:"totalPages" validate:"min=0"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// QueryEcho repeats the effective listing parameters.
type QueryEcho struct {
	Search    string `json:"search"`
	SortBy    string `json:"sortBy" validate:"required"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
}

// CustomerListResponse is one page of customers.
type CustomerListResponse struct {
	Success    bool               `json:"success" validate:"eq=true"`
	Data       []domain.User      `json:"data" validate:"dive"`
	Pagination PaginationResponse `json:"pagination"`
	Query      QueryEcho          `json:"query"`
}

// DeleteCustomerResponse reports a removed customer.
type DeleteCustomerResponse struct {
	Success bool   `json:"success" validate:"eq=true"`
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// DashboardData summarizes a customer's devices and tickets.
type DashboardData struct {
	Customer     domain.User                 `json:"customer"`
	DeviceCount  int                         `json:"deviceCount" validate:"min=0"`
	TotalTickets int                         `json:"totalTickets" validate:"min=0"`
	TicketCounts map[domain.TicketStatus]int `json:"ticketCounts" validate:"required"`
}

// DashboardResponse wraps the dashboard summary.
type DashboardResponse struct {
	Success bool          `json:"success" validate:"eq=true"`
	Data    DashboardData `json:"data"`
	Message string        `json:"message" validate:"required"`
}

// UsersResponse lists users by role.
type UsersResponse struct {
	Success bool          `json:"success" validate:"eq=true"`
	Users   []domain.User `json:"users" validate:"dive"`
}
