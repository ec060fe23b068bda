package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/repository"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// Listing defaults and bounds.
const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

var customerSortFields = map[string]func(u *domain.User) string{
	"firstName": func(u *domain.User) string { return strings.ToLower(u.FirstName) },
	"lastName":  func(u *domain.User) string { return strings.ToLower(u.LastName) },
	"emailId":   func(u *domain.User) string { return u.EmailID },
	"createdAt": func(u *domain.User) string { return u.CreatedAt },
	"updatedAt": func(u *domain.User) string { return u.UpdatedAt },
	"city":      func(u *domain.User) string { return strings.ToLower(u.City) },
	"state":     func(u *domain.User) string { return strings.ToLower(u.State) },
}

// CustomerQuery describes a customer listing request.
type CustomerQuery struct {
	Search    string `json:"search"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	Page      int    `json:"-"`
	Limit     int    `json:"-"`
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalCustomers  int  `json:"totalCustomers"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// CustomerPage is one page of customers.
type CustomerPage struct {
	Customers  []domain.User
	Pagination Pagination
	Query      CustomerQuery
}

// DashboardSummary aggregates a customer's devices and tickets.
type DashboardSummary struct {
	Customer     *domain.User                `json:"customer"`
	DeviceCount  int                         `json:"deviceCount"`
	TotalTickets int                         `json:"totalTickets"`
	TicketCounts map[domain.TicketStatus]int `json:"ticketCounts"`
}

// CustomerService manages customer profiles.
type CustomerService struct {
	users   repository.UserRepository
	devices repository.DeviceRepository
	tickets repository.TicketRepository
}

// CustomerDependencies bundles repositories for the customer service.
type CustomerDependencies struct {
	UserRepo   repository.UserRepository
	DeviceRepo repository.DeviceRepository
	TicketRepo repository.TicketRepository
}

func NewCustomerService(deps CustomerDependencies) *CustomerService {
	return &CustomerService{
		users:   deps.UserRepo,
		devices: deps.DeviceRepo,
		tickets: deps.TicketRepo,
	}
}

// List searches, sorts and paginates customers.
func (s *CustomerService) List(ctx context.Context, query CustomerQuery) (*CustomerPage, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	customers, err := s.users.ListByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	matched := customers[:0]
	for _, customer := range customers {
		if matchesSearch(&customer, query.Search) {
			matched = append(matched, customer)
		}
	}

	key := customerSortFields[query.SortBy]
	desc := query.SortOrder == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := key(&matched[i]), key(&matched[j])
		if a == b {
			return matched[i].UserID < matched[j].UserID
		}
		if desc {
			return a > b
		}
		return a < b
	})

	total := len(matched)
	totalPages := (total + query.Limit - 1) / query.Limit
	start := (query.Page - 1) * query.Limit
	end := start + query.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &CustomerPage{
		Customers: append([]domain.User{}, matched[start:end]...),
		Pagination: Pagination{
			Page:            query.Page,
			Limit:           query.Limit,
			TotalCustomers:  total,
			TotalPages:      totalPages,
			HasNextPage:     query.Page < totalPages,
			HasPreviousPage: query.Page > 1,
		},
		Query: query,
	}, nil
}

// Get returns a single customer profile.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"userId": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Update writes the present profile fields. The email and id are immutable.
func (s *CustomerService) Update(ctx context.Context, id string, update repository.UserUpdate) (*domain.User, error) {
	if update.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	user, err := s.users.UpdateByID(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"userId": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Delete removes the customer and returns the removed profile.
func (s *CustomerService) Delete(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"userId": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Dashboard summarizes the customer's devices and tickets by status.
func (s *CustomerService) Dashboard(ctx context.Context, id string) (*DashboardSummary, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	devices, err := s.devices.ListByCustomer(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{CustomerID: id})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	counts := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	for _, status := range domain.TicketStatuses {
		counts[status] = 0
	}
	for _, ticket := range tickets {
		counts[ticket.Status]++
	}

	return &DashboardSummary{
		Customer:     customer,
		DeviceCount:  len(devices),
		TotalTickets: len(tickets),
		TicketCounts: counts,
	}, nil
}

func normalizeQuery(query CustomerQuery) (CustomerQuery, error) {
	var violations []string

	if query.Page == 0 {
		query.Page = DefaultPage
	}
	if query.Limit == 0 {
		query.Limit = DefaultLimit
	}
	if query.Page < 1 {
		violations = append(violations, "page must be at least 1")
	}
	if query.Limit < 1 || query.Limit > MaxLimit {
		violations = append(violations, "limit must be between 1 and 100")
	}

	query.Search = strings.TrimSpace(query.Search)
	if query.SortBy == "" {
		query.SortBy = DefaultSortBy
	}
	if _, ok := customerSortFields[query.SortBy]; !ok {
		violations = append(violations, "sortBy must be one of [firstName lastName emailId createdAt updatedAt city state]")
	}
	query.SortOrder = strings.ToLower(query.SortOrder)
	if query.SortOrder == "" {
		query.SortOrder = DefaultSortOrder
	}
	if query.SortOrder != "asc" && query.SortOrder != "desc" {
		violations = append(violations, "sortOrder must be one of [asc desc]")
	}

	if len(violations) > 0 {
		return query, apperrors.NewValidationError("invalid query parameters", violations)
	}
	return query, nil
}

func matchesSearch(user *domain.User, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range []string{user.FirstName, user.LastName, user.FullName(), user.EmailID, user.Address} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// UsersByRole lists every account holding role.
func (s *CustomerService) UsersByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt < users[j].CreatedAt })
	return users, nil
}
