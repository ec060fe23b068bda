package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/events"
	"github.com/solarcare/inverter-service/internal/repository"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID string
	DeviceID   string
	EmailID    string
	Message    string
	AssignedTo string
	Note       string
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ParseTicketStatus accepts canonical and legacy spellings and rejects anything else.
func ParseTicketStatus(raw string) (domain.TicketStatus, error) {
	status, ok := domain.NormalizeTicketStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError("validation failed", []string{"status must be one of [OPEN IN_PROGRESS COMPLETED]"})
	}
	return status, nil
}

// Create opens a ticket. Without a contact email the customer's email is used when known.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("validation failed", []string{"message must not be blank"})
	}

	email := strings.TrimSpace(input.EmailID)
	if email == "" && s.users != nil {
		if customer, err := s.users.GetByID(ctx, input.CustomerID); err == nil {
			email = customer.EmailID
		}
	}

	ticket := &domain.Ticket{
		CustomerID: input.CustomerID,
		DeviceID:   input.DeviceID,
		EmailID:    email,
		Message:    message,
		Status:     domain.TicketStatusOpen,
		AssignedTo: input.AssignedTo,
		Note:       input.Note,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTicketCreated, ticket.TicketID, events.TicketCreatedPayload{
		TicketID:   ticket.TicketID,
		CustomerID: ticket.CustomerID,
		DeviceID:   ticket.DeviceID,
		EmailID:    ticket.EmailID,
		Message:    ticket.Message,
	}))
	return ticket, nil
}

// List returns tickets matching the filter, newest first.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// Get returns a single ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketError(err, id)
	}
	return ticket, nil
}

// UpdateStatus moves a ticket to any of the canonical statuses.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return s.Update(ctx, id, repository.TicketUpdate{Status: &status})
}

// Update writes the present ticket fields and announces status changes.
func (s *TicketService) Update(ctx context.Context, id string, update repository.TicketUpdate) (*domain.Ticket, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.tickets.Update(ctx, id, update)
	if err != nil {
		return nil, mapTicketError(err, id)
	}

	if updated.Status != current.Status {
		s.publish(ctx, events.NewEvent(events.EventTicketStatusChanged, id, events.TicketStatusChangedPayload{
			TicketID:  id,
			EmailID:   updated.EmailID,
			OldStatus: current.Status,
			NewStatus: updated.Status,
		}))
	}
	return updated, nil
}

// Delete removes the ticket and returns it.
func (s *TicketService) Delete(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return nil, mapTicketError(err, id)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func mapTicketError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticketId": id})
	}
	return apperrors.NewInternalError(err)
}
