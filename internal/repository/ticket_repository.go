package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/persistence"
)

// TicketFilter narrows ticket listings. Empty fields match everything.
type TicketFilter struct {
	CustomerID string
	Status     domain.TicketStatus
}

// TicketUpdate lists the mutable ticket attributes. Nil fields are left untouched.
type TicketUpdate struct {
	CustomerID *string
	DeviceID   *string
	EmailID    *string
	Message    *string
	Status     *domain.TicketStatus
	AssignedTo *string
	Note       *string
}

func (u TicketUpdate) attributes() map[string]any {
	set := map[string]any{}
	setIf(set, "customerId", u.CustomerID)
	setIf(set, "deviceId", u.DeviceID)
	setIf(set, "emailId", u.EmailID)
	setIf(set, "message", u.Message)
	setIf(set, "status", u.Status)
	setIf(set, "assignedTo", u.AssignedTo)
	setIf(set, "note", u.Note)
	return set
}

// TicketRepository handles ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
	Update(ctx context.Context, id string, update TicketUpdate) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) (*domain.Ticket, error)
}

type ticketRepository struct {
	store  persistence.Store
	logger *zap.Logger
}

func NewTicketRepository(store persistence.Store, logger *zap.Logger) TicketRepository {
	return &ticketRepository{store: store, logger: logger}
}

// Create assigns a ticket id and timestamps. New tickets start OPEN unless a valid status is given.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	id, err := NewID(TicketIDPrefix)
	if err != nil {
		return fmt.Errorf("generate ticket id: %w", err)
	}
	ticket.TicketID = id
	if !ticket.Status.Valid() {
		ticket.Status = domain.TicketStatusOpen
	}
	ts := timestamp()
	ticket.CreatedAt = ts
	ticket.UpdatedAt = ts

	item, err := toItem(ticketKey(id), ticket)
	if err != nil {
		return err
	}
	if err := r.store.PutIfAbsent(ctx, item); err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	item, err := r.store.Get(ctx, ticketKey(id))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return r.decode(item)
}

// List returns matching tickets newest first. The status filter applies to normalized statuses.
func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	scan := persistence.ScanFilter{PKPrefix: ticketPrefix, SK: ticketSort}
	if filter.CustomerID != "" {
		scan.Equals = map[string]string{"customerId": filter.CustomerID}
	}
	items, err := r.store.Scan(ctx, scan)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(items))
	for _, item := range items {
		ticket, err := r.decode(item)
		if err != nil {
			r.logger.Warn("skipping unreadable ticket record", zap.Error(err))
			continue
		}
		if filter.Status != "" && ticket.Status != filter.Status {
			continue
		}
		tickets = append(tickets, *ticket)
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		if tickets[i].CreatedAt != tickets[j].CreatedAt {
			return tickets[i].CreatedAt > tickets[j].CreatedAt
		}
		return tickets[i].TicketID > tickets[j].TicketID
	})
	return tickets, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	return r.Update(ctx, id, TicketUpdate{Status: &status})
}

// Update writes the present attributes; createdAt is never touched.
func (r *ticketRepository) Update(ctx context.Context, id string, update TicketUpdate) (*domain.Ticket, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("invalid ticket status %q", *update.Status)
	}
	set := update.attributes()
	set["updatedAt"] = timestamp()
	item, err := r.store.Update(ctx, ticketKey(id), set, persistence.Guard{MustExist: true})
	if err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update ticket %s: %w", id, err)
	}
	return r.decode(item)
}

// Delete removes the ticket, returning the removed attributes.
func (r *ticketRepository) Delete(ctx context.Context, id string) (*domain.Ticket, error) {
	item, err := r.store.Delete(ctx, ticketKey(id), persistence.Guard{MustExist: true})
	if err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete ticket %s: %w", id, err)
	}
	return r.decode(item)
}

// decode unmarshals a ticket and normalizes its stored status.
func (r *ticketRepository) decode(item persistence.Item) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := fromItem(item, &ticket); err != nil {
		return nil, err
	}
	raw := string(ticket.Status)
	status, ok := domain.NormalizeTicketStatus(raw)
	if !ok {
		r.logger.Warn("unrecognized ticket status, defaulting to OPEN",
			zap.String("ticketId", ticket.TicketID),
			zap.String("status", raw))
	}
	ticket.Status = status
	return &ticket, nil
}
