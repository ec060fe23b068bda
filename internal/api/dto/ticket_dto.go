package dto

import "github.com/solarcare/inverter-service/internal/domain"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID string `json:"customerId" validate:"required,notblank"`
	DeviceID   string `json:"deviceId" validate:"required,notblank"`
	EmailID    string `json:"emailId" validate:"omitempty,email"`
	Message    string `json:"message" validate:"required,notblank,max=1000"`
	AssignedTo string `json:"assignedTo"`
	Note       string `json:"note" validate:"omitempty,max=2000"`
}

// UpdateTicketRequest is either a status change ({ticketId,status}) or a full update.
type UpdateTicketRequest struct {
	TicketID   string  `json:"ticketId" validate:"required"`
	Status     string  `json:"status"`
	CustomerID *string `json:"customerId" validate:"omitnil,notblank"`
	DeviceID   *string `json:"deviceId" validate:"omitnil,notblank"`
	EmailID    *string `json:"emailId" validate:"omitempty,email"`
	Message    *string `json:"message" validate:"omitnil,notblank,max=1000"`
	AssignedTo *string `json:"assignedTo"`
	Note       *string `json:"note" validate:"omitempty,max=2000"`
}

// StatusOnly reports whether the request only changes the status.
func (r UpdateTicketRequest) StatusOnly() bool {
	return r.CustomerID == nil && r.DeviceID == nil && r.EmailID == nil &&
		r.Message == nil && r.AssignedTo == nil && r.Note == nil
}

// PatchTicketRequest payload. At least one of the optional fields must be present.
type PatchTicketRequest struct {
	TicketID   string  `json:"ticketId" validate:"required"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assignedTo"`
	Note       *string `json:"note" validate:"omitempty,max=2000"`
}

// TicketCreatedResponse is returned after ticket creation.
type TicketCreatedResponse struct {
	Success  bool   `json:"success" validate:"eq=true"`
	TicketID string `json:"ticketId" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

// TicketListResponse lists tickets.
type TicketListResponse struct {
	Success bool            `json:"success" validate:"eq=true"`
	Tickets []domain.Ticket `json:"tickets" validate:"dive"`
}

// TicketResponse wraps an updated ticket.
type TicketResponse struct {
	Success bool          `json:"success" validate:"eq=true"`
	Message string        `json:"message" validate:"required"`
	Ticket  domain.Ticket `json:"ticket"`
}

// TicketDeletedResponse wraps a removed ticket.
type TicketDeletedResponse struct {
	Success bool          `json:"success" validate:"eq=true"`
	Ticket  domain.Ticket `json:"ticket"`
	Message string        `json:"message" validate:"required"`
}
