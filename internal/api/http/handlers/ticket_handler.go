package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/api/dto"
	"github.com/solarcare/inverter-service/internal/repository"
	"github.com/solarcare/inverter-service/internal/service"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// TicketHandler manages customer ticket endpoints.
type TicketHandler struct {
	tickets *service.TicketService
}

// NewTicketHandler constructs handler.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Create handles POST /api/customer/ticket.
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		CustomerID: req.CustomerID,
		DeviceID:   req.DeviceID,
		EmailID:    req.EmailID,
		Message:    req.Message,
		AssignedTo: req.AssignedTo,
		Note:       req.Note,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.TicketCreatedResponse{
		Success:  true,
		TicketID: ticket.TicketID,
		Message:  "Ticket created successfully",
	})
}

// List handles GET /api/customer/ticket?customer_id=&status=.
func (h *TicketHandler) List(c *fiber.Ctx) error {
	filter := repository.TicketFilter{CustomerID: strings.TrimSpace(c.Query("customer_id"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := service.ParseTicketStatus(raw)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.TicketListResponse{Success: true, Tickets: tickets})
}

// Replace handles PUT /api/customer/ticket. A body with only ticketId and status
// changes the status; any other field makes it a full update.
func (h *TicketHandler) Replace(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if req.StatusOnly() {
		if strings.TrimSpace(req.Status) == "" {
			return apperrors.NewValidationError("validation failed", []string{"status is required"})
		}
		status, err := service.ParseTicketStatus(req.Status)
		if err != nil {
			return err
		}
		ticket, err := h.tickets.UpdateStatus(c.UserContext(), req.TicketID, status)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, dto.TicketResponse{Success: true, Message: "Ticket status updated", Ticket: *ticket})
	}

	update := repository.TicketUpdate{
		CustomerID: req.CustomerID,
		DeviceID:   req.DeviceID,
		EmailID:    req.EmailID,
		Message:    trimmed(req.Message),
		AssignedTo: req.AssignedTo,
		Note:       req.Note,
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := service.ParseTicketStatus(req.Status)
		if err != nil {
			return err
		}
		update.Status = &status
	}

	ticket, err := h.tickets.Update(c.UserContext(), req.TicketID, update)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.TicketResponse{Success: true, Message: "Ticket updated successfully", Ticket: *ticket})
}

// Patch handles PATCH /api/customer/ticket for status, assignee and note.
func (h *TicketHandler) Patch(c *fiber.Ctx) error {
	var req dto.PatchTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status == nil && req.AssignedTo == nil && req.Note == nil {
		return apperrors.NewValidationError("no fields to update", []string{"one of status, assignedTo, note is required"})
	}

	update := repository.TicketUpdate{AssignedTo: req.AssignedTo, Note: req.Note}
	if req.Status != nil {
		status, err := service.ParseTicketStatus(*req.Status)
		if err != nil {
			return err
		}
		update.Status = &status
	}

	ticket, err := h.tickets.Update(c.UserContext(), req.TicketID, update)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.TicketResponse{Success: true, Message: "Ticket updated successfully", Ticket: *ticket})
}

// Delete handles DELETE /api/customer/ticket?ticket_id=.
func (h *TicketHandler) Delete(c *fiber.Ctx) error {
	id, err := requireQuery(c, "ticket_id")
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.TicketDeletedResponse{Success: true, Ticket: *ticket, Message: "Ticket deleted successfully"})
}
