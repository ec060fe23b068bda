package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/solarcare/inverter-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventPasswordResetRequested EventType = "password_reset_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID   string `json:"ticket_id"`
	CustomerID string `json:"customer_id"`
	DeviceID   string `json:"device_id"`
	EmailID    string `json:"email_id,omitempty"`
	Message    string `json:"message"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  string              `json:"ticket_id"`
	EmailID   string              `json:"email_id,omitempty"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// PasswordResetRequestedPayload payload. Token is the raw reset credential.
type PasswordResetRequestedPayload struct {
	UserID    string    `json:"user_id"`
	EmailID   string    `json:"email_id"`
	Name      string    `json:"name"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
