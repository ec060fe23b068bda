package domain

import "strings"

// TicketStatus enumerates lifecycle states for tickets. Any status may move to any other.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
)

// TicketStatuses lists the canonical statuses.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusCompleted}

// legacyStatuses maps every known stored spelling to its canonical status.
var legacyStatuses = map[string]TicketStatus{
	"OPEN":        TicketStatusOpen,
	"NEW":         TicketStatusOpen,
	"PENDING":     TicketStatusOpen,
	"IN_PROGRESS": TicketStatusInProgress,
	"IN-PROGRESS": TicketStatusInProgress,
	"INPROGRESS":  TicketStatusInProgress,
	"PROCESSING":  TicketStatusInProgress,
	"WORKING":     TicketStatusInProgress,
	"COMPLETED":   TicketStatusCompleted,
	"COMPLETE":    TicketStatusCompleted,
	"DONE":        TicketStatusCompleted,
	"RESOLVED":    TicketStatusCompleted,
	"CLOSED":      TicketStatusCompleted,
}

// NormalizeTicketStatus maps a stored status to the canonical set.
// Unrecognized values yield OPEN and ok=false.
func NormalizeTicketStatus(raw string) (status TicketStatus, ok bool) {
	if status, ok := legacyStatuses[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return status, true
	}
	return TicketStatusOpen, false
}

// Valid reports whether s is one of the canonical statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Ticket is a support request raised against a customer's device.
type Ticket struct {
	TicketID   string       `json:"ticketId" dynamodbav:"ticketId" validate:"required"`
	CustomerID string       `json:"customerId" dynamodbav:"customerId"`
	DeviceID   string       `json:"deviceId" dynamodbav:"deviceId"`
	EmailID    string       `json:"emailId,omitempty" dynamodbav:"emailId,omitempty"`
	Message    string       `json:"message" dynamodbav:"message"`
	Status     TicketStatus `json:"status" dynamodbav:"status" validate:"oneof=OPEN IN_PROGRESS COMPLETED"`
	AssignedTo string       `json:"assignedTo,omitempty" dynamodbav:"assignedTo,omitempty"`
	Note       string       `json:"note,omitempty" dynamodbav:"note,omitempty"`
	CreatedAt  string       `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt  string       `json:"updatedAt" dynamodbav:"updatedAt"`
}
