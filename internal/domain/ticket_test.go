package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTicketStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   TicketStatus
		wantOK bool
	}{
		{"OPEN", TicketStatusOpen, true},
		{"open", TicketStatusOpen, true},
		{"  New ", TicketStatusOpen, true},
		{"PENDING", TicketStatusOpen, true},
		{"IN_PROGRESS", TicketStatusInProgress, true},
		{"in-progress", TicketStatusInProgress, true},
		{"InProgress", TicketStatusInProgress, true},
		{"PROCESSING", TicketStatusInProgress, true},
		{"working", TicketStatusInProgress, true},
		{"COMPLETED", TicketStatusCompleted, true},
		{"complete", TicketStatusCompleted, true},
		{"DONE", TicketStatusCompleted, true},
		{"Resolved", TicketStatusCompleted, true},
		{"closed", TicketStatusCompleted, true},
		{"", TicketStatusOpen, false},
		{"ESCALATED", TicketStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeTicketStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, got.Valid())
		})
	}
}

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, TicketStatusInProgress.Valid())
	assert.False(t, TicketStatus("DONE").Valid())
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" super_admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, role)
	assert.True(t, role.IsAdmin())
	assert.False(t, RoleTechnician.IsAdmin())
	assert.False(t, RoleCustomer.IsAdmin())

	_, ok = ParseRole("guest")
	assert.False(t, ok)
}
