package dto

import (
	"time"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// FlagTicketRequest payload. Roles the ticket's category does not admit are
// dropped server side.
type FlagTicketRequest struct {
	Roles   []domain.StaffRole `json:"roles"`
	Message string             `json:"message"`
}

// FlagResponse describes one flag on a ticket.
type FlagResponse struct {
	ID            string            `json:"id"`
	TicketID      string            `json:"ticket_id"`
	FlaggedToRole domain.StaffRole  `json:"flagged_to_role"`
	FlaggedByName string            `json:"flagged_by_name"`
	FlaggedByRole *domain.StaffRole `json:"flagged_by_role,omitempty"`
	Message       *string           `json:"message"`
	Resolved      bool              `json:"resolved"`
	ResolvedAt    *time.Time        `json:"resolved_at"`
	CreatedAt     time.Time         `json:"created_at"`
}

// FlaggedTicketResponse is one escalation queue entry.
type FlaggedTicketResponse struct {
	Flag      FlagResponse  `json:"flag"`
	Ticket    TicketSummary `json:"ticket"`
	OwnerName string        `json:"owner_name"`
}
