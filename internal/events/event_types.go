package events

import (
	"time"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketMessageAdded    EventType = "ticket_message_added"
	EventTicketClosed          EventType = "ticket_closed"
	EventTicketCategoryChanged EventType = "ticket_category_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketFlagged         EventType = "ticket_flagged"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
	Name    string             `json:"name,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketRef carries the ticket fields notifications render.
type TicketRef struct {
	TicketNumber   int                   `json:"ticket_number"`
	Category       domain.TicketCategory `json:"category"`
	Subject        string                `json:"subject"`
	OwnerDiscordID string                `json:"owner_discord_id"`
	OwnerUserID    string                `json:"owner_user_id"`
	TicketPagePath string                `json:"ticket_page_path"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket TicketRef `json:"ticket"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Ticket      TicketRef `json:"ticket"`
	MessageID   string    `json:"message_id"`
	BodyPreview string    `json:"body_preview"`
	StaffName   string    `json:"staff_name,omitempty"`
	NotifyUser  bool      `json:"notify_user"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Ticket    TicketRef `json:"ticket"`
	Reason    string    `json:"reason"`
	StaffName string    `json:"staff_name"`
}

// TicketCategoryChangedPayload payload.
type TicketCategoryChangedPayload struct {
	Ticket      TicketRef             `json:"ticket"`
	OldCategory domain.TicketCategory `json:"old_category"`
	NewCategory domain.TicketCategory `json:"new_category"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Ticket          TicketRef `json:"ticket"`
	AssigneeStaffID *string   `json:"assignee_staff_id,omitempty"`
}

// TicketFlaggedPayload payload.
type TicketFlaggedPayload struct {
	Ticket  TicketRef          `json:"ticket"`
	Roles   []domain.StaffRole `json:"roles"`
	Message string             `json:"message,omitempty"`
}
