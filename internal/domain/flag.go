package domain

import "time"

// TicketFlag escalates a ticket to the attention of a whole role. One flag per
// (ticket, role); re-flagging refreshes the record and clears its resolution.
type TicketFlag struct {
	ID            string
	TicketID      string
	FlaggedToRole StaffRole
	FlaggedByID   string
	Message       *string
	Resolved      bool
	ResolvedAt    *time.Time
	CreatedAt     time.Time

	// Resolved flagger info, filled by repository joins.
	FlaggedByName string
	FlaggedByRole *StaffRole
}
