package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "OPEN"
	TicketStatusInProgress    TicketStatus = "IN_PROGRESS"
	TicketStatusAwaitingReply TicketStatus = "AWAITING_REPLY"
	TicketStatusClosed        TicketStatus = "CLOSED"
)

// ActiveStatuses lists every non-terminal status. A user may hold at most one
// ticket in these statuses per category.
func ActiveStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusAwaitingReply}
}

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusAwaitingReply, TicketStatusClosed:
		return true
	}
	return false
}

// TicketCategory classifies a ticket and controls which staff roles may act on it.
type TicketCategory string

const (
	CategorySupport   TicketCategory = "SUPPORT"
	CategoryBugs      TicketCategory = "BUGS"
	CategoryReports   TicketCategory = "REPORTS"
	CategoryDonations TicketCategory = "DONATIONS"
	CategoryBoost     TicketCategory = "BOOST"
	CategoryHousing   TicketCategory = "HOUSING"
	CategoryReview    TicketCategory = "REVIEW"
)

// CategoryInfo carries display metadata for a category.
type CategoryInfo struct {
	ID          TicketCategory
	Name        string
	Emoji       string
	Description string
	Color       string
}

// Categories is the fixed category set, in panel display order.
var Categories = []CategoryInfo{
	{ID: CategorySupport, Name: "Support", Emoji: "📁", Description: "Technical support and general help", Color: "#6366F1"},
	{ID: CategoryBugs, Name: "Bug Reports", Emoji: "🦠", Description: "Report errors and technical problems", Color: "#22C55E"},
	{ID: CategoryReports, Name: "Reports", Emoji: "⚠️", Description: "Report infractions and conduct issues", Color: "#EF4444"},
	{ID: CategoryDonations, Name: "Donations", Emoji: "💎", Description: "Donation-related matters", Color: "#A855F7"},
	{ID: CategoryBoost, Name: "Boost", Emoji: "🚀", Description: "Support for server boosters", Color: "#EC4899"},
	{ID: CategoryHousing, Name: "Housing", Emoji: "🏠", Description: "Houses and property matters", Color: "#F59E0B"},
	{ID: CategoryReview, Name: "Review", Emoji: "🔍", Description: "Request review of decisions and penalties", Color: "#06B6D4"},
}

// CategoryByID looks up display metadata for a category.
func CategoryByID(id TicketCategory) (CategoryInfo, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return CategoryInfo{}, false
}

// Valid reports whether the category belongs to the fixed set.
func (c TicketCategory) Valid() bool {
	_, ok := CategoryByID(c)
	return ok
}

// Label returns the human readable category name, falling back to the raw value.
func (c TicketCategory) Label() string {
	if info, ok := CategoryByID(c); ok {
		return info.Name
	}
	return string(c)
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	TicketNumber   int
	UserID         string
	Category       TicketCategory
	Subject        string
	Status         TicketStatus
	AssignedToID   *string
	AssignedToName *string
	ClosedReason   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
}

// IsClosed reports whether the ticket reached its terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}
