package dto

import (
	"time"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Category    domain.TicketCategory `json:"category"`
	Subject     string                `json:"subject"`
	Message     string                `json:"message"`
	Attachments []AttachmentInput     `json:"attachments"`
}

// AttachmentInput references a hosted file to link to a message.
type AttachmentInput struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content     string            `json:"content"`
	Attachments []AttachmentInput `json:"attachments"`
	NotifyUser  bool              `json:"notify_user"`
}

// UpdateTicketRequest is the staff PATCH payload; only set fields apply.
type UpdateTicketRequest struct {
	Status       *domain.TicketStatus   `json:"status"`
	Subject      *string                `json:"subject"`
	Category     *domain.TicketCategory `json:"category"`
	AssignToSelf *bool                  `json:"assign_to_self"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Reason string `json:"reason"`
}

// TicketSummary response.
type TicketSummary struct {
	ID             string                `json:"id"`
	TicketNumber   int                   `json:"ticket_number"`
	Category       domain.TicketCategory `json:"category"`
	CategoryLabel  string                `json:"category_label"`
	Subject        string                `json:"subject"`
	Status         domain.TicketStatus   `json:"status"`
	AssignedToName *string               `json:"assigned_to_name"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	ClosedAt       *time.Time            `json:"closed_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	ClosedReason *string           `json:"closed_reason"`
	Messages     []MessageResponse `json:"messages"`
}

// MessageResponse represents one conversation entry.
type MessageResponse struct {
	ID          string               `json:"id"`
	Content     string               `json:"content"`
	AuthorName  string               `json:"author_name"`
	AuthorRole  *domain.StaffRole    `json:"author_role,omitempty"`
	IsStaff     bool                 `json:"is_staff"`
	IsSystem    bool                 `json:"is_system"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// CategoryResponse describes one selectable category.
type CategoryResponse struct {
	ID          domain.TicketCategory `json:"id"`
	Name        string                `json:"name"`
	Emoji       string                `json:"emoji"`
	Description string                `json:"description"`
	Color       string                `json:"color"`
}
