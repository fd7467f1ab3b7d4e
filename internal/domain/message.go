package domain

import "time"

// Message captures one entry in a ticket conversation. Exactly one of UserID,
// StaffID or IsSystem identifies the author.
type Message struct {
	ID          string
	TicketID    string
	Content     string
	UserID      *string
	StaffID     *string
	IsSystem    bool
	Attachments []Attachment
	CreatedAt   time.Time

	// Resolved author info, filled by repository joins for rendering.
	AuthorName string
	AuthorRole *StaffRole
}

// HasContent reports whether the message carries text or at least one attachment.
func (m *Message) HasContent() bool {
	return m.Content != "" || len(m.Attachments) > 0
}

// Attachment stores metadata for an externally hosted file.
type Attachment struct {
	ID        string
	MessageID string
	URL       string
	Filename  string
	MimeType  string
	Size      int64
	CreatedAt time.Time
}

// IsImage reports whether the attachment can be previewed inline.
func (a *Attachment) IsImage() bool {
	switch a.MimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
