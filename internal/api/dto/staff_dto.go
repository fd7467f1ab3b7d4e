package dto

import "github.com/JulianoPassing/scc-tickets/internal/domain"

// StaffDirectoryEntry lists a colleague in the staff directory.
type StaffDirectoryEntry struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Role      domain.StaffRole `json:"role"`
	RoleLabel string           `json:"role_label"`
	Avatar    *string          `json:"avatar"`
}

// UploadResponse returns the hosted file location.
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}
