package dto

import "github.com/JulianoPassing/scc-tickets/internal/domain"

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse describes the authenticated end-user.
type UserResponse struct {
	ID          string  `json:"id"`
	DiscordID   string  `json:"discord_id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Avatar      *string `json:"avatar"`
}

// StaffResponse describes the authenticated staff member.
type StaffResponse struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Name      string           `json:"name"`
	Role      domain.StaffRole `json:"role"`
	RoleLabel string           `json:"role_label"`
	Avatar    *string          `json:"avatar"`
}
