package domain

import "time"

// User is an end-user identified by their Discord account. Rows are upserted
// on every successful OAuth login.
type User struct {
	ID          string
	DiscordID   string
	Username    string
	DisplayName string
	Avatar      *string
	Email       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Name returns the preferred display name.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
