package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleHelper           StaffRole = "HELPER"
	StaffRoleSupport          StaffRole = "SUPPORT"
	StaffRoleModerator        StaffRole = "MODERATOR"
	StaffRoleCoordinator      StaffRole = "COORDINATOR"
	StaffRoleCommunityManager StaffRole = "COMMUNITY_MANAGER"
	StaffRoleCEO              StaffRole = "CEO"
	StaffRoleDev              StaffRole = "DEV"
)

// RoleLabels maps roles to display names.
var RoleLabels = map[StaffRole]string{
	StaffRoleHelper:           "Helper",
	StaffRoleSupport:          "Support",
	StaffRoleModerator:        "Moderator",
	StaffRoleCoordinator:      "Coordinator",
	StaffRoleCommunityManager: "Community Manager",
	StaffRoleCEO:              "CEO",
	StaffRoleDev:              "Developer",
}

// RolePriority orders roles; when a Discord member maps to several roles the
// highest priority wins.
var RolePriority = map[StaffRole]int{
	StaffRoleCEO:              100,
	StaffRoleDev:              100,
	StaffRoleCommunityManager: 80,
	StaffRoleCoordinator:      60,
	StaffRoleModerator:        40,
	StaffRoleSupport:          20,
	StaffRoleHelper:           10,
}

// Valid reports whether the role is a known staff role.
func (r StaffRole) Valid() bool {
	_, ok := RoleLabels[r]
	return ok
}

// Label returns the display name for the role, falling back to the raw value.
func (r StaffRole) Label() string {
	if label, ok := RoleLabels[r]; ok {
		return label
	}
	return string(r)
}

// Staff models a support operator. Two identity strategies coexist: database
// rows with a username and bcrypt hash, and ephemeral records derived from a
// Discord guild member at login (no row, role resolved live).
type Staff struct {
	ID           string
	Username     string
	Name         string
	Role         StaffRole
	PasswordHash *string
	DiscordID    *string
	Avatar       *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
