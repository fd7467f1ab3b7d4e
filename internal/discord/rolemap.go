package discord

import (
	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// RoleMap maps Discord guild role IDs to internal staff roles.
type RoleMap map[string]domain.StaffRole

// NewRoleMap converts the raw config mapping, dropping entries whose staff
// role is unknown.
func NewRoleMap(raw map[string]string) RoleMap {
	out := make(RoleMap, len(raw))
	for discordRoleID, role := range raw {
		staffRole := domain.StaffRole(role)
		if staffRole.Valid() {
			out[discordRoleID] = staffRole
		}
	}
	return out
}

// HighestRole resolves a member's role set to the single highest-priority
// staff role. The second return is false when no role maps.
func (m RoleMap) HighestRole(discordRoleIDs []string) (domain.StaffRole, bool) {
	var best domain.StaffRole
	bestPriority := -1
	for _, roleID := range discordRoleIDs {
		staffRole, ok := m[roleID]
		if !ok {
			continue
		}
		if priority := domain.RolePriority[staffRole]; priority > bestPriority {
			bestPriority = priority
			best = staffRole
		}
	}
	return best, bestPriority >= 0
}

// HasStaffRole reports whether any of the member's Discord roles maps to a
// staff role at all.
func (m RoleMap) HasStaffRole(discordRoleIDs []string) bool {
	_, ok := m.HighestRole(discordRoleIDs)
	return ok
}
