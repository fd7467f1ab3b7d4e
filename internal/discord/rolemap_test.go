package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

func TestNewRoleMapDropsUnknownRoles(t *testing.T) {
	m := NewRoleMap(map[string]string{
		"100": "MODERATOR",
		"200": "JANITOR",
		"300": "CEO",
	})

	assert.Len(t, m, 2)
	assert.Equal(t, domain.StaffRoleModerator, m["100"])
	assert.Equal(t, domain.StaffRoleCEO, m["300"])
}

func TestHighestRoleWinsByPriority(t *testing.T) {
	m := NewRoleMap(map[string]string{
		"100": "HELPER",
		"200": "COORDINATOR",
		"300": "SUPPORT",
	})

	role, ok := m.HighestRole([]string{"100", "300", "200", "999"})
	assert.True(t, ok)
	assert.Equal(t, domain.StaffRoleCoordinator, role)
}

func TestHighestRoleNoMappedRoles(t *testing.T) {
	m := NewRoleMap(map[string]string{"100": "HELPER"})

	_, ok := m.HighestRole([]string{"998", "999"})
	assert.False(t, ok)
	assert.False(t, m.HasStaffRole([]string{"999"}))
	assert.True(t, m.HasStaffRole([]string{"100", "999"}))
}
