package permissions

import (
	"context"

	"go.uber.org/zap"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// Table maps a staff role to the ticket categories it may act on. The HOUSING
// entry marks potential access only: non-exempt roles additionally need the
// broker role on Discord, verified live.
type Table map[domain.StaffRole][]domain.TicketCategory

// Default returns the static permission table.
func Default() Table {
	return Table{
		domain.StaffRoleHelper:    {domain.CategorySupport, domain.CategoryBugs},
		domain.StaffRoleSupport:   {domain.CategorySupport, domain.CategoryBugs, domain.CategoryBoost, domain.CategoryHousing},
		domain.StaffRoleModerator: {domain.CategorySupport, domain.CategoryBugs, domain.CategoryBoost, domain.CategoryHousing},
		domain.StaffRoleCoordinator: {
			domain.CategorySupport, domain.CategoryBugs, domain.CategoryBoost,
			domain.CategoryHousing, domain.CategoryReports, domain.CategoryReview,
		},
		domain.StaffRoleCommunityManager: {
			domain.CategorySupport, domain.CategoryBugs, domain.CategoryBoost,
			domain.CategoryHousing, domain.CategoryReports, domain.CategoryReview,
		},
		domain.StaffRoleCEO: {
			domain.CategorySupport, domain.CategoryBugs, domain.CategoryDonations,
			domain.CategoryBoost, domain.CategoryHousing, domain.CategoryReports, domain.CategoryReview,
		},
		domain.StaffRoleDev: {
			domain.CategorySupport, domain.CategoryBugs, domain.CategoryDonations,
			domain.CategoryBoost, domain.CategoryHousing, domain.CategoryReports, domain.CategoryReview,
		},
	}
}

// BrokerVerifier checks whether a Discord member holds the broker role.
type BrokerVerifier interface {
	HasBrokerRole(ctx context.Context, discordID string) (bool, error)
}

// Checker answers role/category access questions against an immutable table.
//
// Two forms coexist on purpose. CanAccess is synchronous and default-denies
// HOUSING for non-exempt roles; it is only suitable for list filtering, where
// a false negative hides a row. CanAccessLive performs the broker check and
// must gate every write action (status change, close, message, flagging).
type Checker struct {
	table  Table
	live   BrokerVerifier
	cached BrokerVerifier
	logger *zap.Logger
}

// NewChecker builds a checker. cached may be nil, in which case listing paths
// fall back to the live verifier.
func NewChecker(table Table, live, cached BrokerVerifier, logger *zap.Logger) *Checker {
	if cached == nil {
		cached = live
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{table: table, live: live, cached: cached, logger: logger}
}

func (c *Checker) tableAllows(role domain.StaffRole, category domain.TicketCategory) bool {
	for _, allowed := range c.table[role] {
		if allowed == category {
			return true
		}
	}
	return false
}

// housingExempt reports whether the role bypasses the broker check entirely.
func housingExempt(role domain.StaffRole) bool {
	switch role {
	case domain.StaffRoleCommunityManager, domain.StaffRoleCEO, domain.StaffRoleDev:
		return true
	}
	return false
}

// RoleCoversCategory answers whether the table grants the role the category
// at all. HOUSING's conditional entry counts as covered: the question is about
// the role, and individual members can satisfy the broker requirement. Use
// CanAccess/CanAccessLive when the subject is a specific staff member.
func (c *Checker) RoleCoversCategory(role domain.StaffRole, category domain.TicketCategory) bool {
	return c.tableAllows(role, category)
}

// CanAccess is the synchronous check. Unknown roles get an empty permission
// set; HOUSING is denied for any role that would need live verification.
func (c *Checker) CanAccess(role domain.StaffRole, category domain.TicketCategory) bool {
	if !c.tableAllows(role, category) {
		return false
	}
	if category == domain.CategoryHousing && !housingExempt(role) {
		return false
	}
	return true
}

// CanAccessLive is the authoritative check for write actions. Verifier
// failures deny access (fail closed).
func (c *Checker) CanAccessLive(ctx context.Context, staff *domain.Staff, category domain.TicketCategory) bool {
	if staff == nil {
		return false
	}
	if !c.tableAllows(staff.Role, category) {
		return false
	}
	if category != domain.CategoryHousing || housingExempt(staff.Role) {
		return true
	}
	if staff.DiscordID == nil || c.live == nil {
		return false
	}
	has, err := c.live.HasBrokerRole(ctx, *staff.DiscordID)
	if err != nil {
		c.logger.Warn("broker role check failed, denying housing access",
			zap.String("discord_id", *staff.DiscordID), zap.Error(err))
		return false
	}
	return has
}

// AllowedCategories resolves the full category set for a staff member,
// extending the table with HOUSING when the cached broker check passes.
func (c *Checker) AllowedCategories(ctx context.Context, staff *domain.Staff) []domain.TicketCategory {
	if staff == nil {
		return nil
	}
	base := c.table[staff.Role]
	out := make([]domain.TicketCategory, 0, len(base))
	for _, category := range base {
		if category == domain.CategoryHousing && !housingExempt(staff.Role) {
			if staff.DiscordID == nil || c.cached == nil {
				continue
			}
			has, err := c.cached.HasBrokerRole(ctx, *staff.DiscordID)
			if err != nil || !has {
				continue
			}
		}
		out = append(out, category)
	}
	return out
}
