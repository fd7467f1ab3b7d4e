package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/permissions"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

type flagServiceFixture struct {
	flags    *FlagService
	tickets  *TicketService
	flagRepo *memFlagRepo
	messages *memMessageRepo
	verifier *stubVerifier
	user     *domain.User
}

func newFlagFixture(t *testing.T) *flagServiceFixture {
	t.Helper()
	user := &domain.User{ID: "user-1", DiscordID: "999", Username: "driver"}
	ticketRepo := newMemTicketRepo()
	messageRepo := newMemMessageRepo()
	verifier := &stubVerifier{has: true}
	checker := permissions.NewChecker(permissions.Default(), verifier, verifier, nil)
	dispatcher := &recordingDispatcher{}

	tickets := NewTicketService(TicketDependencies{
		TicketRepo:     ticketRepo,
		MessageRepo:    messageRepo,
		AttachmentRepo: newMemAttachmentRepo(),
		UserRepo:       newMemUserRepo(user),
		Checker:        checker,
		Dispatcher:     dispatcher,
	})
	flags := NewFlagService(FlagDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		FlagRepo:    newMemFlagRepo(ticketRepo),
		Checker:     checker,
		Dispatcher:  dispatcher,
	})
	f := &flagServiceFixture{
		flags:    flags,
		tickets:  tickets,
		messages: messageRepo,
		verifier: verifier,
		user:     user,
	}
	f.flagRepo = flags.flags.(*memFlagRepo)
	return f
}

func (f *flagServiceFixture) openTicket(t *testing.T, category domain.TicketCategory) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), f.user, TicketCreateInput{
		Category: category, Subject: "Needs escalation", Message: "help",
	})
	require.NoError(t, err)
	return ticket
}

func TestFlagToRolesCreatesOnePerRole(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	ticket := f.openTicket(t, domain.CategorySupport)

	flags, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleModerator, domain.StaffRoleCoordinator}, "please review")
	require.NoError(t, err)
	require.Len(t, flags, 2)
	for _, flag := range flags {
		assert.False(t, flag.Resolved)
		require.NotNil(t, flag.Message)
		assert.Equal(t, "please review", *flag.Message)
		assert.Equal(t, staff.ID, flag.FlaggedByID)
	}

	system := f.messages.systemMessages(ticket.ID)
	require.Len(t, system, 1)
	assert.Contains(t, system[0].Content, "🚩")
	assert.Contains(t, system[0].Content, "Moderator")
	assert.Contains(t, system[0].Content, "Coordinator")
}

func TestFlagToRolesDropsInvalidTargetsSilently(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	ticket := f.openTicket(t, domain.CategorySupport)

	// HELPER can see SUPPORT, a made-up role cannot exist, and duplicates collapse.
	flags, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleHelper, domain.StaffRole("INTERN"), domain.StaffRoleHelper}, "")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.StaffRoleHelper, flags[0].FlaggedToRole)
}

func TestFlagToRolesRejectsWhenNothingValid(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	// DONATIONS admits only CEO/DEV; flag a SUPPORT ticket to a role that
	// cannot see SUPPORT at all.
	ticket := f.openTicket(t, domain.CategorySupport)

	_, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRole("INTERN")}, "")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestReflaggingRefreshesExistingFlag(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	ticket := f.openTicket(t, domain.CategorySupport)

	_, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleModerator}, "first")
	require.NoError(t, err)

	resolved, err := f.flags.ResolveMine(context.Background(), &domain.Staff{
		ID: "mod-1", Name: "Mod", Role: domain.StaffRoleModerator, Active: true,
	}, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved)

	// Re-flagging the same role reopens the single record.
	flags, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleModerator}, "second")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.False(t, flags[0].Resolved)
	assert.Equal(t, "second", *flags[0].Message)

	all, err := f.flagRepo.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveMineIsIdempotent(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	ticket := f.openTicket(t, domain.CategorySupport)

	mod := &domain.Staff{ID: "mod-1", Name: "Mod", Role: domain.StaffRoleModerator, Active: true}

	// Nothing flagged yet: still succeeds with zero resolved.
	resolved, err := f.flags.ResolveMine(context.Background(), mod, ticket.ID)
	require.NoError(t, err)
	assert.Zero(t, resolved)

	_, err = f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleModerator}, "")
	require.NoError(t, err)

	resolved, err = f.flags.ResolveMine(context.Background(), mod, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved)

	resolved, err = f.flags.ResolveMine(context.Background(), mod, ticket.ID)
	require.NoError(t, err)
	assert.Zero(t, resolved)
}

func TestListFlaggedForRoleHonorsCategoryAccess(t *testing.T) {
	f := newFlagFixture(t)
	coordinatorID := "111"
	coordinator := &domain.Staff{ID: coordinatorID, Name: "Coord", Role: domain.StaffRoleCoordinator, DiscordID: &coordinatorID, Active: true}
	ticket := f.openTicket(t, domain.CategoryReports)

	_, err := f.flags.FlagToRoles(context.Background(), coordinator, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleCoordinator}, "take over")
	require.NoError(t, err)

	queue, err := f.flags.ListFlaggedForRole(context.Background(), coordinator)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, ticket.ID, queue[0].Flag.TicketID)
	assert.Equal(t, domain.CategoryReports, queue[0].Ticket.Category)
}

func TestFlagHousingTicketToBrokerRoles(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	ticket := f.openTicket(t, domain.CategoryHousing)

	// SUPPORT holds HOUSING conditionally; the role is still a valid target
	// because its broker members can act on the ticket.
	flags, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleSupport}, "broker needed")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, domain.StaffRoleSupport, flags[0].FlaggedToRole)

	// HELPER has no HOUSING entry at all and is dropped.
	_, err = f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleHelper}, "")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListFlaggedForRoleHousingNeedsBrokerRole(t *testing.T) {
	f := newFlagFixture(t)
	staff := supportStaff()
	ticket := f.openTicket(t, domain.CategoryHousing)

	_, err := f.flags.FlagToRoles(context.Background(), staff, ticket.ID,
		[]domain.StaffRole{domain.StaffRoleModerator}, "")
	require.NoError(t, err)

	modID := "777"
	mod := &domain.Staff{ID: modID, Name: "Mod", Role: domain.StaffRoleModerator, DiscordID: &modID, Active: true}

	queue, err := f.flags.ListFlaggedForRole(context.Background(), mod)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, ticket.ID, queue[0].Flag.TicketID)

	// Without the broker role the entry disappears from the queue.
	f.verifier.has = false
	queue, err = f.flags.ListFlaggedForRole(context.Background(), mod)
	require.NoError(t, err)
	assert.Empty(t, queue)
}
