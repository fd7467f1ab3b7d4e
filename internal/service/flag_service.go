package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/events"
	"github.com/JulianoPassing/scc-tickets/internal/permissions"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

// FlagService escalates tickets to specific staff roles.
type FlagService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	flags      repository.FlagRepository
	checker    *permissions.Checker
	dispatcher events.Dispatcher
}

// FlagDependencies bundles collaborators for the flag service.
type FlagDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	FlagRepo    repository.FlagRepository
	Checker     *permissions.Checker
	Dispatcher  events.Dispatcher
}

// NewFlagService constructs the service.
func NewFlagService(deps FlagDependencies) *FlagService {
	return &FlagService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		flags:      deps.FlagRepo,
		checker:    deps.Checker,
		dispatcher: deps.Dispatcher,
	}
}

// FlagToRoles raises one flag per target role. Roles that could not act on
// the ticket's category are dropped silently; if nothing remains the request
// is rejected. Re-flagging a role refreshes the existing flag and reopens it.
func (s *FlagService) FlagToRoles(ctx context.Context, staff *domain.Staff, ticketID string, targetRoles []domain.StaffRole, message string) ([]domain.TicketFlag, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanAccessLive(ctx, staff, ticket.Category) {
		return nil, apperrors.NewForbidden("no access to this ticket category")
	}

	var valid []domain.StaffRole
	seen := make(map[domain.StaffRole]struct{})
	for _, role := range targetRoles {
		if !role.Valid() {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		// A role whose permission set excludes the category would get a flag
		// it can never act on. HOUSING stays targetable for roles the table
		// covers; brokers within the role pick it up.
		if !s.checker.RoleCoversCategory(role, ticket.Category) {
			continue
		}
		valid = append(valid, role)
	}
	if len(valid) == 0 {
		return nil, apperrors.NewValidationError("no valid target roles for this ticket", nil)
	}

	message = strings.TrimSpace(message)
	var messagePtr *string
	if message != "" {
		messagePtr = &message
	}

	result := make([]domain.TicketFlag, 0, len(valid))
	for _, role := range valid {
		flag := &domain.TicketFlag{
			TicketID:      ticket.ID,
			FlaggedToRole: role,
			FlaggedByID:   staff.ID,
			FlaggedByName: staff.Name,
			FlaggedByRole: &staff.Role,
			Message:       messagePtr,
		}
		if err := s.flags.UpsertRoleFlag(ctx, flag); err != nil {
			return nil, err
		}
		result = append(result, *flag)
	}

	labels := make([]string, len(valid))
	for i, role := range valid {
		labels[i] = role.Label()
	}
	content := fmt.Sprintf("🚩 Ticket flagged to %s by %s", strings.Join(labels, ", "), staff.Name)
	if message != "" {
		content += ": " + message
	}
	system := &domain.Message{TicketID: ticket.ID, Content: content, IsSystem: true}
	if err := s.messages.Create(ctx, system); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		ref := events.TicketRef{
			TicketNumber:   ticket.TicketNumber,
			Category:       ticket.Category,
			Subject:        ticket.Subject,
			OwnerUserID:    ticket.UserID,
			TicketPagePath: fmt.Sprintf("/tickets/%s", ticket.ID),
		}
		event := events.Event{
			Type:     events.EventTicketFlagged,
			TicketID: ticket.ID,
			Actor:    staffActor(staff),
			Payload: events.TicketFlaggedPayload{
				Ticket:  ref,
				Roles:   valid,
				Message: message,
			},
		}
		publishWithIdentity(ctx, s.dispatcher, event)
	}
	return result, nil
}

// ListTicketFlags returns all flags on a ticket, newest first.
func (s *FlagService) ListTicketFlags(ctx context.Context, staff *domain.Staff, ticketID string) ([]domain.TicketFlag, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanAccessLive(ctx, staff, ticket.Category) {
		return nil, apperrors.NewForbidden("no access to this ticket category")
	}
	return s.flags.ListByTicket(ctx, ticket.ID)
}

// ResolveMine clears the flag aimed at the caller's role. Resolving when no
// flag exists is a no-op, not an error.
func (s *FlagService) ResolveMine(ctx context.Context, staff *domain.Staff, ticketID string) (int64, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return 0, err
	}
	if !s.checker.CanAccessLive(ctx, staff, ticket.Category) {
		return 0, apperrors.NewForbidden("no access to this ticket category")
	}
	return s.flags.ResolveForRole(ctx, ticket.ID, staff.Role)
}

// ListFlaggedForRole returns the caller's escalation queue: unresolved flags
// aimed at their role, filtered down to categories they may see.
func (s *FlagService) ListFlaggedForRole(ctx context.Context, staff *domain.Staff) ([]repository.FlagWithTicket, error) {
	entries, err := s.flags.ListUnresolvedByRoles(ctx, []domain.StaffRole{staff.Role})
	if err != nil {
		return nil, err
	}
	visible := make([]repository.FlagWithTicket, 0, len(entries))
	for _, entry := range entries {
		if s.checker.CanAccess(staff.Role, entry.Ticket.Category) {
			visible = append(visible, entry)
			continue
		}
		// HOUSING needs the live check; the sync form denies it outright.
		if entry.Ticket.Category == domain.CategoryHousing && s.checker.CanAccessLive(ctx, staff, entry.Ticket.Category) {
			visible = append(visible, entry)
		}
	}
	return visible, nil
}
