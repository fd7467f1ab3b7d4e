package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/events"
	"github.com/JulianoPassing/scc-tickets/internal/permissions"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

const defaultCloseReason = "Closed by staff"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	messages    repository.MessageRepository
	attachments repository.AttachmentRepository
	users       repository.UserRepository
	checker     *permissions.Checker
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.MessageRepository
	AttachmentRepo repository.AttachmentRepository
	UserRepo       repository.UserRepository
	Checker        *permissions.Checker
	Dispatcher     events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		attachments: deps.AttachmentRepo,
		users:       deps.UserRepo,
		checker:     deps.Checker,
		dispatcher:  deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Category    domain.TicketCategory
	Subject     string
	Message     string
	Attachments []AttachmentInput
}

// AttachmentInput references an already-hosted file.
type AttachmentInput struct {
	URL      string
	Filename string
	MimeType string
	Size     int64
}

// TicketStaffFilter describes staff listing filters.
type TicketStaffFilter struct {
	Categories  []domain.TicketCategory
	Statuses    []domain.TicketStatus
	AssignedTo  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CreateTicket opens a ticket for a user with its initial message. A user may
// hold only one non-closed ticket per category.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	body := strings.TrimSpace(input.Message)
	if body == "" && len(input.Attachments) == 0 {
		return nil, apperrors.NewValidationError("message is required", nil)
	}

	existing, err := s.tickets.FindActiveByUserCategory(ctx, user.ID, input.Category)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateCategoryError(input.Category)
	}

	ticket := &domain.Ticket{
		UserID:   user.ID,
		Category: input.Category,
		Subject:  subject,
		Status:   domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		// Concurrent creation can slip past the lookup above; the partial
		// unique index catches it.
		if errors.Is(err, repository.ErrDuplicateActiveTicket) {
			return nil, duplicateCategoryError(input.Category)
		}
		return nil, err
	}

	msg := &domain.Message{
		TicketID:   ticket.ID,
		Content:    body,
		UserID:     &user.ID,
		AuthorName: user.Name(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.attachInputs(ctx, msg, input.Attachments); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(user),
		Payload:  events.TicketCreatedPayload{Ticket: s.ticketRef(ctx, ticket)},
	})
	return ticket, nil
}

// ListUserTickets returns the user's own tickets, most recently updated first.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, statuses []domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		UserID:   &userID,
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetTicketForUser fetches a ticket with its conversation, ensuring ownership.
// A foreign ticket reads as not found rather than forbidden.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.UserID != userID {
		return nil, nil, apperrors.NewNotFound("ticket", nil)
	}
	msgs, err := s.conversation(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// ListStaffTickets returns tickets in the categories the staff member may see.
// Listing uses the cached broker check; a stale cache only hides or shows rows
// and never authorizes a write.
func (s *TicketService) ListStaffTickets(ctx context.Context, staff *domain.Staff, filter TicketStaffFilter) ([]domain.Ticket, error) {
	allowed := s.checker.AllowedCategories(ctx, staff)
	if len(allowed) == 0 {
		return []domain.Ticket{}, nil
	}
	categories := allowed
	if len(filter.Categories) > 0 {
		categories = intersectCategories(filter.Categories, allowed)
		if len(categories) == 0 {
			return []domain.Ticket{}, nil
		}
	}
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Categories:   categories,
		Statuses:     filter.Statuses,
		AssignedToID: filter.AssignedTo,
		SearchTerm:   filter.SearchTerm,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

// GetTicketForStaff fetches a ticket with its conversation after a live
// permission check on its category.
func (s *TicketService) GetTicketForStaff(ctx context.Context, staff *domain.Staff, ticketID string) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.conversation(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// AddUserMessage appends a user reply. Replying flips the ticket to
// AWAITING_REPLY so staff see it needs attention.
func (s *TicketService) AddUserMessage(ctx context.Context, user *domain.User, ticketID, content string, attachments []AttachmentInput) (*domain.Message, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != user.ID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	body := strings.TrimSpace(content)
	if body == "" && len(attachments) == 0 {
		return nil, apperrors.NewValidationError("message is required", nil)
	}

	msg := &domain.Message{
		TicketID:   ticket.ID,
		Content:    body,
		UserID:     &user.ID,
		AuthorName: user.Name(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.attachInputs(ctx, msg, attachments); err != nil {
		return nil, err
	}

	if ticket.Status != domain.TicketStatusAwaitingReply {
		ticket.Status = domain.TicketStatusAwaitingReply
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    userActor(user),
		Payload: events.TicketMessageAddedPayload{
			Ticket:      s.ticketRef(ctx, ticket),
			MessageID:   msg.ID,
			BodyPreview: preview(msg.Content, 120),
		},
	})
	return msg, nil
}

// AddStaffMessage appends a staff reply after a live permission check. The
// first responder claims the ticket; notifyUser asks for a DM to the owner.
func (s *TicketService) AddStaffMessage(ctx context.Context, staff *domain.Staff, ticketID, content string, attachments []AttachmentInput, notifyUser bool) (*domain.Message, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	body := strings.TrimSpace(content)
	if body == "" && len(attachments) == 0 {
		return nil, apperrors.NewValidationError("message is required", nil)
	}

	msg := &domain.Message{
		TicketID:   ticket.ID,
		Content:    body,
		StaffID:    &staff.ID,
		AuthorName: staff.Name,
		AuthorRole: &staff.Role,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.attachInputs(ctx, msg, attachments); err != nil {
		return nil, err
	}

	changed := false
	if ticket.Status != domain.TicketStatusInProgress {
		ticket.Status = domain.TicketStatusInProgress
		changed = true
	}
	// First responder claims the ticket. Lost races just mean the other
	// responder's name sticks, which is acceptable.
	if ticket.AssignedToID == nil {
		ticket.AssignedToID = &staff.ID
		ticket.AssignedToName = &staff.Name
		changed = true
	}
	if changed {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketMessageAddedPayload{
			Ticket:      s.ticketRef(ctx, ticket),
			MessageID:   msg.ID,
			BodyPreview: preview(msg.Content, 120),
			StaffName:   staff.Name,
			NotifyUser:  notifyUser,
		},
	})
	return msg, nil
}

// CloseTicket terminates a ticket, records the reason and drops a system
// message inviting the user to rate the service.
func (s *TicketService) CloseTicket(ctx context.Context, staff *domain.Staff, ticketID, reason string) (*domain.Ticket, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is already closed", nil)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCloseReason
	}
	now := time.Now()
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	ticket.ClosedReason = &reason
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	system := &domain.Message{
		TicketID: ticket.ID,
		Content: fmt.Sprintf("Ticket closed by %s. Reason: %s\nHow was your experience? Rate our service in your ticket page.",
			staff.Name, reason),
		IsSystem: true,
	}
	if err := s.messages.Create(ctx, system); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketClosedPayload{
			Ticket:    s.ticketRef(ctx, ticket),
			Reason:    reason,
			StaffName: staff.Name,
		},
	})
	return ticket, nil
}

// ChangeCategory moves an open ticket between categories. The destination is
// re-validated live so a HOUSING move cannot bypass the broker check.
func (s *TicketService) ChangeCategory(ctx context.Context, staff *domain.Staff, ticketID string, newCategory domain.TicketCategory) (*domain.Ticket, error) {
	if !newCategory.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": newCategory})
	}
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	if ticket.Category == newCategory {
		return ticket, nil
	}
	if !s.checker.CanAccessLive(ctx, staff, newCategory) {
		return nil, apperrors.NewForbidden("no access to destination category")
	}

	oldCategory := ticket.Category
	ticket.Category = newCategory
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveTicket) {
			return nil, duplicateCategoryError(newCategory)
		}
		return nil, err
	}

	system := &domain.Message{
		TicketID: ticket.ID,
		Content:  fmt.Sprintf("Category changed from %s to %s by %s", oldCategory.Label(), newCategory.Label(), staff.Name),
		IsSystem: true,
	}
	if err := s.messages.Create(ctx, system); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCategoryChanged,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketCategoryChangedPayload{
			Ticket:      s.ticketRef(ctx, ticket),
			OldCategory: oldCategory,
			NewCategory: newCategory,
		},
	})
	return ticket, nil
}

// AssignToSelf claims the ticket for the acting staff member.
func (s *TicketService) AssignToSelf(ctx context.Context, staff *domain.Staff, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}

	ticket.AssignedToID = &staff.ID
	ticket.AssignedToName = &staff.Name
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketAssignedPayload{
			Ticket:          s.ticketRef(ctx, ticket),
			AssigneeStaffID: &staff.ID,
		},
	})
	return ticket, nil
}

// Unassign clears the current assignee. Unassigning an unassigned ticket is a
// no-op.
func (s *TicketService) Unassign(ctx context.Context, staff *domain.Staff, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	if ticket.AssignedToID == nil {
		return ticket, nil
	}

	ticket.AssignedToID = nil
	ticket.AssignedToName = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketAssignedPayload{
			Ticket: s.ticketRef(ctx, ticket),
		},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket between the working states. Closing goes
// through CloseTicket so it always records a reason and system message, and
// OPEN is only ever entered at creation.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.Staff, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if newStatus != domain.TicketStatusInProgress && newStatus != domain.TicketStatusAwaitingReply {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateSubject renames an open ticket.
func (s *TicketService) UpdateSubject(ctx context.Context, staff *domain.Staff, ticketID, subject string) (*domain.Ticket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	ticket.Subject = subject
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// TicketOwner resolves the owner user for a ticket the staff member may see.
func (s *TicketService) TicketOwner(ctx context.Context, staff *domain.Staff, ticketID string) (*domain.Ticket, *domain.User, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.users.GetByID(ctx, ticket.UserID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, owner, nil
}

func (s *TicketService) ticketForStaff(ctx context.Context, staff *domain.Staff, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanAccessLive(ctx, staff, ticket.Category) {
		return nil, apperrors.NewForbidden("no access to this ticket category")
	}
	return ticket, nil
}

func (s *TicketService) conversation(ctx context.Context, ticketID string) ([]domain.Message, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
	}
	byMessage, err := s.attachments.ListByMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		msgs[i].Attachments = byMessage[msgs[i].ID]
	}
	return msgs, nil
}

func (s *TicketService) attachInputs(ctx context.Context, msg *domain.Message, inputs []AttachmentInput) error {
	if len(inputs) == 0 {
		return nil
	}
	records := make([]domain.Attachment, len(inputs))
	for i, input := range inputs {
		records[i] = domain.Attachment{
			MessageID: msg.ID,
			URL:       input.URL,
			Filename:  input.Filename,
			MimeType:  input.MimeType,
			Size:      input.Size,
		}
	}
	created, err := s.attachments.CreateBatch(ctx, records)
	if err != nil {
		return err
	}
	msg.Attachments = created
	return nil
}

// ticketRef builds the notification reference, resolving the owner's Discord
// id. Lookup failures leave the id empty; notifications degrade to logs.
func (s *TicketService) ticketRef(ctx context.Context, ticket *domain.Ticket) events.TicketRef {
	ref := events.TicketRef{
		TicketNumber:   ticket.TicketNumber,
		Category:       ticket.Category,
		Subject:        ticket.Subject,
		OwnerUserID:    ticket.UserID,
		TicketPagePath: fmt.Sprintf("/tickets/%s", ticket.ID),
	}
	if owner, err := s.users.GetByID(ctx, ticket.UserID); err == nil {
		ref.OwnerDiscordID = owner.DiscordID
	}
	return ref
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	publishWithIdentity(ctx, s.dispatcher, event)
}

func publishWithIdentity(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = dispatcher.Publish(ctx, event)
}

func duplicateCategoryError(category domain.TicketCategory) error {
	return apperrors.NewConflict("you already have an open ticket in this category",
		map[string]any{"category": category})
}

func userActor(user *domain.User) events.Actor {
	return events.Actor{Type: domain.SubjectTypeUser, UserID: &user.ID, Name: user.Name()}
}

func staffActor(staff *domain.Staff) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &staff.ID, Name: staff.Name}
}

func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}

func intersectCategories(requested, allowed []domain.TicketCategory) []domain.TicketCategory {
	allowedSet := make(map[domain.TicketCategory]struct{}, len(allowed))
	for _, category := range allowed {
		allowedSet[category] = struct{}{}
	}
	var out []domain.TicketCategory
	for _, category := range requested {
		if _, ok := allowedSet[category]; ok {
			out = append(out, category)
		}
	}
	return out
}

func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == "NOT_FOUND"
	}
	return false
}
