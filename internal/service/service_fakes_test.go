package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
)

// In-memory repository fakes mirroring the postgres behavior the services
// rely on, including the one-active-ticket-per-category constraint.

type memTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextNum int
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]*domain.Ticket{}, nextNum: 1}
}

func (r *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	for _, existing := range r.tickets {
		if existing.UserID == ticket.UserID && existing.Category == ticket.Category && !existing.IsClosed() {
			return repository.ErrDuplicateActiveTicket
		}
	}
	ticket.ID = uuid.NewString()
	ticket.TicketNumber = r.nextNum
	r.nextNum++
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range r.tickets {
		if existing.ID != ticket.ID && existing.UserID == ticket.UserID &&
			existing.Category == ticket.Category && !existing.IsClosed() && !ticket.IsClosed() {
			return repository.ErrDuplicateActiveTicket
		}
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) FindActiveByUserCategory(ctx context.Context, userID string, category domain.TicketCategory) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.UserID == userID && ticket.Category == category && !ticket.IsClosed() {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.UserID != nil && ticket.UserID != *filter.UserID {
			continue
		}
		if len(filter.Categories) > 0 && !containsCategory(filter.Categories, ticket.Category) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func containsCategory(set []domain.TicketCategory, c domain.TicketCategory) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

func containsStatus(set []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

type memMessageRepo struct {
	messages []domain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	message.ID = uuid.NewString()
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memMessageRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *memMessageRepo) systemMessages(ticketID string) []domain.Message {
	var out []domain.Message
	for _, msg := range r.messages {
		if msg.TicketID == ticketID && msg.IsSystem {
			out = append(out, msg)
		}
	}
	return out
}

type memAttachmentRepo struct {
	attachments map[string][]domain.Attachment
}

func newMemAttachmentRepo() *memAttachmentRepo {
	return &memAttachmentRepo{attachments: map[string][]domain.Attachment{}}
}

func (r *memAttachmentRepo) CreateBatch(ctx context.Context, attachments []domain.Attachment) ([]domain.Attachment, error) {
	for i := range attachments {
		attachments[i].ID = uuid.NewString()
		attachments[i].CreatedAt = time.Now()
		r.attachments[attachments[i].MessageID] = append(r.attachments[attachments[i].MessageID], attachments[i])
	}
	return attachments, nil
}

func (r *memAttachmentRepo) ListByMessages(ctx context.Context, messageIDs []string) (map[string][]domain.Attachment, error) {
	out := map[string][]domain.Attachment{}
	for _, id := range messageIDs {
		if atts, ok := r.attachments[id]; ok {
			out[id] = atts
		}
	}
	return out, nil
}

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		clone := *user
		r.users[user.ID] = &clone
	}
	return r
}

func (r *memUserRepo) UpsertByDiscordID(ctx context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.DiscordID == user.DiscordID {
			user.ID = existing.ID
			clone := *user
			r.users[user.ID] = &clone
			return nil
		}
	}
	user.ID = uuid.NewString()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByDiscordID(ctx context.Context, discordID string) (*domain.User, error) {
	for _, user := range r.users {
		if user.DiscordID == discordID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memFlagRepo struct {
	flags   map[string]*domain.TicketFlag
	tickets *memTicketRepo
}

func newMemFlagRepo(tickets *memTicketRepo) *memFlagRepo {
	return &memFlagRepo{flags: map[string]*domain.TicketFlag{}, tickets: tickets}
}

func flagKey(ticketID string, role domain.StaffRole) string {
	return fmt.Sprintf("%s|%s", ticketID, role)
}

func (r *memFlagRepo) UpsertRoleFlag(ctx context.Context, flag *domain.TicketFlag) error {
	key := flagKey(flag.TicketID, flag.FlaggedToRole)
	if existing, ok := r.flags[key]; ok {
		flag.ID = existing.ID
	} else {
		flag.ID = uuid.NewString()
	}
	flag.Resolved = false
	flag.ResolvedAt = nil
	flag.CreatedAt = time.Now()
	clone := *flag
	r.flags[key] = &clone
	return nil
}

func (r *memFlagRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFlag, error) {
	var out []domain.TicketFlag
	for _, flag := range r.flags {
		if flag.TicketID == ticketID {
			out = append(out, *flag)
		}
	}
	return out, nil
}

func (r *memFlagRepo) ResolveForRole(ctx context.Context, ticketID string, role domain.StaffRole) (int64, error) {
	key := flagKey(ticketID, role)
	flag, ok := r.flags[key]
	if !ok || flag.Resolved {
		return 0, nil
	}
	now := time.Now()
	flag.Resolved = true
	flag.ResolvedAt = &now
	return 1, nil
}

func (r *memFlagRepo) ListUnresolvedByRoles(ctx context.Context, roles []domain.StaffRole) ([]repository.FlagWithTicket, error) {
	var out []repository.FlagWithTicket
	for _, flag := range r.flags {
		if flag.Resolved {
			continue
		}
		for _, role := range roles {
			if flag.FlaggedToRole == role {
				entry := repository.FlagWithTicket{Flag: *flag}
				if ticket, ok := r.tickets.tickets[flag.TicketID]; ok {
					entry.Ticket = *ticket
				}
				out = append(out, entry)
			}
		}
	}
	return out, nil
}

type memStaffRepo struct {
	staff map[string]*domain.Staff
}

func newMemStaffRepo() *memStaffRepo {
	return &memStaffRepo{staff: map[string]*domain.Staff{}}
}

func (r *memStaffRepo) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	staff, ok := r.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *staff
	return &clone, nil
}

func (r *memStaffRepo) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	for _, staff := range r.staff {
		if staff.Username == username {
			clone := *staff
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memStaffRepo) ListActive(ctx context.Context) ([]domain.Staff, error) {
	var out []domain.Staff
	for _, staff := range r.staff {
		if staff.Active {
			out = append(out, *staff)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memStaffRepo) Upsert(ctx context.Context, staff *domain.Staff) error {
	for _, existing := range r.staff {
		if existing.Username == staff.Username {
			staff.ID = existing.ID
			staff.CreatedAt = existing.CreatedAt
			staff.UpdatedAt = time.Now()
			clone := *staff
			r.staff[staff.ID] = &clone
			return nil
		}
	}
	staff.ID = uuid.NewString()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt
	clone := *staff
	r.staff[staff.ID] = &clone
	return nil
}

type stubVerifier struct {
	has bool
	err error
}

func (v *stubVerifier) HasBrokerRole(ctx context.Context, discordID string) (bool, error) {
	return v.has, v.err
}
