package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// FlagWithTicket pairs an unresolved flag with enough ticket context to
// render an escalation queue entry.
type FlagWithTicket struct {
	Flag         domain.TicketFlag
	Ticket       domain.Ticket
	OwnerName    string
	OwnerDiscord string
}

// FlagRepository encapsulates ticket flag persistence.
type FlagRepository interface {
	UpsertRoleFlag(ctx context.Context, flag *domain.TicketFlag) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFlag, error)
	ResolveForRole(ctx context.Context, ticketID string, role domain.StaffRole) (int64, error)
	ListUnresolvedByRoles(ctx context.Context, roles []domain.StaffRole) ([]FlagWithTicket, error)
}

type flagRepository struct {
	pool *pgxpool.Pool
}

// NewFlagRepository instantiates repository.
func NewFlagRepository(pool *pgxpool.Pool) FlagRepository {
	return &flagRepository{pool: pool}
}

// UpsertRoleFlag inserts a flag for (ticket, role) or, when one already
// exists, refreshes its message and author and reopens it.
func (r *flagRepository) UpsertRoleFlag(ctx context.Context, flag *domain.TicketFlag) error {
	const query = `
        INSERT INTO ticket_flags (ticket_id, flagged_to_role, flagged_by_id, flagged_by_name, flagged_by_role, message)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (ticket_id, flagged_to_role) DO UPDATE SET
            flagged_by_id = EXCLUDED.flagged_by_id,
            flagged_by_name = EXCLUDED.flagged_by_name,
            flagged_by_role = EXCLUDED.flagged_by_role,
            message = EXCLUDED.message,
            resolved = FALSE,
            resolved_at = NULL,
            created_at = NOW()
        RETURNING id, resolved, resolved_at, created_at`
	var flaggedByRole *string
	if flag.FlaggedByRole != nil {
		role := string(*flag.FlaggedByRole)
		flaggedByRole = &role
	}
	return r.pool.QueryRow(ctx, query,
		flag.TicketID,
		flag.FlaggedToRole,
		flag.FlaggedByID,
		flag.FlaggedByName,
		flaggedByRole,
		flag.Message,
	).Scan(&flag.ID, &flag.Resolved, &flag.ResolvedAt, &flag.CreatedAt)
}

func (r *flagRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketFlag, error) {
	const query = `
        SELECT id, ticket_id, flagged_to_role, flagged_by_id, flagged_by_name, flagged_by_role,
               message, resolved, resolved_at, created_at
        FROM ticket_flags
        WHERE ticket_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketFlag
	for rows.Next() {
		flag, err := scanFlag(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, flag)
	}
	return result, rows.Err()
}

// ResolveForRole marks the flag aimed at the given role on the ticket as
// resolved and reports how many rows changed. Zero is not an error.
func (r *flagRepository) ResolveForRole(ctx context.Context, ticketID string, role domain.StaffRole) (int64, error) {
	const query = `
        UPDATE ticket_flags SET resolved = TRUE, resolved_at = NOW()
        WHERE ticket_id=$1 AND flagged_to_role=$2 AND resolved = FALSE`
	cmd, err := r.pool.Exec(ctx, query, ticketID, role)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *flagRepository) ListUnresolvedByRoles(ctx context.Context, roles []domain.StaffRole) ([]FlagWithTicket, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roles))
	args := make([]any, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := fmt.Sprintf(`
        SELECT f.id, f.ticket_id, f.flagged_to_role, f.flagged_by_id, f.flagged_by_name, f.flagged_by_role,
               f.message, f.resolved, f.resolved_at, f.created_at,
               t.id, t.ticket_number, t.user_id, t.category, t.subject, t.status,
               t.assigned_to_id, t.assigned_to_name, t.closed_reason, t.created_at, t.updated_at, t.closed_at,
               COALESCE(u.display_name, u.username, ''), u.discord_id
        FROM ticket_flags f
        JOIN tickets t ON t.id = f.ticket_id
        JOIN users u ON u.id = t.user_id
        WHERE f.resolved = FALSE AND f.flagged_to_role IN (%s)
        ORDER BY f.created_at DESC`, strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []FlagWithTicket
	for rows.Next() {
		var entry FlagWithTicket
		var flaggedByRole *string
		if err := rows.Scan(
			&entry.Flag.ID,
			&entry.Flag.TicketID,
			&entry.Flag.FlaggedToRole,
			&entry.Flag.FlaggedByID,
			&entry.Flag.FlaggedByName,
			&flaggedByRole,
			&entry.Flag.Message,
			&entry.Flag.Resolved,
			&entry.Flag.ResolvedAt,
			&entry.Flag.CreatedAt,
			&entry.Ticket.ID,
			&entry.Ticket.TicketNumber,
			&entry.Ticket.UserID,
			&entry.Ticket.Category,
			&entry.Ticket.Subject,
			&entry.Ticket.Status,
			&entry.Ticket.AssignedToID,
			&entry.Ticket.AssignedToName,
			&entry.Ticket.ClosedReason,
			&entry.Ticket.CreatedAt,
			&entry.Ticket.UpdatedAt,
			&entry.Ticket.ClosedAt,
			&entry.OwnerName,
			&entry.OwnerDiscord,
		); err != nil {
			return nil, err
		}
		if flaggedByRole != nil {
			role := domain.StaffRole(*flaggedByRole)
			entry.Flag.FlaggedByRole = &role
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanFlag(scan func(dest ...any) error) (domain.TicketFlag, error) {
	var flag domain.TicketFlag
	var flaggedByRole *string
	err := scan(
		&flag.ID,
		&flag.TicketID,
		&flag.FlaggedToRole,
		&flag.FlaggedByID,
		&flag.FlaggedByName,
		&flaggedByRole,
		&flag.Message,
		&flag.Resolved,
		&flag.ResolvedAt,
		&flag.CreatedAt,
	)
	if err != nil {
		return flag, err
	}
	if flaggedByRole != nil {
		role := domain.StaffRole(*flaggedByRole)
		flag.FlaggedByRole = &role
	}
	return flag, nil
}
