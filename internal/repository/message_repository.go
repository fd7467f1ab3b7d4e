package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// MessageRepository encapsulates ticket message persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, content, user_id, staff_id, staff_name, staff_role, is_system)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	var staffName, staffRole *string
	if message.StaffID != nil {
		staffName = &message.AuthorName
		if message.AuthorRole != nil {
			role := string(*message.AuthorRole)
			staffRole = &role
		}
	}
	return r.pool.QueryRow(ctx, query,
		message.TicketID,
		message.Content,
		message.UserID,
		message.StaffID,
		staffName,
		staffRole,
		message.IsSystem,
	).Scan(&message.ID, &message.CreatedAt)
}

// ListByTicket returns messages in chronological order. The author name comes
// from the users table for user messages and from the denormalized staff
// columns otherwise; system messages carry no author.
func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.ticket_id, m.content, m.user_id, m.staff_id, m.staff_name, m.staff_role,
               m.is_system, m.created_at,
               COALESCE(u.display_name, u.username, '') AS user_name
        FROM messages m
        LEFT JOIN users u ON u.id = m.user_id
        WHERE m.ticket_id = $1
        ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var (
			message   domain.Message
			staffName *string
			staffRole *string
			userName  string
		)
		if err := rows.Scan(
			&message.ID,
			&message.TicketID,
			&message.Content,
			&message.UserID,
			&message.StaffID,
			&staffName,
			&staffRole,
			&message.IsSystem,
			&message.CreatedAt,
			&userName,
		); err != nil {
			return nil, err
		}
		switch {
		case message.StaffID != nil:
			if staffName != nil {
				message.AuthorName = *staffName
			}
			if staffRole != nil {
				role := domain.StaffRole(*staffRole)
				message.AuthorRole = &role
			}
		case message.UserID != nil:
			message.AuthorName = userName
		}
		result = append(result, message)
	}
	return result, rows.Err()
}
