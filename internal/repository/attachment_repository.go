package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// AttachmentRepository encapsulates message attachment persistence.
type AttachmentRepository interface {
	CreateBatch(ctx context.Context, attachments []domain.Attachment) ([]domain.Attachment, error)
	ListByMessages(ctx context.Context, messageIDs []string) (map[string][]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) CreateBatch(ctx context.Context, attachments []domain.Attachment) ([]domain.Attachment, error) {
	for i := range attachments {
		const query = `
            INSERT INTO attachments (message_id, url, filename, mime_type, size)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, created_at`
		if err := r.pool.QueryRow(ctx, query,
			attachments[i].MessageID,
			attachments[i].URL,
			attachments[i].Filename,
			attachments[i].MimeType,
			attachments[i].Size,
		).Scan(&attachments[i].ID, &attachments[i].CreatedAt); err != nil {
			return nil, err
		}
	}
	return attachments, nil
}

// ListByMessages loads attachments for a set of messages keyed by message id.
func (r *attachmentRepository) ListByMessages(ctx context.Context, messageIDs []string) (map[string][]domain.Attachment, error) {
	result := make(map[string][]domain.Attachment)
	if len(messageIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(messageIDs))
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`
        SELECT id, message_id, url, filename, mime_type, size, created_at
        FROM attachments
        WHERE message_id IN (%s)
        ORDER BY created_at ASC`, strings.Join(placeholders, ","))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.MessageID,
			&attachment.URL,
			&attachment.Filename,
			&attachment.MimeType,
			&attachment.Size,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[attachment.MessageID] = append(result[attachment.MessageID], attachment)
	}
	return result, rows.Err()
}
