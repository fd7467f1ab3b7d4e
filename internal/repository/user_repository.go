package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// UserRepository encapsulates end-user persistence.
type UserRepository interface {
	UpsertByDiscordID(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, discord_id, username, display_name, avatar, email, created_at, updated_at`

// UpsertByDiscordID creates the user on first login and refreshes their
// profile fields on every subsequent one.
func (r *userRepository) UpsertByDiscordID(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (discord_id, username, display_name, avatar, email)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (discord_id) DO UPDATE SET
            username = EXCLUDED.username,
            display_name = EXCLUDED.display_name,
            avatar = EXCLUDED.avatar,
            email = COALESCE(EXCLUDED.email, users.email),
            updated_at = NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.DiscordID,
		user.Username,
		user.DisplayName,
		user.Avatar,
		user.Email,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id=$1`, id)
}

func (r *userRepository) GetByDiscordID(ctx context.Context, discordID string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE discord_id=$1`, discordID)
}

func (r *userRepository) getOne(ctx context.Context, clause string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + clause
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.DiscordID,
		&user.Username,
		&user.DisplayName,
		&user.Avatar,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
