package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
)

// StaffRepository encapsulates staff account persistence. Staff who sign in
// through Discord never get a row here; only username/password accounts do.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Staff, error)
	GetByUsername(ctx context.Context, username string) (*domain.Staff, error)
	ListActive(ctx context.Context) ([]domain.Staff, error)
	Upsert(ctx context.Context, staff *domain.Staff) error
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = `id, username, name, role, password_hash, discord_id, avatar, active, created_at, updated_at`

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	return r.getOne(ctx, `WHERE id=$1`, id)
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	return r.getOne(ctx, `WHERE username=$1`, username)
}

func (r *staffRepository) getOne(ctx context.Context, clause string, arg any) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff ` + clause
	var staff domain.Staff
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.Username,
		&staff.Name,
		&staff.Role,
		&staff.PasswordHash,
		&staff.DiscordID,
		&staff.Avatar,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

// Upsert creates or refreshes a password-backed account keyed by username.
func (r *staffRepository) Upsert(ctx context.Context, staff *domain.Staff) error {
	query := `
		INSERT INTO staff (username, name, role, password_hash, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE
		SET name=EXCLUDED.name, role=EXCLUDED.role,
		    password_hash=EXCLUDED.password_hash, active=EXCLUDED.active,
		    updated_at=NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		staff.Username,
		staff.Name,
		staff.Role,
		staff.PasswordHash,
		staff.Active,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) ListActive(ctx context.Context) ([]domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE active ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Staff
	for rows.Next() {
		var staff domain.Staff
		if err := rows.Scan(
			&staff.ID,
			&staff.Username,
			&staff.Name,
			&staff.Role,
			&staff.PasswordHash,
			&staff.DiscordID,
			&staff.Avatar,
			&staff.Active,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}
