package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"legal-aid/internal/domain"
)

// UserRepository es de solo lectura: las cuentas las gestiona el servicio de identidad.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, full_name, email, profile_picture_url, role, created_at
		FROM users
		WHERE id = $1
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.ProfilePictureURL,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, normalizeErr(err)
	}
	return u, nil
}
