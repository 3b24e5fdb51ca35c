package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-api/internal/domain"
)

// AdminRepository define el contrato de persistencia para administradores.
type AdminRepository interface {
	Create(ctx context.Context, admin domain.Admin) error
	GetByEmail(ctx context.Context, email string) (domain.Admin, error)
	UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error
}

// PgAdminRepository implementa AdminRepository usando pgxpool.
type PgAdminRepository struct {
	pool *pgxpool.Pool
}

func NewPgAdminRepository(pool *pgxpool.Pool) *PgAdminRepository {
	return &PgAdminRepository{pool: pool}
}

func (r *PgAdminRepository) Create(ctx context.Context, admin domain.Admin) error {
	const query = `
		INSERT INTO admins (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		admin.ID,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	return err
}

func (r *PgAdminRepository) GetByEmail(ctx context.Context, email string) (domain.Admin, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	var a domain.Admin
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Admin{}, err
	}
	return a, nil
}

func (r *PgAdminRepository) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	const query = `
		UPDATE admins
		SET password_hash = $2, updated_at = $3
		WHERE email = $1
	`
	_, err := r.pool.Exec(ctx, query, email, passwordHash, updatedAt)
	return err
}
