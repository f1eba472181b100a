package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/session-service/internal/domain"
)

// AdminRepository handles persistence for administrative accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminPrincipal) error
	GetByEmail(ctx context.Context, email string) (*domain.AdminPrincipal, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository instantiates the repository.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminPrincipal) error {
	const query = `
        INSERT INTO user_admin (email, pw, first_name, last_name, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		admin.Email,
		admin.PasswordHash,
		admin.FirstName,
		admin.LastName,
		admin.Role,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminPrincipal, error) {
	const query = `
        SELECT id, email, pw, first_name, last_name, role, created_at, updated_at
        FROM user_admin WHERE email=$1`

	var admin domain.AdminPrincipal
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.FirstName,
		&admin.LastName,
		&admin.Role,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
