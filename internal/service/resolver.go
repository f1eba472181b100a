package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/repository"
)

// ErrPrincipalNotFound is returned when no account has the email.
var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalResolver looks up admin and user records by email. Returned
// records include the password hash and must not leave the service layer;
// use Info() for outward values.
type PrincipalResolver struct {
	admins repository.AdminRepository
	users  repository.UserRepository
}

// NewPrincipalResolver builds a resolver over the two principal stores.
func NewPrincipalResolver(admins repository.AdminRepository, users repository.UserRepository) *PrincipalResolver {
	return &PrincipalResolver{admins: admins, users: users}
}

// ResolveAdmin fetches an admin by email.
func (r *PrincipalResolver) ResolveAdmin(ctx context.Context, email string) (*domain.AdminPrincipal, error) {
	admin, err := r.admins.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve admin: %w", err)
	}
	return admin, nil
}

// ResolveUser fetches a user by email.
func (r *PrincipalResolver) ResolveUser(ctx context.Context, email string) (*domain.UserPrincipal, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}
