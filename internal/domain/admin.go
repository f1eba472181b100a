package domain

import "time"

const (
	DefaultAdminFirstName = "admin"
	DefaultAdminLastName  = "Mr"
	DefaultAdminRole      = "ADMIN"
)

// AdminPrincipal is the stored administrative account, hash included.
type AdminPrincipal struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Role         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminInfo is the outward view of an admin. It has no password field.
type AdminInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info strips the password hash.
func (a *AdminPrincipal) Info() *AdminInfo {
	return &AdminInfo{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// Claims projects the admin onto token claims, substituting defaults for
// absent names and role.
func (a *AdminPrincipal) Claims() TokenClaims {
	role := valueOr(a.Role, DefaultAdminRole)
	return TokenClaims{
		Email:     a.Email,
		FirstName: valueOr(a.FirstName, DefaultAdminFirstName),
		LastName:  valueOr(a.LastName, DefaultAdminLastName),
		Role:      &role,
	}
}
