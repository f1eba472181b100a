package domain

import "time"

const (
	DefaultUserFirstName = "user"
	DefaultUserLastName  = "Mr/Mrs"
)

// UserPrincipal is the stored end-user account, hash included.
type UserPrincipal struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInfo is the outward view of a user. It has no password field.
type UserInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info strips the password hash.
func (u *UserPrincipal) Info() *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Claims projects the user onto token claims. User tokens never carry a role.
func (u *UserPrincipal) Claims() TokenClaims {
	return TokenClaims{
		Email:     u.Email,
		FirstName: valueOr(u.FirstName, DefaultUserFirstName),
		LastName:  valueOr(u.LastName, DefaultUserLastName),
	}
}
