package domain

import "errors"

// PrincipalKind differentiates admin vs user accounts.
type PrincipalKind string

const (
	PrincipalKindAdmin PrincipalKind = "ADMIN"
	PrincipalKindUser  PrincipalKind = "USER"
)

// SecretName selects the signing key namespace of a token.
type SecretName int

const (
	AccessSecret SecretName = iota + 1
	RefreshSecret
)

func (s SecretName) String() string {
	switch s {
	case AccessSecret:
		return "access"
	case RefreshSecret:
		return "refresh"
	default:
		return "unknown"
	}
}

// TokenClass is the caller supplied discriminator naming the namespace a token
// must be verified against.
type TokenClass string

const (
	TokenClassActive  TokenClass = "ACTIVETOKEN"
	TokenClassRefresh TokenClass = "REFRESHTOKEN"
)

// ErrUnknownTokenClass is returned for any discriminator other than the two
// known classes.
var ErrUnknownTokenClass = errors.New("unknown token class")

// ParseTokenClass accepts only ACTIVETOKEN and REFRESHTOKEN.
func ParseTokenClass(code string) (TokenClass, error) {
	switch TokenClass(code) {
	case TokenClassActive, TokenClassRefresh:
		return TokenClass(code), nil
	default:
		return "", ErrUnknownTokenClass
	}
}

// Secret maps the class to its signing namespace.
func (c TokenClass) Secret() SecretName {
	if c == TokenClassRefresh {
		return RefreshSecret
	}
	return AccessSecret
}

// TokenClaims is the principal projection embedded in a signed token.
type TokenClaims struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      *string `json:"role,omitempty"`
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
