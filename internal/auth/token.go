package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/session-service/internal/domain"
)

// Verification failures. Callers outside the service layer never see these.
var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
)

// TokenCodec signs and verifies HS256 tokens under two disjoint secrets.
type TokenCodec struct {
	secrets map[domain.SecretName][]byte
	now     func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec builds a codec for the access and refresh secrets.
func NewTokenCodec(accessSecret, refreshSecret string, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{
		secrets: map[domain.SecretName][]byte{
			domain.AccessSecret:  []byte(accessSecret),
			domain.RefreshSecret: []byte(refreshSecret),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claims describes the JWT payload.
type Claims struct {
	Data domain.TokenClaims `json:"data"`
	jwt.RegisteredClaims
}

// Mint signs claims under the named secret, valid for ttl.
func (c *TokenCodec) Mint(claims domain.TokenClaims, secret domain.SecretName, ttl time.Duration) (string, error) {
	key, err := c.key(secret)
	if err != nil {
		return "", err
	}

	issuedAt := c.now()
	payload := &Claims{
		Data: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString(key)
}

// Verify validates signature and expiry and returns the embedded claims.
func (c *TokenCodec) Verify(tokenStr string, secret domain.SecretName) (domain.TokenClaims, error) {
	key, err := c.key(secret)
	if err != nil {
		return domain.TokenClaims{}, err
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return domain.TokenClaims{}, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Data.Email == "" {
		return domain.TokenClaims{}, ErrTokenMalformed
	}
	return claims.Data, nil
}

func (c *TokenCodec) key(secret domain.SecretName) ([]byte, error) {
	key, ok := c.secrets[secret]
	if !ok || len(key) == 0 {
		return nil, fmt.Errorf("no key for %s secret", secret)
	}
	return key, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
