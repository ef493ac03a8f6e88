// Package token issues and validates HS256 session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// DefaultTTL is how long a session token stays valid.
const DefaultTTL = 10 * time.Minute

// Codec implements ports.TokenCodec. It is a pure function of the token
// and the secret; it does not know about revocation.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens. Revocation entries reuse it.
func (c *Codec) TTL() time.Duration { return c.ttl }

func (c *Codec) Issue(email domain.Email) (string, error) {
	if email.IsZero() {
		return "", errors.New("issue token: empty subject")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   email.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) Validate(token string) (domain.Claims, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	return domain.Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
