package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// IdentityStore is the durable record of accounts, keyed by email.
type IdentityStore interface {
	// Add persists user. Returns domain.ErrUserAlreadyExists when the email is taken.
	Add(ctx context.Context, user domain.User) error
	// Get returns the stored user or domain.ErrUserNotFound.
	Get(ctx context.Context, email domain.Email) (domain.User, error)
	// Validate checks password against the stored hash. Returns
	// domain.ErrUserNotFound or domain.ErrIncorrectCredentials on failure.
	Validate(ctx context.Context, email domain.Email, password domain.Password) error
}
