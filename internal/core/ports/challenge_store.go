package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// ChallengeStore holds at most one outstanding 2FA challenge per email.
type ChallengeStore interface {
	// Put overwrites any existing challenge for the email.
	Put(ctx context.Context, challenge domain.Challenge) error
	// Get returns the live challenge or domain.ErrNotFound.
	Get(ctx context.Context, email domain.Email) (domain.Challenge, error)
	// Consume deletes the live challenge only when it carries both id and
	// code, reporting whether it did. A mismatch leaves the challenge in
	// place. An absent challenge is domain.ErrNotFound.
	Consume(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) (bool, error)
	// Remove deletes the challenge. Removing an absent challenge is not an error.
	Remove(ctx context.Context, email domain.Email) error
}
