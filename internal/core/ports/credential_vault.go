package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// CredentialVault hashes and verifies passwords off the request goroutine.
type CredentialVault interface {
	Hash(ctx context.Context, password domain.Password) (string, error)
	// Verify reports whether candidate matches hash. A malformed hash yields
	// (false, nil): the vault fails closed.
	Verify(ctx context.Context, hash string, candidate domain.Password) (bool, error)
}
