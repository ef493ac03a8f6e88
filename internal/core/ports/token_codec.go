package ports

import "github.com/99minutos/auth-service/internal/core/domain"

// TokenCodec issues and validates signed session tokens. Validate only
// checks signature and expiry; revocation is the caller's concern.
type TokenCodec interface {
	Issue(email domain.Email) (string, error)
	Validate(token string) (domain.Claims, error)
}
