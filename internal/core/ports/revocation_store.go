package ports

import "context"

// RevocationStore is the set of session tokens invalidated before their
// natural expiry.
type RevocationStore interface {
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}
