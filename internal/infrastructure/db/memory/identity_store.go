// Package memory holds in-process store backends for tests and local
// development. Each store guards its map with a sync.RWMutex: lookups share
// the read lock, mutations take the write lock.
package memory

import (
	"context"
	"sync"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

type IdentityStore struct {
	mu    sync.RWMutex
	users map[domain.Email]domain.User
	vault ports.CredentialVault
}

func NewIdentityStore(vault ports.CredentialVault) *IdentityStore {
	return &IdentityStore{users: make(map[domain.Email]domain.User), vault: vault}
}

func (s *IdentityStore) Add(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return domain.ErrUserAlreadyExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *IdentityStore) Get(_ context.Context, email domain.Email) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

// Validate releases the lock before verifying so a slow hash never blocks writers.
func (s *IdentityStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	u, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	ok, err := s.vault.Verify(ctx, u.PasswordHash, password)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrIncorrectCredentials
	}
	return nil
}
