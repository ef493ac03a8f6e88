package memory

import (
	"context"
	"sync"
)

// RevocationStore is an in-process set of banned tokens.
type RevocationStore struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{tokens: make(map[string]struct{})}
}

func (s *RevocationStore) Add(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
	return nil
}

func (s *RevocationStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok, nil
}
