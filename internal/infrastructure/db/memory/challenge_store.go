package memory

import (
	"context"
	"sync"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// ChallengeStore keeps challenges until they are removed or the process
// exits. It does not expire entries.
type ChallengeStore struct {
	mu         sync.RWMutex
	challenges map[domain.Email]domain.Challenge
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{challenges: make(map[domain.Email]domain.Challenge)}
}

func (s *ChallengeStore) Put(_ context.Context, ch domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.Email] = ch
	return nil
}

func (s *ChallengeStore) Get(_ context.Context, email domain.Email) (domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.challenges[email]
	if !ok {
		return domain.Challenge{}, domain.ErrNotFound
	}
	return ch, nil
}

func (s *ChallengeStore) Consume(_ context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[email]
	if !ok {
		return false, domain.ErrNotFound
	}
	if !ch.Matches(id, code) {
		return false, nil
	}
	delete(s.challenges, email)
	return true, nil
}

func (s *ChallengeStore) Remove(_ context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, email)
	return nil
}
