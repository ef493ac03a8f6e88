// Package vault hashes and verifies passwords with argon2id. All hashing runs
// on a bounded queue.Pool so request goroutines never stall each other on
// CPU-heavy work.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/infrastructure/queue"
)

// Vault implements ports.CredentialVault.
type Vault struct {
	pool     *queue.Pool
	params   Params
	duration prometheus.ObserverVec
	log      zerolog.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithParams overrides DefaultParams. Tests use cheap parameters.
func WithParams(p Params) Option {
	return func(v *Vault) { v.params = p }
}

// WithDurationObserver records hash/verify latency labelled by "op".
func WithDurationObserver(o prometheus.ObserverVec) Option {
	return func(v *Vault) { v.duration = o }
}

func New(pool *queue.Pool, log zerolog.Logger, opts ...Option) *Vault {
	v := &Vault{pool: pool, params: DefaultParams, log: log}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Vault) Hash(ctx context.Context, password domain.Password) (string, error) {
	raw := password.Expose()
	return queue.Run(ctx, v.pool, func() (string, error) {
		defer v.observe("hash", time.Now())
		h, err := hashPassword(raw, v.params)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		return h, nil
	})
}

// Verify fails closed: a stored hash that cannot be parsed is reported as a
// mismatch and logged, never surfaced to the caller as an error.
func (v *Vault) Verify(ctx context.Context, hash string, candidate domain.Password) (bool, error) {
	raw := candidate.Expose()
	ok, err := queue.Run(ctx, v.pool, func() (bool, error) {
		defer v.observe("verify", time.Now())
		return verifyPassword(hash, raw)
	})
	if errors.Is(err, errMalformedHash) {
		v.log.Warn().Msg("stored password hash is malformed; rejecting credentials")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return ok, nil
}

func (v *Vault) observe(op string, start time.Time) {
	if v.duration == nil {
		return
	}
	v.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
