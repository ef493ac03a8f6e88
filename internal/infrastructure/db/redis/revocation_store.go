package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const bannedTokenPrefix = "banned_token:"

// RevocationStore records logged-out tokens. Entries expire after ttl, which
// should match the token lifetime: an expired token fails validation anyway.
// Key format: banned_token:<token>
type RevocationStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRevocationStore(client redis.Cmdable, ttl time.Duration) *RevocationStore {
	return &RevocationStore{client: client, ttl: ttl}
}

func (s *RevocationStore) Add(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, bannedTokenPrefix+token, "1", s.ttl).Err(); err != nil {
		return oops.In("redis").Code("REVOCATION_ADD_FAILED").Wrap(err)
	}
	return nil
}

func (s *RevocationStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, bannedTokenPrefix+token).Result()
	if err != nil {
		return false, oops.In("redis").Code("REVOCATION_LOOKUP_FAILED").Wrap(err)
	}
	return n > 0, nil
}
