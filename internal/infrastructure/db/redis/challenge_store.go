package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const (
	twoFACodePrefix = "two_fa_code:"
	DefaultTwoFATTL = 10 * time.Minute
)

// ChallengeStore keeps one pending 2FA challenge per email.
// Key format: two_fa_code:<email>, value {"login_attempt_id":..,"code":..}
type ChallengeStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewChallengeStore(client redis.Cmdable, ttl time.Duration) *ChallengeStore {
	if ttl <= 0 {
		ttl = DefaultTwoFATTL
	}
	return &ChallengeStore{client: client, ttl: ttl}
}

type storedChallenge struct {
	LoginAttemptID string `json:"login_attempt_id"`
	Code           string `json:"code"`
}

func (s *ChallengeStore) Put(ctx context.Context, ch domain.Challenge) error {
	raw, err := json.Marshal(storedChallenge{
		LoginAttemptID: ch.LoginAttemptID.String(),
		Code:           ch.Code.String(),
	})
	if err != nil {
		return oops.In("redis").Code("CHALLENGE_ENCODE_FAILED").Wrap(err)
	}
	if err := s.client.Set(ctx, s.key(ch.Email), raw, s.ttl).Err(); err != nil {
		return oops.In("redis").Code("CHALLENGE_PUT_FAILED").Wrap(err)
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, email domain.Email) (domain.Challenge, error) {
	raw, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Challenge{}, domain.ErrNotFound
		}
		return domain.Challenge{}, oops.In("redis").Code("CHALLENGE_GET_FAILED").Wrap(err)
	}
	return decodeChallenge(email, raw)
}

// consumeScript deletes KEYS[1] when its login_attempt_id and code equal
// ARGV[1] and ARGV[2]. It replies {value, deleted} or nil when the key is absent.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return false
end
local ok, ch = pcall(cjson.decode, raw)
if ok and type(ch) == 'table' and ch.login_attempt_id == ARGV[1] and ch.code == ARGV[2] then
	redis.call('DEL', KEYS[1])
	return {raw, 1}
end
return {raw, 0}
`)

func (s *ChallengeStore) Consume(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) (bool, error) {
	reply, err := consumeScript.Run(ctx, s.client, []string{s.key(email)}, id.String(), code.String()).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, domain.ErrNotFound
		}
		return false, oops.In("redis").Code("CHALLENGE_CONSUME_FAILED").Wrap(err)
	}
	if len(reply) != 2 {
		return false, oops.In("redis").Code("CHALLENGE_CONSUME_FAILED").Errorf("unexpected reply length %d", len(reply))
	}
	raw, _ := reply[0].(string)
	deleted, _ := reply[1].(int64)

	// A corrupt entry is a backend fault, not a wrong code.
	if _, err := decodeChallenge(email, []byte(raw)); err != nil {
		return false, err
	}
	return deleted == 1, nil
}

func (s *ChallengeStore) Remove(ctx context.Context, email domain.Email) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return oops.In("redis").Code("CHALLENGE_REMOVE_FAILED").Wrap(err)
	}
	return nil
}

func decodeChallenge(email domain.Email, raw []byte) (domain.Challenge, error) {
	var sc storedChallenge
	if err := json.Unmarshal(raw, &sc); err != nil {
		return domain.Challenge{}, oops.In("redis").Code("CHALLENGE_DECODE_FAILED").Wrap(err)
	}
	id, err := domain.ParseLoginAttemptID(sc.LoginAttemptID)
	if err != nil {
		return domain.Challenge{}, oops.In("redis").Code("CHALLENGE_DECODE_FAILED").With("field", "login_attempt_id").Wrap(err)
	}
	code, err := domain.ParseTwoFACode(sc.Code)
	if err != nil {
		return domain.Challenge{}, oops.In("redis").Code("CHALLENGE_DECODE_FAILED").With("field", "code").Wrap(err)
	}
	return domain.Challenge{Email: email, LoginAttemptID: id, Code: code}, nil
}

func (s *ChallengeStore) key(email domain.Email) string {
	return twoFACodePrefix + email.String()
}
