package csrf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "csrf:session:"

// RedisStore backs the token store with Redis so tokens survive restarts and
// validate across instances. Each session is a sorted set of token hashes
// scored by issue time, with a TTL on the whole key; expiry is handled by
// Redis itself, so Sweep is a no-op.
type RedisStore struct {
	client    redis.UniversalClient
	ttl       time.Duration
	maxTokens int
}

// NewRedisStore creates a Redis-backed store. The client stays owned by the
// caller; Close does not close it.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, maxTokens int) *RedisStore {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return &RedisStore{client: client, ttl: ttl, maxTokens: maxTokens}
}

func (s *RedisStore) AddToken(ctx context.Context, sessionID, hash string) error {
	key := redisKeyPrefix + sessionID

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(time.Now().Unix()), Member: hash})
	// Keep only the newest maxTokens members.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-s.maxTokens-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, fmt.Errorf("add token: %w", err))
	}
	return nil
}

func (s *RedisStore) HasToken(ctx context.Context, sessionID, hash string) (bool, error) {
	err := s.client.ZScore(ctx, redisKeyPrefix+sessionID, hash).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, fmt.Errorf("has token: %w", err))
	}
	return true, nil
}

func (s *RedisStore) ConsumeToken(ctx context.Context, sessionID, hash string) (bool, error) {
	key := redisKeyPrefix + sessionID

	removed, err := s.client.ZRem(ctx, key, hash).Result()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, fmt.Errorf("consume token: %w", err))
	}
	if removed == 0 {
		return false, nil
	}
	if s.ttl > 0 {
		s.client.Expire(ctx, key, s.ttl)
	}
	return true, nil
}

// Sweep is a no-op; Redis key TTLs expire sessions natively.
func (s *RedisStore) Sweep(context.Context) error {
	return nil
}

func (s *RedisStore) Close() error {
	return nil
}
