package cache

import (
	"context"
	"errors"
	"time"

	"forum/internal/observability"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklist:"

// BlacklistKey is the Redis key marking a token id as revoked.
func BlacklistKey(jti string) string {
	return blacklistKeyPrefix + jti
}

// TokenBlacklist stores revoked token ids in Redis until they expire.
type TokenBlacklist struct {
	rdb *redis.Client
}

// NewTokenBlacklist returns a blacklist backed by rdb. A nil client yields a
// blacklist that accepts every token and drops revocations.
func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Revoke records jti for ttl.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b.rdb == nil {
		return nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "SET")
	defer span.End()

	err := b.rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
	observability.RecordError(span, err)
	return err
}

// IsRevoked reports whether jti has been revoked.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b.rdb == nil {
		return false, nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "EXISTS")
	defer span.End()

	n, err := b.rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RecordError(span, err)
		return false, err
	}
	return n > 0, nil
}
