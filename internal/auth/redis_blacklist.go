package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// RedisBlacklistStore shares revoked tokens between API instances. Entries carry a TTL
// equal to the remaining token lifetime so Redis drops them on its own.
type RedisBlacklistStore struct {
	client  redis.Cmdable
	timeout time.Duration
}

// NewRedisBlacklistStore wraps an existing redis client.
func NewRedisBlacklistStore(client redis.Cmdable) *RedisBlacklistStore {
	return &RedisBlacklistStore{client: client, timeout: 2 * time.Second}
}

// NewBlacklistStoreFromEnv uses Redis at REDIS_ADDR when set and reachable, the in-memory store otherwise.
func NewBlacklistStoreFromEnv(ctx context.Context) JwtBlacklistStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return NewInMemoryBlacklistStore()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unavailable, falling back to in-memory token blacklist",
			zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return NewInMemoryBlacklistStore()
	}
	zap.L().Info("using redis token blacklist", zap.String("addr", addr))
	return NewRedisBlacklistStore(client)
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// IsBlacklisted implements JwtBlacklistStore.
func (s *RedisBlacklistStore) IsBlacklisted(jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, errors.Wrap(err, "check token blacklist")
	}
	return n > 0, nil
}

// AddToBlacklist implements JwtBlacklistStore. Already expired tokens are not stored.
func (s *RedisBlacklistStore) AddToBlacklist(jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, blacklistKey(jti), 1, ttl).Err(); err != nil {
		return errors.Wrap(err, "add token to blacklist")
	}
	return nil
}
