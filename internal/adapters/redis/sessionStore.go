package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const revokedPrefix = "session:revoked:"

// SessionStoreRedis keeps revoked token ids as expiring keys.
type SessionStoreRedis struct {
	Client *redis.Client
	Logger *zap.Logger
}

// NewSessionStoreRedis is the output adapter for revoked tokens.
func NewSessionStoreRedis(client *redis.Client, logger *zap.Logger) *SessionStoreRedis {
	return &SessionStoreRedis{Client: client, Logger: logger}
}

// Revoke stores tokenID until ttl elapses.
func (r *SessionStoreRedis) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := revokedPrefix + tokenID
	if err := r.Client.Set(ctx, key, 1, ttl).Err(); err != nil {
		return err
	}
	r.Logger.Debug("token revoked", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// IsRevoked reports whether tokenID is still on the revoked list.
func (r *SessionStoreRedis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.Client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
