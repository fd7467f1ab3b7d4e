package discord

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedBrokerVerifier caches broker-role lookups in Redis for a short TTL.
// It backs the synchronous/list-filtering permission path only; write actions
// always go through the live client so a stale cache can never grant a write.
type CachedBrokerVerifier struct {
	client *Client
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedBrokerVerifier wraps the live client with a Redis cache. A nil
// redis client degrades to live lookups.
func NewCachedBrokerVerifier(client *Client, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedBrokerVerifier {
	return &CachedBrokerVerifier{client: client, redis: rdb, ttl: ttl, logger: logger}
}

func brokerCacheKey(discordID string) string {
	return "broker_role:" + discordID
}

// HasBrokerRole returns the cached answer when fresh, otherwise asks Discord
// and stores the result.
func (v *CachedBrokerVerifier) HasBrokerRole(ctx context.Context, discordID string) (bool, error) {
	if v.redis != nil {
		cached, err := v.redis.Get(ctx, brokerCacheKey(discordID)).Result()
		if err == nil {
			return cached == "1", nil
		}
		if err != redis.Nil {
			v.logger.Warn("broker cache read failed", zap.Error(err))
		}
	}

	has, err := v.client.HasBrokerRole(ctx, discordID)
	if err != nil {
		return false, err
	}

	if v.redis != nil {
		value := "0"
		if has {
			value = "1"
		}
		if err := v.redis.Set(ctx, brokerCacheKey(discordID), value, v.ttl).Err(); err != nil {
			v.logger.Warn("broker cache write failed", zap.Error(err))
		}
	}
	return has, nil
}
