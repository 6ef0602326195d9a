package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const actorCacheKeyPrefix = "courtsec:apikey:"

// RedisActorCache shares API key lookups between server instances.
type RedisActorCache struct {
	client *redis.Client
}

// NewRedisActorCache wraps client.
func NewRedisActorCache(client *redis.Client) *RedisActorCache {
	return &RedisActorCache{client: client}
}

// Get implements ActorCache.
func (r *RedisActorCache) Get(ctx context.Context, keyHash string) (string, bool, error) {
	actor, err := r.client.Get(ctx, actorCacheKeyPrefix+keyHash).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return actor, true, nil
}

// Set implements ActorCache.
func (r *RedisActorCache) Set(ctx context.Context, keyHash, actor string, ttl time.Duration) error {
	return r.client.Set(ctx, actorCacheKeyPrefix+keyHash, actor, ttl).Err()
}
