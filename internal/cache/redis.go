package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"mediaarchive/internal/metrics"
)

const redisKeyPrefix = "archive:cache:"

// Redis shares cached provider responses between processes.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
			return nil, false, nil
		}
		return nil, false, err
	}
	metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
