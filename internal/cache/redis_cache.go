package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yoockh/outreach/internal/metrics"
)

// RedisCache stores JSON values under "<namespace>:<key>" so several
// deployments can share one Redis database.
type RedisCache struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisCache(rdb *redis.Client, namespace string) *RedisCache {
	return &RedisCache{rdb: rdb, namespace: namespace}
}

// Key returns the Redis key actually used for key.
func (c *RedisCache) Key(key string) string {
	if c.namespace == "" {
		return key
	}
	return c.namespace + ":" + key
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.Key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		// undecodable: drop it and treat as a miss
		metrics.CacheLookups.WithLabelValues("corrupt").Inc()
		_ = c.rdb.Del(ctx, c.Key(key)).Err()
		return false, nil
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.Key(key), b, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.Key(k)
	}
	return c.rdb.Del(ctx, full...).Err()
}
