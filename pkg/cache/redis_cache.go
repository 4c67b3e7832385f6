package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietfact/newsguard/pkg/classification"
	"github.com/vietfact/newsguard/pkg/observability/logging"
)

// redisCache shares the result cache across replicas via Redis.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(addr string, ttlSeconds int) (*redisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis cache requires an address")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &redisCache{client: client, ttl: ttl}, nil
}

func (c *redisCache) Get(ctx context.Context, text string) (*classification.ModelOutput, bool) {
	data, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Warnf("redis cache get failed: %v", err)
		}
		return nil, false
	}

	var out classification.ModelOutput
	if err := json.Unmarshal(data, &out); err != nil {
		logging.Warnf("redis cache entry corrupt, dropping: %v", err)
		_ = c.client.Del(ctx, cacheKey(text)).Err()
		return nil, false
	}
	return &out, true
}

func (c *redisCache) Set(ctx context.Context, text string, out *classification.ModelOutput) {
	if out == nil {
		return
	}
	data, err := json.Marshal(out)
	if err != nil {
		logging.Warnf("redis cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(text), data, c.ttl).Err(); err != nil {
		logging.Warnf("redis cache set failed: %v", err)
	}
}

func (c *redisCache) Close() error { return c.client.Close() }
