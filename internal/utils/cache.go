package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil comparison
	"time"          // Time durations

	"bingo_ledger/internal/metrics" // Hit/miss counters

	"github.com/redis/go-redis/v9" // Redis client
)

// RedisCache is a JSON read-through cache backed by Redis
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps a connected client
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false, nil // Key does not exist
	} else if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return false, err // Other Redis error
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// Set stores a value in Redis with a specified TTL
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Invalidate deletes every key starting with one of the prefixes
func (c *RedisCache) Invalidate(ctx context.Context, prefixes ...string) error {
	for _, prefix := range prefixes {
		iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// NopCache never stores anything. Used when Redis is not configured.
type NopCache struct{}

// Get always misses
func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set discards the value
func (NopCache) Set(context.Context, string, any, time.Duration) error { return nil }

// Invalidate does nothing
func (NopCache) Invalidate(context.Context, ...string) error { return nil }
