// Package provider fetches balance snapshots for linked connections and caches them.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
)

// Cache stores serialized snapshots with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// CacheConfig selects and configures the snapshot cache.
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
	RedisDB       int
}

// DefaultCacheConfig returns an in-process cache holding snapshots for 15 minutes.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{Backend: BackendMemory, TTL: 15 * time.Minute}
}

// Validate checks the cache configuration.
func (c CacheConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive, got %s", common.ErrInvalidConfig, c.TTL)
	}
	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis.addr is required for the redis cache", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", common.ErrInvalidConfig, c.Backend)
	}
	return nil
}

// NewCache builds the configured backend.
func NewCache(cfg CacheConfig) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendRedis {
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	}
	return NewMemoryCache(), nil
}

func snapshotKey(connectionID string) string {
	return "snapshot:" + connectionID
}
