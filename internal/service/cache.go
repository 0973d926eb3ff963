package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flaggate/internal/metrics"
	"flaggate/internal/model"
	"flaggate/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrCacheMiss = errors.New("cache miss")

const (
	DefaultCacheTTL = 60 * time.Second
	cacheOpTimeout  = 150 * time.Millisecond
)

// CacheBackend is the narrow contract the cache layer needs from its store.
// Get returns ErrCacheMiss when the key is absent; any other error means the
// backend is unavailable.
type CacheBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

type redisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) CacheBackend {
	return &redisBackend{rdb: rdb}
}

func (b *redisBackend) Get(ctx context.Context, key string) (string, error) {
	val, err := b.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return val, err
}

func (b *redisBackend) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, val, ttl).Err()
}

func (b *redisBackend) Del(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, key).Err()
}

func (b *redisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Health reports whether the cache backend is reachable. A failure here never
// fails requests, only the health endpoint.
func (c *FlagCache) Health(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return c.backend.Ping(opCtx)
}

// Loader fetches the flag config from the source of truth on a cache miss.
// Returns (nil, nil) when the flag does not exist.
type Loader func(ctx context.Context) (*model.FlagConfig, error)

// FlagCache is the cache-aside layer between evaluation and the config store.
// Concurrent misses for the same key share a single backing load via
// singleflight; that synchronization covers only the load-and-populate step.
// Backend failures degrade to direct loads, the cache is never required for
// correctness.
type FlagCache struct {
	backend  CacheBackend
	ttl      time.Duration
	group    singleflight.Group
	observer metrics.Observer
}

func NewFlagCache(backend CacheBackend, ttl time.Duration, observer metrics.Observer) *FlagCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if observer == nil {
		observer = metrics.NopObserver{}
	}
	return &FlagCache{
		backend:  backend,
		ttl:      ttl,
		observer: observer,
	}
}

func CacheKey(env, flagKey string) string {
	return fmt.Sprintf("flaggate:flag:%s:%s", env, flagKey)
}

// GetOrLoad returns the cached config on a hit, otherwise loads from the
// store exactly once per concurrent miss burst and populates the cache before
// returning. A (nil, nil) result means the flag exists nowhere.
func (c *FlagCache) GetOrLoad(ctx context.Context, env, flagKey string, load Loader) (*model.FlagConfig, error) {
	key := CacheKey(env, flagKey)

	if cfg, err := c.lookup(ctx, key); err == nil {
		c.observer.RecordCacheHit()
		return cfg, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("cache unavailable, falling through to store", zap.String("key", key), zap.Error(err))
	}
	c.observer.RecordCacheMiss()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// another flight may have populated the entry while we queued
		if cfg, err := c.lookup(ctx, key); err == nil {
			return cfg, nil
		}
		cfg, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			c.populate(ctx, key, cfg)
		}
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.FlagConfig), nil
}

// Invalidate removes the entry unconditionally; subsequent reads repopulate
// from the store. Called on the write path before the mutation is acked.
func (c *FlagCache) Invalidate(ctx context.Context, env, flagKey string) error {
	key := CacheKey(env, flagKey)
	opCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return c.backend.Del(opCtx, key)
}

func (c *FlagCache) lookup(ctx context.Context, key string) (*model.FlagConfig, error) {
	opCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := c.backend.Get(opCtx, key)
	if err != nil {
		return nil, err
	}

	var cfg model.FlagConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		logger.Warn("corrupt cache entry, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, ErrCacheMiss
	}
	return &cfg, nil
}

func (c *FlagCache) populate(ctx context.Context, key string, cfg *model.FlagConfig) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	if err := c.backend.Set(opCtx, key, string(data), c.ttl); err != nil {
		logger.Warn("failed to populate cache", zap.String("key", key), zap.Error(err))
	}
}
