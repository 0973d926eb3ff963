package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flaggate/internal/model"
	"flaggate/pkg/constraints"
	"flaggate/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

// memBackend is an in-memory CacheBackend for tests.
type memBackend struct {
	mu   sync.Mutex
	data map[string]string
	// set to simulate an unreachable backend
	failing bool
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]string)}
}

func (b *memBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return "", errors.New("backend down")
	}
	val, ok := b.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return val, nil
}

func (b *memBackend) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errors.New("backend down")
	}
	b.data[key] = val
	return nil
}

func (b *memBackend) Del(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errors.New("backend down")
	}
	delete(b.data, key)
	return nil
}

func (b *memBackend) Ping(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errors.New("backend down")
	}
	return nil
}

func (b *memBackend) contains(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[key]
	return ok
}

func testConfig() *model.FlagConfig {
	return &model.FlagConfig{
		Key:     "checkout-v2",
		EnvKey:  "production",
		Enabled: true,
		Type:    constraints.TypeBoolean,
		Version: 1,
	}
}

func TestGetOrLoad_MissLoadsAndPopulates(t *testing.T) {
	backend := newMemBackend()
	cache := NewFlagCache(backend, time.Minute, nil)

	var loads int32
	cfg, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", func(ctx context.Context) (*model.FlagConfig, error) {
		atomic.AddInt32(&loads, 1)
		return testConfig(), nil
	})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "checkout-v2", cfg.Key)
	assert.Equal(t, int32(1), loads)
	assert.True(t, backend.contains(CacheKey("production", "checkout-v2")))
}

func TestGetOrLoad_HitSkipsLoader(t *testing.T) {
	backend := newMemBackend()
	cache := NewFlagCache(backend, time.Minute, nil)

	load := func(ctx context.Context) (*model.FlagConfig, error) {
		return testConfig(), nil
	}
	_, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", load)
	require.NoError(t, err)

	cfg, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", func(ctx context.Context) (*model.FlagConfig, error) {
		t.Fatal("loader must not run on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
}

func TestGetOrLoad_StampedeCoalescing(t *testing.T) {
	backend := newMemBackend()
	cache := NewFlagCache(backend, time.Minute, nil)

	var loads int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (*model.FlagConfig, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return testConfig(), nil
	}

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			cfg, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", loader)
			assert.NoError(t, err)
			assert.NotNil(t, cfg)
		}()
	}

	// let every goroutine reach the in-flight load before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads, "concurrent misses for one key must share a single load")
}

func TestGetOrLoad_NotFoundPassesThrough(t *testing.T) {
	cache := NewFlagCache(newMemBackend(), time.Minute, nil)

	cfg, err := cache.GetOrLoad(context.Background(), "production", "missing", func(ctx context.Context) (*model.FlagConfig, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestGetOrLoad_BackendDownDegradesToLoader(t *testing.T) {
	backend := newMemBackend()
	backend.failing = true
	cache := NewFlagCache(backend, time.Minute, nil)

	var loads int32
	cfg, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", func(ctx context.Context) (*model.FlagConfig, error) {
		atomic.AddInt32(&loads, 1)
		return testConfig(), nil
	})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, int32(1), loads)
}

func TestGetOrLoad_LoaderErrorSurfaces(t *testing.T) {
	cache := NewFlagCache(newMemBackend(), time.Minute, nil)

	wantErr := errors.New("store down")
	_, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", func(ctx context.Context) (*model.FlagConfig, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestInvalidate_ForcesReload(t *testing.T) {
	backend := newMemBackend()
	cache := NewFlagCache(backend, time.Minute, nil)

	var loads int32
	loader := func(ctx context.Context) (*model.FlagConfig, error) {
		atomic.AddInt32(&loads, 1)
		return testConfig(), nil
	}

	_, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", loader)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), "production", "checkout-v2"))
	assert.False(t, backend.contains(CacheKey("production", "checkout-v2")))

	_, err = cache.GetOrLoad(context.Background(), "production", "checkout-v2", loader)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads)
}

func TestLookup_CorruptEntryTreatedAsMiss(t *testing.T) {
	backend := newMemBackend()
	backend.data[CacheKey("production", "checkout-v2")] = "{not json"
	cache := NewFlagCache(backend, time.Minute, nil)

	var loads int32
	cfg, err := cache.GetOrLoad(context.Background(), "production", "checkout-v2", func(ctx context.Context) (*model.FlagConfig, error) {
		atomic.AddInt32(&loads, 1)
		return testConfig(), nil
	})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, int32(1), loads)
}
