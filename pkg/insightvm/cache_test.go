package insightvm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCache(10)
		ctx := context.Background()

		entry := &insightvm.CacheEntry{
			Data:      []byte("value"),
			ExpiresAt: time.Now().Add(time.Minute),
		}

		err := cache.Set(ctx, "key", entry)
		require.NoError(t, err)

		got, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got.Data)
		assert.False(t, got.CreatedAt.IsZero())
		assert.True(t, cache.Has(ctx, "key"))
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCache(10)

		_, err := cache.Get(context.Background(), "absent")
		require.Error(t, err)
		assert.ErrorIs(t, err, insightvm.ErrCacheKeyNotFound)
		assert.Contains(t, err.Error(), "key not found")
	})

	t.Run("expired entry is dropped on read", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCache(10)
		ctx := context.Background()

		err := cache.Set(ctx, "stale", &insightvm.CacheEntry{
			Data:      []byte("old"),
			ExpiresAt: time.Now().Add(-time.Second),
		})
		require.NoError(t, err)

		_, err = cache.Get(ctx, "stale")
		require.Error(t, err)
		assert.ErrorIs(t, err, insightvm.ErrCacheEntryExpired)
		assert.False(t, cache.Has(ctx, "stale"))
	})

	t.Run("delete and clear", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCache(10)
		ctx := context.Background()

		for _, key := range []string{"a", "b"} {
			err := cache.Set(ctx, key, &insightvm.CacheEntry{Data: []byte(key)})
			require.NoError(t, err)
		}

		require.NoError(t, cache.Delete(ctx, "a"))
		assert.False(t, cache.Has(ctx, "a"))
		assert.True(t, cache.Has(ctx, "b"))

		require.NoError(t, cache.Clear(ctx))
		assert.False(t, cache.Has(ctx, "b"))
	})

	t.Run("oversized value is rejected", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCacheWithOptions(10, &insightvm.CacheOptions{
			MaxValueSize: 4,
		})

		err := cache.Set(context.Background(), "big", &insightvm.CacheEntry{
			Data: []byte("too large"),
		})
		assert.ErrorIs(t, err, insightvm.ErrCacheValueTooLarge)
	})

	t.Run("default TTL applies when no expiry is set", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCacheWithOptions(10, &insightvm.CacheOptions{
			DefaultTTL: time.Minute,
		})
		ctx := context.Background()

		require.NoError(t, cache.Set(ctx, "key", &insightvm.CacheEntry{Data: []byte("v")}))

		got, err := cache.Get(ctx, "key")
		require.NoError(t, err)
		assert.False(t, got.ExpiresAt.IsZero())
	})

	t.Run("eviction keeps the cache bounded", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCache(2)
		ctx := context.Background()

		require.NoError(t, cache.Set(ctx, "a", &insightvm.CacheEntry{Data: []byte("a")}))
		require.NoError(t, cache.Set(ctx, "b", &insightvm.CacheEntry{Data: []byte("b")}))
		require.NoError(t, cache.Set(ctx, "c", &insightvm.CacheEntry{Data: []byte("c")}))

		present := 0

		for _, key := range []string{"a", "b", "c"} {
			if cache.Has(ctx, key) {
				present++
			}
		}

		assert.Equal(t, 2, present)
		assert.True(t, cache.Has(ctx, "c"))
	})
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := insightvm.NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", &insightvm.CacheEntry{Data: []byte("x")}))

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, insightvm.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "key"))
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *insightvm.CacheConfig
		wantErr error
	}{
		{
			name:   "nil config defaults to memory",
			config: nil,
		},
		{
			name:   "memory cache",
			config: &insightvm.CacheConfig{Type: insightvm.CacheTypeMemory},
		},
		{
			name:   "none cache",
			config: &insightvm.CacheConfig{Type: insightvm.CacheTypeNone},
		},
		{
			name:    "nats without config",
			config:  &insightvm.CacheConfig{Type: insightvm.CacheTypeNATS},
			wantErr: insightvm.ErrNATSConfigRequired,
		},
		{
			name:    "unsupported type",
			config:  &insightvm.CacheConfig{Type: "redis"},
			wantErr: insightvm.ErrUnsupportedCacheType,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cache, err := insightvm.NewCacheFromConfig(testCase.config)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, cache)
		})
	}
}

func TestCachedJSON(t *testing.T) {
	t.Parallel()
	t.Run("fetches then serves from cache", func(t *testing.T) {
		t.Parallel()

		cache := insightvm.NewMemoryCache(10)
		ctx := context.Background()
		fetches := 0

		fetch := func(_ context.Context) ([]string, error) {
			fetches++

			return []string{"a", "b"}, nil
		}

		value, err := insightvm.CachedJSON(ctx, cache, "list", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, value)

		value, err = insightvm.CachedJSON(ctx, cache, "list", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, value)
		assert.Equal(t, 1, fetches)
	})

	t.Run("nil cache always fetches", func(t *testing.T) {
		t.Parallel()

		fetches := 0

		fetch := func(_ context.Context) (int, error) {
			fetches++

			return 7, nil
		}

		for i := 0; i < 2; i++ {
			value, err := insightvm.CachedJSON(context.Background(), nil, "n", time.Minute, fetch)
			require.NoError(t, err)
			assert.Equal(t, 7, value)
		}

		assert.Equal(t, 2, fetches)
	})

	t.Run("fetch errors pass through", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("remote down")

		_, err := insightvm.CachedJSON(context.Background(), insightvm.NewMemoryCache(10), "k", time.Minute,
			func(_ context.Context) (string, error) {
				return "", failure
			})
		assert.ErrorIs(t, err, failure)
	})
}
