// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c := newTestMemoryCache(t)

	_, err := c.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))
	require.NoError(t, c.Delete(ctx, "key"))

	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "content:home", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "content:about", []byte("b"), 0))
	require.NoError(t, c.Set(ctx, "other:key", []byte("c"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, "content:"))

	_, err := c.Get(ctx, "content:home")
	require.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "content:about")
	require.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "other:key")
	require.NoError(t, err)
	require.Equal(t, []byte("c"), got)
}

func TestMemoryCache_Clear(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Clear(ctx))

	_, err := c.Get(ctx, "a")
	require.ErrorIs(t, err, ErrCacheMiss)
	require.Zero(t, c.Stats().Items)
}

func TestMemoryCache_Has(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	ok, err := c.Has(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "key", []byte("v"), 0))
	ok, err = c.Has(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := c.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), again)
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{})
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "key")
	require.ErrorIs(t, err, ErrCacheClosed)
	require.ErrorIs(t, c.Set(context.Background(), "key", nil, 0), ErrCacheClosed)
	// Close is idempotent
	require.NoError(t, c.Close())
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 0))
	_, _ = c.Get(ctx, "key")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	require.EqualValues(t, 1, stats.Hits)
	require.EqualValues(t, 1, stats.Misses)
	require.EqualValues(t, 1, stats.Sets)
	require.Equal(t, 1, stats.Items)
	require.InDelta(t, 50.0, stats.HitRate, 0.01)

	c.ResetStats()
	stats = c.Stats()
	require.Zero(t, stats.Hits)
	require.Zero(t, stats.Misses)
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), 0))
	_, err := c.Get(ctx, "key")
	require.ErrorIs(t, err, ErrCacheMiss)

	ok, err := c.Has(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Close())
}

func TestFactory_New(t *testing.T) {
	logger := testLogger()

	t.Run("disabled returns noop", func(t *testing.T) {
		c, err := New(Config{Enabled: false}, logger)
		require.NoError(t, err)
		require.IsType(t, &NoopCache{}, c)
	})

	t.Run("default returns memory", func(t *testing.T) {
		c, err := New(DefaultConfig(), logger)
		require.NoError(t, err)
		require.IsType(t, &MemoryCache{}, c)
		_ = c.Close()
	})

	t.Run("bad redis url fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RedisURL = "://not-a-url"
		_, err := New(cfg, logger)
		require.Error(t, err)
	})
}
