// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"
)

// NoopCache is a cache that does nothing. Used when caching is disabled so
// callers can treat the cache as always present.
type NoopCache struct{}

// NewNoopCache creates a new no-op cache.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (c *NoopCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (c *NoopCache) Delete(_ context.Context, _ string) error { return nil }

func (c *NoopCache) DeleteByPrefix(_ context.Context, _ string) error { return nil }

func (c *NoopCache) Clear(_ context.Context) error { return nil }

func (c *NoopCache) Has(_ context.Context, _ string) (bool, error) { return false, nil }

func (c *NoopCache) Close() error { return nil }

var _ Cacher = (*NoopCache)(nil)
