// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// contentKeyPrefix namespaces rendered page payloads in the cache.
const contentKeyPrefix = "content:"

// DefaultContentTTL bounds how long a rendered page payload may be served
// without revalidation. Invalidation on publish keeps it fresh in practice;
// the TTL is a backstop.
const DefaultContentTTL = 15 * time.Minute

// ContentCache caches rendered published page payloads keyed by slug.
// All operations are best-effort: a cache failure degrades to a store read,
// never to a request failure.
type ContentCache struct {
	cache  Cacher
	ttl    time.Duration
	logger *slog.Logger
}

// NewContentCache creates a content cache over the given backend. A zero
// ttl uses DefaultContentTTL.
func NewContentCache(c Cacher, ttl time.Duration, logger *slog.Logger) *ContentCache {
	if ttl <= 0 {
		ttl = DefaultContentTTL
	}
	return &ContentCache{cache: c, ttl: ttl, logger: logger}
}

// GetPage returns the cached payload for a slug, or false on a miss.
func (c *ContentCache) GetPage(ctx context.Context, slug string) ([]byte, bool) {
	data, err := c.cache.Get(ctx, contentKeyPrefix+slug)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetPage stores the rendered payload for a slug.
func (c *ContentCache) SetPage(ctx context.Context, slug string, payload []byte) {
	if err := c.cache.Set(ctx, contentKeyPrefix+slug, payload, c.ttl); err != nil {
		c.logger.Warn("content cache set failed", "slug", slug, "error", err)
	}
}

// InvalidatePage drops the cached payload for a slug. Called after publish,
// revert-then-publish, reorder, page update and delete.
func (c *ContentCache) InvalidatePage(ctx context.Context, slug string) {
	if err := c.cache.Delete(ctx, contentKeyPrefix+slug); err != nil {
		c.logger.Warn("content cache invalidation failed", "slug", slug, "error", err)
	}
}

// InvalidateAll drops every cached page payload. Used when a sweeping change
// (seo sync, bulk import) makes per-slug invalidation impractical.
func (c *ContentCache) InvalidateAll(ctx context.Context) {
	if err := c.cache.DeleteByPrefix(ctx, contentKeyPrefix); err != nil {
		c.logger.Warn("content cache clear failed", "error", err)
	}
}
