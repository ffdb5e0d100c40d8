// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"time"
)

// Config holds cache configuration.
type Config struct {
	// Enabled determines if caching is active
	Enabled bool

	// RedisURL, when set, selects the Redis backend (e.g., redis://localhost:6379/0).
	// Empty selects the in-memory backend.
	RedisURL string

	// DefaultTTL is the default expiration time for cache entries
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for the memory backend (0 = unlimited)
	MaxSize int

	// CleanupInterval for the memory backend's expired entry sweep
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible cache defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: 10 * time.Minute,
	}
}

// New creates a cache based on the configuration. A disabled config returns
// a no-op cache so callers never need nil checks.
func New(cfg Config, log *slog.Logger) (Cacher, error) {
	if !cfg.Enabled {
		log.Info("caching disabled, using no-op cache")
		return NewNoopCache(), nil
	}

	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}

		c, err := NewRedisCache(opts)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info("using redis cache backend")
		return c, nil
	}

	log.Info("using memory cache backend",
		"max_size", cfg.MaxSize,
		"default_ttl", cfg.DefaultTTL)

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	}), nil
}
