// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/blockcms/internal/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"BLOCKCMS_DB_PATH" envDefault:"./data/blockcms.db"`
	ServerHost string `env:"BLOCKCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"BLOCKCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BLOCKCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"BLOCKCMS_LOG_LEVEL" envDefault:"info"`

	// SiteURL is the public base URL used in sitemap and robots.txt output.
	SiteURL string `env:"BLOCKCMS_SITE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration
	RedisURL     string `env:"BLOCKCMS_REDIS_URL"`                             // Optional Redis URL for distributed caching
	CachePrefix  string `env:"BLOCKCMS_CACHE_PREFIX" envDefault:"blockcms:"`   // Redis key prefix
	CacheTTL     int    `env:"BLOCKCMS_CACHE_TTL" envDefault:"3600"`           // Default cache TTL in seconds
	CacheMaxSize int    `env:"BLOCKCMS_CACHE_MAX_SIZE" envDefault:"10000"`     // Max memory cache entries
	ContentTTL   int    `env:"BLOCKCMS_CONTENT_CACHE_TTL" envDefault:"900"`    // Rendered page cache TTL in seconds

	// Preview token configuration
	PreviewTokenTTL    int `env:"BLOCKCMS_PREVIEW_TOKEN_TTL" envDefault:"3600"` // Preview token lifetime in seconds
	PreviewTokenLength int `env:"BLOCKCMS_PREVIEW_TOKEN_LENGTH" envDefault:"40"`

	// Rate limiting for public preview lookups (requests per second per IP)
	PreviewRateLimit float64 `env:"BLOCKCMS_PREVIEW_RATE_LIMIT" envDefault:"5"`
	PreviewRateBurst int     `env:"BLOCKCMS_PREVIEW_RATE_BURST" envDefault:"10"`

	// Event retention in days; pruned by the scheduler
	EventRetentionDays int `env:"BLOCKCMS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"BLOCKCMS_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// PreviewTokenExpiry returns the configured preview token lifetime.
func (c Config) PreviewTokenExpiry() time.Duration {
	return time.Duration(c.PreviewTokenTTL) * time.Second
}

// ContentCacheTTL returns the rendered page cache lifetime.
func (c Config) ContentCacheTTL() time.Duration {
	return time.Duration(c.ContentTTL) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.PreviewTokenLength < model.MinPreviewTokenLength {
		return nil, fmt.Errorf("BLOCKCMS_PREVIEW_TOKEN_LENGTH must be at least %d, got %d",
			model.MinPreviewTokenLength, cfg.PreviewTokenLength)
	}

	if cfg.PreviewTokenTTL <= 0 {
		return nil, fmt.Errorf("BLOCKCMS_PREVIEW_TOKEN_TTL must be positive, got %d", cfg.PreviewTokenTTL)
	}

	return cfg, nil
}
