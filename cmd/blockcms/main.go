// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/config"
	"github.com/olegiv/blockcms/internal/handler"
	"github.com/olegiv/blockcms/internal/handler/api"
	"github.com/olegiv/blockcms/internal/logging"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/scheduler"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "blockcms - Block-based content engine\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_DB_PATH              SQLite database path (default: ./data/blockcms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SITE_URL             Public base URL for sitemap/robots output (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_REDIS_URL            Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_PREVIEW_TOKEN_TTL    Preview token lifetime in seconds (default: 3600)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_DO_SEED              Seed demo content on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("blockcms %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed default data (first API key, optional demo page)
	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Initialize cache backend and the rendered-content cache on top of it
	backend, err := cache.New(cache.Config{
		Enabled:         true,
		RedisURL:        cfg.RedisURL,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	contentCache := cache.NewContentCache(backend, cfg.ContentCacheTTL(), logger)

	// Services
	blockService := service.NewBlockService(db, contentCache, logger)
	previewService := service.NewPreviewService(db, cfg.PreviewTokenLength, logger)

	// Start scheduled jobs: due page publishing, token cleanup, event pruning
	sched := scheduler.New(db, logger, scheduler.Options{
		EventRetention: time.Duration(cfg.EventRetentionDays) * 24 * time.Hour,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Handlers
	apiHandler := api.NewHandler(db, blockService, previewService, contentCache, logger)
	healthHandler := handler.NewHealthHandler(db)
	crawlerHandler := handler.NewCrawlerHandler(db, cfg.SiteURL, cfg.IsDevelopment(), logger)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check routes (public, more detail for authenticated callers)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAPIKeyAuth(db))
		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Liveness)
		r.Get("/health/ready", healthHandler.Readiness)
	})

	// Crawler artifacts over published content. Development deployments
	// advertise nothing and block all crawlers.
	r.Get("/robots.txt", crawlerHandler.Robots)
	r.Get("/sitemap.xml", crawlerHandler.Sitemap)

	// Per-IP limiter on the public preview endpoint: tokens are bearer
	// credentials, so unthrottled lookups would invite brute-forcing.
	previewLimiter := middleware.NewIPRateLimiter(cfg.PreviewRateLimit, cfg.PreviewRateBurst)

	// REST API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Global per-IP rate limiting for the API surface
		apiLimiter := middleware.NewIPRateLimiter(100, 200)
		r.Use(apiLimiter.Middleware())

		// Public endpoints
		r.Get("/status", apiHandler.Status)

		// Published content and page reads (optional auth)
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAPIKeyAuth(db))
			r.Get("/pages", apiHandler.ListPages)
			r.Get("/pages/{id:[0-9]+}", apiHandler.GetPage)
			r.Get("/pages/{slug}/content", apiHandler.GetPageContent)
		})

		// Regional SEO page reads (public)
		r.Get("/seo-pages", apiHandler.ListSeoPages)
		r.Get("/seo-pages/{slug}", apiHandler.GetSeoPage)

		// Draft preview via bearer token (public, tightly rate limited)
		r.With(previewLimiter.Middleware()).Get("/preview/{token}", apiHandler.PreviewPage)

		// Protected endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(db))
			r.Use(middleware.APIRateLimit(10, 20))

			r.Get("/auth", apiHandler.AuthInfo)

			// Block reads expose unpublished drafts, so they need a key
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionPagesRead))
				r.Get("/blocks/{id}", apiHandler.GetBlock)
				r.Get("/blocks/{id}/versions", apiHandler.ListBlockVersions)
			})

			// Page writes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionPagesWrite))
				r.Post("/pages", apiHandler.CreatePage)
				r.Put("/pages/{id:[0-9]+}", apiHandler.UpdatePage)
				r.Delete("/pages/{id:[0-9]+}", apiHandler.DeletePage)
			})

			// Block writes: draft editing, validation, publish, history
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionBlocksWrite))
				r.Post("/pages/{id:[0-9]+}/blocks", apiHandler.CreateBlock)
				r.Post("/pages/{id:[0-9]+}/blocks/reorder", apiHandler.ReorderBlocks)
				r.Put("/blocks/{id}/draft", apiHandler.UpdateBlockDraft)
				r.Post("/blocks/{id}/validate", apiHandler.ValidateBlock)
				r.Post("/blocks/{id}/publish", apiHandler.PublishBlock)
				r.Post("/blocks/{id}/revert", apiHandler.RevertBlock)
				r.Delete("/blocks/{id}", apiHandler.DeleteBlock)
			})

			// Preview token issuance
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionPreviewWrite))
				r.Post("/preview-tokens", apiHandler.CreatePreviewToken)
			})

			// SEO page writes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(model.PermissionSeoWrite))
				r.Put("/seo-pages/{slug}", apiHandler.UpsertSeoPage)
			})
		})
	})
	slog.Info("REST API v1 mounted at /api/v1")

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
