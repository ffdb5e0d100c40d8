// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: publishing scheduled
// pages, expiring preview tokens and pruning old event log entries.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// Options configures the scheduler's jobs.
type Options struct {
	// EventRetention is how long event log entries are kept. 0 disables pruning.
	EventRetention time.Duration
}

// Scheduler handles scheduled tasks like publishing pages and token cleanup.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
	opts   Options
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger, opts Options) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
		opts:   opts,
	}
}

// Start registers the jobs and begins the scheduler:
// scheduled page publishing every minute, preview token cleanup every five
// minutes, and event log pruning daily.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.processScheduledPages(); err != nil {
			s.logger.Error("failed to process scheduled pages", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("*/5 * * * *", func() {
		if err := s.cleanupPreviewTokens(); err != nil {
			s.logger.Error("failed to clean up preview tokens", "error", err)
		}
	}); err != nil {
		return err
	}

	if s.opts.EventRetention > 0 {
		if _, err := s.cron.AddFunc("30 3 * * *", func() {
			if err := s.pruneEvents(); err != nil {
				s.logger.Error("failed to prune events", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// processScheduledPages checks for pages due for publishing and publishes them.
func (s *Scheduler) processScheduledPages() error {
	ctx := context.Background()
	queries := store.New(s.db)

	now := time.Now()
	pages, err := queries.GetScheduledPagesForPublishing(ctx, now)
	if err != nil {
		return err
	}

	if len(pages) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled pages", "count", len(pages))

	for _, page := range pages {
		if err := s.publishPage(ctx, queries, page, now); err != nil {
			s.logger.Error("failed to publish scheduled page",
				"page_id", page.ID,
				"page_title", page.Title,
				"error", err,
			)
			continue
		}

		s.logger.Info("published scheduled page",
			"page_id", page.ID,
			"page_title", page.Title,
			"scheduled_at", page.ScheduledAt.Time,
		)
	}

	return nil
}

// publishPage publishes a single scheduled page and logs the event.
func (s *Scheduler) publishPage(ctx context.Context, queries *store.Queries, page model.Page, now time.Time) error {
	_, err := queries.PublishScheduledPage(ctx, store.PublishScheduledPageParams{
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
		ID:          page.ID,
	})
	if err != nil {
		return err
	}

	metadata := map[string]interface{}{
		"page_id":      page.ID,
		"page_title":   page.Title,
		"page_slug":    page.Slug,
		"scheduled_at": page.ScheduledAt.Time.Format(time.RFC3339),
		"published_at": now.Format(time.RFC3339),
	}
	metadataJSON, _ := json.Marshal(metadata)

	_, err = queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryPage,
		Message:   "Page published automatically by scheduler: " + page.Title,
		APIKeyID:  sql.NullInt64{}, // System action, no API key
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled publish event", "error", err)
	}

	return nil
}

// cleanupPreviewTokens deletes expired preview tokens.
func (s *Scheduler) cleanupPreviewTokens() error {
	ctx := context.Background()
	queries := store.New(s.db)

	removed, err := queries.DeleteExpiredPreviewTokens(ctx, time.Now())
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("expired preview tokens removed", "count", removed)
	}
	return nil
}

// pruneEvents removes event log entries older than the retention window.
func (s *Scheduler) pruneEvents() error {
	ctx := context.Background()
	queries := store.New(s.db)

	cutoff := time.Now().Add(-s.opts.EventRetention)
	removed, err := queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("old events pruned", "count", removed, "cutoff", cutoff)
	}
	return nil
}
