// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/util"
)

// SeoSeedEntry is one regional metadata record from a seed file.
type SeoSeedEntry struct {
	Region          string `json:"region" yaml:"region"`
	State           string `json:"state" yaml:"state"`
	Slug            string `json:"slug,omitempty" yaml:"slug,omitempty"`
	Title           string `json:"title" yaml:"title"`
	MetaDescription string `json:"meta_description" yaml:"meta_description"`
	Headline        string `json:"headline" yaml:"headline"`
	Intro           string `json:"intro" yaml:"intro"`
}

// SyncResult summarizes one seeding run.
type SyncResult struct {
	RunID   string
	Created int
	Updated int
	Errors  []SyncError
}

// SyncError records a single entry that could not be synced.
type SyncError struct {
	Slug    string
	Message string
}

// SeoSyncService upserts regional SEO page metadata by region slug. Runs
// are idempotent: re-seeding the same file only bumps updated_at.
type SeoSyncService struct {
	queries *store.Queries
	events  *EventService
	logger  *slog.Logger
}

// NewSeoSyncService creates a new SeoSyncService.
func NewSeoSyncService(db *sql.DB, logger *slog.Logger) *SeoSyncService {
	return &SeoSyncService{
		queries: store.New(db),
		events:  NewEventService(db),
		logger:  logger,
	}
}

// Sync upserts all entries and returns created/updated/error counts.
// Entries without an explicit slug get one derived from region and state.
// A bad entry is recorded and skipped; the run continues.
func (s *SeoSyncService) Sync(ctx context.Context, entries []SeoSeedEntry) (SyncResult, error) {
	result := SyncResult{RunID: uuid.NewString()}
	now := time.Now()

	for _, entry := range entries {
		slug := entry.Slug
		if slug == "" {
			slug = util.Slugify(entry.Region + " " + entry.State)
		}
		if entry.Region == "" || slug == "" {
			result.Errors = append(result.Errors, SyncError{
				Slug:    slug,
				Message: "region is required",
			})
			continue
		}

		params := store.SeoPageParams{
			RegionSlug:      slug,
			Region:          entry.Region,
			State:           entry.State,
			Title:           entry.Title,
			MetaDescription: entry.MetaDescription,
			Headline:        entry.Headline,
			Intro:           entry.Intro,
			Now:             now,
		}

		_, err := s.queries.GetSeoPageBySlug(ctx, slug)
		switch {
		case err == nil:
			if _, err := s.queries.UpdateSeoPageBySlug(ctx, params); err != nil {
				result.Errors = append(result.Errors, SyncError{Slug: slug, Message: err.Error()})
				continue
			}
			result.Updated++
		case errors.Is(err, sql.ErrNoRows):
			if _, err := s.queries.CreateSeoPage(ctx, params); err != nil {
				result.Errors = append(result.Errors, SyncError{Slug: slug, Message: err.Error()})
				continue
			}
			result.Created++
		default:
			result.Errors = append(result.Errors, SyncError{Slug: slug, Message: err.Error()})
		}
	}

	s.logger.Info("seo pages synced",
		"run_id", result.RunID,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)
	_ = s.events.LogInfo(ctx, model.EventCategorySeo,
		fmt.Sprintf("SEO pages synced: %d created, %d updated, %d errors",
			result.Created, result.Updated, len(result.Errors)),
		nil, map[string]any{"run_id": result.RunID})

	return result, nil
}
