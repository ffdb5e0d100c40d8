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

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// DefaultPreviewExpiry is the token lifetime used when the caller does not
// choose one.
const DefaultPreviewExpiry = 60 * time.Minute

// PreviewAccess identifies the page a validated token grants access to.
type PreviewAccess struct {
	PageID int64  `json:"page_id"`
	Slug   string `json:"slug"`
}

// PreviewService issues and validates time-boxed bearer tokens that grant
// unauthenticated read access to a page's draft content. Possession of a
// valid token is the only check; tokens are transferable secrets.
type PreviewService struct {
	queries     *store.Queries
	events      *EventService
	tokenLength int
	logger      *slog.Logger
}

// NewPreviewService creates a new PreviewService. tokenLength below the
// model minimum falls back to the default length.
func NewPreviewService(db *sql.DB, tokenLength int, logger *slog.Logger) *PreviewService {
	return &PreviewService{
		queries:     store.New(db),
		events:      NewEventService(db),
		tokenLength: tokenLength,
		logger:      logger,
	}
}

// CreateToken issues a preview token for the page, expiring after
// expiresIn. A zero or negative duration produces a token that is already
// expired at creation; the caller gets it back but validation will refuse
// it. Returns ErrNotFound for an unknown page.
func (s *PreviewService) CreateToken(ctx context.Context, pageID int64, expiresIn time.Duration) (model.PreviewToken, error) {
	page, err := s.queries.GetPageByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PreviewToken{}, ErrNotFound
		}
		return model.PreviewToken{}, err
	}

	raw, err := model.GeneratePreviewToken(s.tokenLength)
	if err != nil {
		return model.PreviewToken{}, fmt.Errorf("generating preview token: %w", err)
	}

	now := time.Now()
	token, err := s.queries.CreatePreviewToken(ctx, store.CreatePreviewTokenParams{
		PageID:    pageID,
		Token:     raw,
		ExpiresAt: now.Add(expiresIn),
		CreatedAt: now,
	})
	if err != nil {
		return model.PreviewToken{}, fmt.Errorf("storing preview token: %w", err)
	}

	_ = s.events.LogInfo(ctx, model.EventCategoryPreview, "Preview token issued for page: "+page.Slug, nil, map[string]any{
		"page_id":    pageID,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})

	return token, nil
}

// ValidateToken resolves a token to the page it grants access to. Missing
// and expired tokens both yield ErrTokenInvalid; the caller cannot tell
// the difference, which keeps token existence unguessable. Tokens are not
// consumed: a token validates repeatedly until expiry.
func (s *PreviewService) ValidateToken(ctx context.Context, token string) (PreviewAccess, error) {
	if token == "" {
		return PreviewAccess{}, ErrTokenInvalid
	}

	rec, err := s.queries.GetPreviewToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PreviewAccess{}, ErrTokenInvalid
		}
		return PreviewAccess{}, err
	}

	if rec.IsExpired(time.Now()) {
		return PreviewAccess{}, ErrTokenInvalid
	}

	page, err := s.queries.GetPageByID(ctx, rec.PageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PreviewAccess{}, ErrTokenInvalid
		}
		return PreviewAccess{}, err
	}

	return PreviewAccess{PageID: page.ID, Slug: page.Slug}, nil
}

// CleanupExpired bulk-deletes tokens whose expiry has passed and returns
// the count removed. Idempotent; safe to run concurrently with issuance
// since only already-expired rows match.
func (s *PreviewService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.queries.DeleteExpiredPreviewTokens(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired preview tokens removed", "count", removed)
	}
	return removed, nil
}
