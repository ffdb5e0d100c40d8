// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/testutil"
)

func seedCrawlerFixtures(t *testing.T, db *sql.DB) {
	t.Helper()

	q := store.New(db)
	ctx := context.Background()
	now := time.Now()

	_, err := q.CreatePage(ctx, store.CreatePageParams{
		Slug: "live-page", Title: "Live", Status: model.PageStatusPublished,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = q.CreatePage(ctx, store.CreatePageParams{
		Slug: "draft-page", Title: "Draft", Status: model.PageStatusDraft,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = q.CreateSeoPage(ctx, store.SeoPageParams{
		RegionSlug: "austin-tx", Region: "Austin", State: "TX",
		Title: "t", MetaDescription: "d", Headline: "h", Intro: "i", Now: now,
	})
	require.NoError(t, err)
}

func TestCrawlerSitemap(t *testing.T) {
	db := testutil.TestDB(t)
	seedCrawlerFixtures(t, db)
	h := NewCrawlerHandler(db, "https://example.com", false, testutil.TestLoggerSilent())

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec := httptest.NewRecorder()
	h.Sitemap(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "<?xml"))
	require.Contains(t, body, "<loc>https://example.com/live-page</loc>")
	require.Contains(t, body, "<loc>https://example.com/locations/austin-tx</loc>")
	require.NotContains(t, body, "draft-page", "drafts never reach the sitemap")
}

func TestCrawlerRobots(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewCrawlerHandler(db, "https://example.com", false, testutil.TestLoggerSilent())

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	rec := httptest.NewRecorder()
	h.Robots(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "User-agent: *")
	require.Contains(t, rec.Body.String(), "Disallow: /api/")
	require.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestCrawlerRobots_DisallowAll(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewCrawlerHandler(db, "https://example.com", true, testutil.TestLoggerSilent())

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	rec := httptest.NewRecorder()
	h.Robots(rec, req)

	require.Contains(t, rec.Body.String(), "Disallow: /\n")
	require.NotContains(t, rec.Body.String(), "Sitemap:")
}
