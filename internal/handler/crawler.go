// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/seo"
	"github.com/olegiv/blockcms/internal/store"
)

// maxSitemapPages bounds the sitemap query. The sitemap protocol itself
// caps a single file at 50000 URLs.
const maxSitemapPages = 50000

// CrawlerHandler serves robots.txt and sitemap.xml over published content.
type CrawlerHandler struct {
	queries     *store.Queries
	siteURL     string
	disallowAll bool
	logger      *slog.Logger
}

// NewCrawlerHandler creates a new crawler handler. disallowAll blocks all
// crawlers, for staging deployments.
func NewCrawlerHandler(db *sql.DB, siteURL string, disallowAll bool, logger *slog.Logger) *CrawlerHandler {
	return &CrawlerHandler{
		queries:     store.New(db),
		siteURL:     siteURL,
		disallowAll: disallowAll,
		logger:      logger,
	}
}

// Robots handles GET /robots.txt
func (h *CrawlerHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	content := seo.GenerateRobots(h.siteURL, h.disallowAll, "")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// Sitemap handles GET /sitemap.xml - published pages and regional landing
// pages only. Drafts and scheduled pages stay out until they go live.
func (h *CrawlerHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pages, err := h.queries.ListPagesByStatus(ctx, store.ListPagesByStatusParams{
		Status: model.PageStatusPublished,
		Limit:  maxSitemapPages,
	})
	if err != nil {
		h.logger.Error("failed to list pages for sitemap", "error", err)
		http.Error(w, "Failed to build sitemap", http.StatusInternalServerError)
		return
	}

	regions, err := h.queries.ListSeoPages(ctx)
	if err != nil {
		h.logger.Error("failed to list seo pages for sitemap", "error", err)
		http.Error(w, "Failed to build sitemap", http.StatusInternalServerError)
		return
	}

	sitemapPages := make([]seo.SitemapPage, 0, len(pages))
	for _, p := range pages {
		sitemapPages = append(sitemapPages, seo.SitemapPage{
			Slug:      p.Slug,
			UpdatedAt: p.UpdatedAt,
		})
	}

	sitemapRegions := make([]seo.SitemapRegion, 0, len(regions))
	for _, sp := range regions {
		sitemapRegions = append(sitemapRegions, seo.SitemapRegion{
			Slug:      sp.RegionSlug,
			UpdatedAt: sp.UpdatedAt,
		})
	}

	output, err := seo.GenerateSitemap(h.siteURL, sitemapPages, sitemapRegions)
	if err != nil {
		h.logger.Error("failed to generate sitemap", "error", err)
		http.Error(w, "Failed to build sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(output)
}
