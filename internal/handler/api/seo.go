// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/store"
)

// UpsertSeoPageRequest is the request body for writing a regional SEO page.
type UpsertSeoPageRequest struct {
	Region          string `json:"region"`
	State           string `json:"state"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Headline        string `json:"headline"`
	Intro           string `json:"intro"`
}

// ListSeoPages handles GET /api/v1/seo-pages
func (h *Handler) ListSeoPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pages, err := h.queries.ListSeoPages(ctx)
	if err != nil {
		h.logger.Error("failed to list seo pages", "error", err)
		WriteInternalError(w, "Failed to list SEO pages")
		return
	}

	WriteSuccess(w, pages, &Meta{Total: int64(len(pages))})
}

// GetSeoPage handles GET /api/v1/seo-pages/{slug}
func (h *Handler) GetSeoPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	page, err := h.queries.GetSeoPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "SEO page not found")
		} else {
			h.logger.Error("failed to get seo page", "slug", slug, "error", err)
			WriteInternalError(w, "Failed to retrieve SEO page")
		}
		return
	}

	WriteSuccess(w, page, nil)
}

// UpsertSeoPage handles PUT /api/v1/seo-pages/{slug} - creates the regional
// SEO page if missing, updates it otherwise. Mirrors the seeding CLI's
// upsert-by-slug semantics.
func (h *Handler) UpsertSeoPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var req UpsertSeoPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.Region == "" {
		WriteValidationError(w, map[string]string{"region": "Region is required"})
		return
	}

	params := store.SeoPageParams{
		RegionSlug:      slug,
		Region:          req.Region,
		State:           req.State,
		Title:           req.Title,
		MetaDescription: req.MetaDescription,
		Headline:        req.Headline,
		Intro:           req.Intro,
		Now:             time.Now(),
	}

	_, err := h.queries.GetSeoPageBySlug(ctx, slug)
	switch {
	case err == nil:
		page, err := h.queries.UpdateSeoPageBySlug(ctx, params)
		if err != nil {
			h.logger.Error("failed to update seo page", "slug", slug, "error", err)
			WriteInternalError(w, "Failed to update SEO page")
			return
		}
		WriteSuccess(w, page, nil)
	case errors.Is(err, sql.ErrNoRows):
		page, err := h.queries.CreateSeoPage(ctx, params)
		if err != nil {
			h.logger.Error("failed to create seo page", "slug", slug, "error", err)
			WriteInternalError(w, "Failed to create SEO page")
			return
		}
		WriteCreated(w, page)
	default:
		h.logger.Error("failed to look up seo page", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to retrieve SEO page")
	}
}
