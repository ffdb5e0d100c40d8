// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/handler"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/util"
)

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	ScheduledAt     string `json:"scheduled_at"`
}

// UpdatePageRequest is the request body for updating a page. Nil fields are
// left unchanged.
type UpdatePageRequest struct {
	Slug            *string `json:"slug"`
	Title           *string `json:"title"`
	Status          *string `json:"status"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	ScheduledAt     *string `json:"scheduled_at"`
}

// ListPages handles GET /api/v1/pages
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)
	offset := (page - 1) * perPage

	status := r.URL.Query().Get("status")
	if status != "" && status != model.PageStatusDraft && status != model.PageStatusPublished {
		WriteBadRequest(w, "Invalid status filter", map[string]string{
			"status": "must be draft or published",
		})
		return
	}

	var (
		pages []model.Page
		total int64
		err   error
	)
	if status != "" {
		pages, err = h.queries.ListPagesByStatus(ctx, store.ListPagesByStatusParams{
			Status: status,
			Limit:  int64(perPage),
			Offset: int64(offset),
		})
		if err == nil {
			total, err = h.queries.CountPagesByStatus(ctx, status)
		}
	} else {
		pages, err = h.queries.ListPages(ctx, store.ListPagesParams{
			Limit:  int64(perPage),
			Offset: int64(offset),
		})
		if err == nil {
			total, err = h.queries.CountPages(ctx)
		}
	}
	if err != nil {
		h.logger.Error("failed to list pages", "error", err)
		WriteInternalError(w, "Failed to list pages")
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	WriteSuccess(w, pages, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages,
	})
}

// GetPage handles GET /api/v1/pages/{id}
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, ok := requireEntityByID(w, r, "page", func(id int64) (model.Page, error) {
		return h.queries.GetPageByID(ctx, id)
	})
	if !ok {
		return
	}

	blocks, err := h.queries.ListBlocksByPage(ctx, page.ID)
	if err != nil {
		h.logger.Error("failed to list page blocks", "page_id", page.ID, "error", err)
		WriteInternalError(w, "Failed to retrieve page blocks")
		return
	}

	type PageWithBlocks struct {
		model.Page
		Blocks []model.Block `json:"blocks"`
	}

	WriteSuccess(w, PageWithBlocks{Page: page, Blocks: blocks}, nil)
}

// CreatePage handles POST /api/v1/pages
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if req.Status == "" {
		req.Status = model.PageStatusDraft
	}
	if req.Status != model.PageStatusDraft && req.Status != model.PageStatusPublished {
		fieldErrors["status"] = "Status must be draft or published"
	}

	slug := req.Slug
	if slug == "" {
		slug = util.Slugify(req.Title)
	} else {
		slug = util.Slugify(slug)
	}
	if slug == "" {
		fieldErrors["slug"] = "Slug could not be derived from title"
	}

	scheduledAt, schedErr := parseScheduledAt(req.ScheduledAt)
	if schedErr != nil {
		fieldErrors["scheduled_at"] = "Must be an RFC 3339 timestamp"
	}
	if scheduledAt.Valid && req.Status == model.PageStatusPublished {
		fieldErrors["scheduled_at"] = "Cannot schedule an already published page"
	}

	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	exists, err := h.queries.SlugExists(ctx, slug)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists != 0 {
		WriteError(w, http.StatusConflict, "conflict", "A page with this slug already exists", map[string]string{
			"slug": slug,
		})
		return
	}

	now := time.Now()
	page, err := h.queries.CreatePage(ctx, store.CreatePageParams{
		Slug:            slug,
		Title:           req.Title,
		Status:          req.Status,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		ScheduledAt:     scheduledAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		h.logger.Error("failed to create page", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to create page")
		return
	}

	if page.Status == model.PageStatusPublished {
		page, err = h.markPublished(ctx, page)
		if err != nil {
			h.logger.Error("failed to set published_at", "page_id", page.ID, "error", err)
		}
	}

	WriteCreated(w, page)
}

// UpdatePage handles PUT /api/v1/pages/{id}
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, ok := requireEntityByID(w, r, "page", func(id int64) (model.Page, error) {
		return h.queries.GetPageByID(ctx, id)
	})
	if !ok {
		return
	}

	var req UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	oldSlug := page.Slug
	fieldErrors := make(map[string]string)

	if req.Slug != nil {
		slug := util.Slugify(*req.Slug)
		if slug == "" {
			fieldErrors["slug"] = "Slug cannot be empty"
		} else {
			page.Slug = slug
		}
	}
	if req.Title != nil {
		if *req.Title == "" {
			fieldErrors["title"] = "Title cannot be empty"
		} else {
			page.Title = *req.Title
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case model.PageStatusDraft, model.PageStatusPublished:
			page.Status = *req.Status
		default:
			fieldErrors["status"] = "Status must be draft or published"
		}
	}
	if req.MetaTitle != nil {
		page.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		page.MetaDescription = *req.MetaDescription
	}
	if req.ScheduledAt != nil {
		scheduledAt, err := parseScheduledAt(*req.ScheduledAt)
		if err != nil {
			fieldErrors["scheduled_at"] = "Must be an RFC 3339 timestamp or empty to clear"
		} else {
			page.ScheduledAt = scheduledAt
		}
	}

	if page.Status == model.PageStatusPublished && page.ScheduledAt.Valid {
		fieldErrors["scheduled_at"] = "Cannot schedule an already published page"
	}

	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if page.Slug != oldSlug {
		exists, err := h.queries.SlugExistsExcluding(ctx, store.SlugExistsExcludingParams{
			Slug: page.Slug,
			ID:   page.ID,
		})
		if err != nil {
			WriteInternalError(w, "Failed to check slug")
			return
		}
		if exists != 0 {
			WriteError(w, http.StatusConflict, "conflict", "A page with this slug already exists", map[string]string{
				"slug": page.Slug,
			})
			return
		}
	}

	now := time.Now()
	publishedAt := page.PublishedAt
	if page.Status == model.PageStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	updated, err := h.queries.UpdatePage(ctx, store.UpdatePageParams{
		ID:              page.ID,
		Slug:            page.Slug,
		Title:           page.Title,
		Status:          page.Status,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		PublishedAt:     publishedAt,
		ScheduledAt:     page.ScheduledAt,
		UpdatedAt:       now,
	})
	if err != nil {
		h.logger.Error("failed to update page", "page_id", page.ID, "error", err)
		WriteInternalError(w, "Failed to update page")
		return
	}

	if h.contentCache != nil {
		h.contentCache.InvalidatePage(ctx, oldSlug)
		if updated.Slug != oldSlug {
			h.contentCache.InvalidatePage(ctx, updated.Slug)
		}
	}

	WriteSuccess(w, updated, nil)
}

// DeletePage handles DELETE /api/v1/pages/{id}
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, ok := requireEntityByID(w, r, "page", func(id int64) (model.Page, error) {
		return h.queries.GetPageByID(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeletePage(ctx, page.ID); err != nil {
		h.logger.Error("failed to delete page", "page_id", page.ID, "error", err)
		WriteInternalError(w, "Failed to delete page")
		return
	}

	if h.contentCache != nil {
		h.contentCache.InvalidatePage(ctx, page.Slug)
	}

	WriteSuccess(w, map[string]any{"deleted": true, "id": page.ID}, nil)
}

// RenderedBlock is one block of a published page's public payload.
type RenderedBlock struct {
	BlockKey  string          `json:"block_key"`
	BlockType string          `json:"block_type"`
	Content   json.RawMessage `json:"content"`
}

// PageContent is the public payload of a published page.
type PageContent struct {
	Slug            string          `json:"slug"`
	Title           string          `json:"title"`
	MetaTitle       string          `json:"meta_title,omitempty"`
	MetaDescription string          `json:"meta_description,omitempty"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	Blocks          []RenderedBlock `json:"blocks"`
}

// GetPageContent handles GET /api/v1/pages/{slug}/content - the public read
// path. Only published pages resolve, and only published block content is
// served. Rendered payloads are cached by slug.
func (h *Handler) GetPageContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	if h.contentCache != nil {
		if payload, ok := h.contentCache.GetPage(ctx, slug); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(payload)
			return
		}
	}

	page, err := h.queries.GetPublishedPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			h.logger.Error("failed to load published page", "slug", slug, "error", err)
			WriteInternalError(w, "Failed to load page")
		}
		return
	}

	blocks, err := h.queries.ListPublishedBlocksByPage(ctx, page.ID)
	if err != nil {
		h.logger.Error("failed to list published blocks", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to load page content")
		return
	}

	rendered := make([]RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		out, err := content.RenderPublished(b.BlockType, []byte(b.ContentPublished.String))
		if err != nil {
			h.logger.Error("failed to render block", "block_id", b.ID, "error", err)
			continue
		}
		rendered = append(rendered, RenderedBlock{
			BlockKey:  b.BlockKey,
			BlockType: b.BlockType,
			Content:   out,
		})
	}

	payload := PageContent{
		Slug:            page.Slug,
		Title:           page.Title,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		Blocks:          rendered,
	}
	if page.PublishedAt.Valid {
		t := page.PublishedAt.Time
		payload.PublishedAt = &t
	}

	body, err := json.Marshal(Response{Data: payload})
	if err != nil {
		WriteInternalError(w, "Failed to encode page content")
		return
	}

	if h.contentCache != nil {
		h.contentCache.SetPage(ctx, slug, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// markPublished stamps published_at on a page created directly as published.
func (h *Handler) markPublished(ctx context.Context, page model.Page) (model.Page, error) {
	now := time.Now()
	return h.queries.UpdatePage(ctx, store.UpdatePageParams{
		ID:              page.ID,
		Slug:            page.Slug,
		Title:           page.Title,
		Status:          page.Status,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		PublishedAt:     sql.NullTime{Time: now, Valid: true},
		ScheduledAt:     page.ScheduledAt,
		UpdatedAt:       now,
	})
}

// parseScheduledAt parses an optional RFC 3339 timestamp. An empty string
// yields a null time.
func parseScheduledAt(raw string) (sql.NullTime, error) {
	if raw == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}
