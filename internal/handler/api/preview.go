// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/service"
)

// CreatePreviewTokenRequest is the request body for issuing a preview token.
// ExpiresInMinutes is a pointer so an explicit zero (a token born expired)
// stays distinguishable from an omitted field (the default lifetime).
type CreatePreviewTokenRequest struct {
	PageID           int64 `json:"page_id"`
	ExpiresInMinutes *int  `json:"expires_in_minutes"`
}

// PreviewTokenResponse is the response for an issued preview token. The raw
// token appears here once; it is the whole credential.
type PreviewTokenResponse struct {
	Token      string    `json:"token"`
	PageID     int64     `json:"page_id"`
	PreviewURL string    `json:"preview_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CreatePreviewToken handles POST /api/v1/preview-tokens
func (h *Handler) CreatePreviewToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePreviewTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.PageID <= 0 {
		WriteValidationError(w, map[string]string{"page_id": "Page ID is required"})
		return
	}

	expiresIn := service.DefaultPreviewExpiry
	if req.ExpiresInMinutes != nil {
		expiresIn = time.Duration(*req.ExpiresInMinutes) * time.Minute
	}

	token, err := h.preview.CreateToken(ctx, req.PageID, expiresIn)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to create preview token", "page_id", req.PageID, "error", err)
		WriteInternalError(w, "Failed to create preview token")
		return
	}

	WriteCreated(w, PreviewTokenResponse{
		Token:      token.Token,
		PageID:     token.PageID,
		PreviewURL: "/api/v1/preview/" + token.Token,
		ExpiresAt:  token.ExpiresAt,
	})
}

// PreviewPage handles GET /api/v1/preview/{token} - the unauthenticated
// draft read path. A valid token resolves to the page's draft content,
// including blocks that have never been published. Missing and expired
// tokens are indistinguishable to the caller.
func (h *Handler) PreviewPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	access, err := h.preview.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			WriteNotFound(w, "Preview not found")
			return
		}
		h.logger.Error("failed to validate preview token", "error", err)
		WriteInternalError(w, "Failed to validate preview token")
		return
	}

	page, blocks, err := h.blocks.LoadPage(ctx, access.Slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Preview not found")
			return
		}
		h.logger.Error("failed to load preview page", "slug", access.Slug, "error", err)
		WriteInternalError(w, "Failed to load preview")
		return
	}

	rendered := make([]RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		out, err := content.RenderPublished(b.BlockType, []byte(b.ContentDraft))
		if err != nil {
			h.logger.Error("failed to render draft block", "block_id", b.ID, "error", err)
			continue
		}
		rendered = append(rendered, RenderedBlock{
			BlockKey:  b.BlockKey,
			BlockType: b.BlockType,
			Content:   out,
		})
	}

	type PreviewContent struct {
		PageContent
		Preview bool `json:"preview"`
	}

	payload := PreviewContent{
		PageContent: PageContent{
			Slug:            page.Slug,
			Title:           page.Title,
			MetaTitle:       page.MetaTitle,
			MetaDescription: page.MetaDescription,
			Blocks:          rendered,
		},
		Preview: true,
	}

	w.Header().Set("Cache-Control", "no-store")
	WriteSuccess(w, payload, nil)
}
