// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/handler"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/service"
)

// CreateBlockRequest is the request body for adding a block to a page.
type CreateBlockRequest struct {
	BlockKey  string          `json:"block_key"`
	BlockType string          `json:"block_type"`
	Content   json.RawMessage `json:"content"`
}

// UpdateDraftRequest is the request body for overwriting a block draft.
type UpdateDraftRequest struct {
	Content json.RawMessage `json:"content"`
}

// ReorderRequest is the request body for moving a block within its page.
// ActiveID is the dragged block, OverID the block whose position it takes.
type ReorderRequest struct {
	ActiveID int64 `json:"active_id"`
	OverID   int64 `json:"over_id"`
}

// RevertRequest is the request body for staging a past version as draft.
type RevertRequest struct {
	VersionID int64 `json:"version_id"`
}

// CreateBlock handles POST /api/v1/pages/{id}/blocks
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pageID, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID", nil)
		return
	}

	var req CreateBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := make(map[string]string)
	if req.BlockKey == "" {
		fieldErrors["block_key"] = "Block key is required"
	}
	if !model.IsValidBlockType(req.BlockType) {
		fieldErrors["block_type"] = "Unknown block type"
	}
	if len(req.Content) == 0 {
		fieldErrors["content"] = "Content is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	block, err := h.blocks.CreateBlock(ctx, pageID, req.BlockKey, req.BlockType, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			WriteNotFound(w, "Page not found")
		case errors.Is(err, service.ErrBlockKeyTaken):
			WriteError(w, http.StatusConflict, "conflict", "Block key already exists on this page", map[string]string{
				"block_key": req.BlockKey,
			})
		default:
			h.logger.Error("failed to create block", "page_id", pageID, "error", err)
			WriteBadRequest(w, "Invalid block content", nil)
		}
		return
	}

	WriteCreated(w, block)
}

// GetBlock handles GET /api/v1/blocks/{id}
func (h *Handler) GetBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	block, ok := requireEntityByID(w, r, "block", func(id int64) (model.Block, error) {
		return h.queries.GetBlockByID(ctx, id)
	})
	if !ok {
		return
	}

	WriteSuccess(w, block, nil)
}

// UpdateBlockDraft handles PUT /api/v1/blocks/{id}/draft
func (h *Handler) UpdateBlockDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	blockID, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid block ID", nil)
		return
	}

	var req UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if len(req.Content) == 0 {
		WriteValidationError(w, map[string]string{"content": "Content is required"})
		return
	}

	block, err := h.blocks.UpdateDraft(ctx, blockID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Block not found")
			return
		}
		h.logger.Error("failed to update block draft", "block_id", blockID, "error", err)
		WriteBadRequest(w, "Invalid block content", nil)
		return
	}

	WriteSuccess(w, block, nil)
}

// ValidateBlock handles POST /api/v1/blocks/{id}/validate - an advisory
// check of draft content against the block type schema. Validation never
// blocks a save or publish.
func (h *Handler) ValidateBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	block, ok := requireEntityByID(w, r, "block", func(id int64) (model.Block, error) {
		return h.queries.GetBlockByID(ctx, id)
	})
	if !ok {
		return
	}

	var req UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	raw := []byte(req.Content)
	if len(raw) == 0 {
		raw = []byte(block.ContentDraft)
	}

	fieldErrors := h.blocks.ValidateBlock(block, raw)

	type ValidationResult struct {
		Valid  bool                 `json:"valid"`
		Errors []content.FieldError `json:"errors"`
	}

	WriteSuccess(w, ValidationResult{
		Valid:  len(fieldErrors) == 0,
		Errors: fieldErrors,
	}, nil)
}

// PublishBlock handles POST /api/v1/blocks/{id}/publish
func (h *Handler) PublishBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	blockID, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid block ID", nil)
		return
	}

	version, err := h.blocks.Publish(ctx, blockID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Block not found")
			return
		}
		h.logger.Error("failed to publish block", "block_id", blockID, "error", err)
		WriteInternalError(w, "Failed to publish block")
		return
	}

	WriteSuccess(w, version, nil)
}

// ListBlockVersions handles GET /api/v1/blocks/{id}/versions
func (h *Handler) ListBlockVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	block, ok := requireEntityByID(w, r, "block", func(id int64) (model.Block, error) {
		return h.queries.GetBlockByID(ctx, id)
	})
	if !ok {
		return
	}

	versions, err := h.blocks.ListVersions(ctx, block.ID)
	if err != nil {
		h.logger.Error("failed to list block versions", "block_id", block.ID, "error", err)
		WriteInternalError(w, "Failed to list versions")
		return
	}

	WriteSuccess(w, versions, nil)
}

// RevertBlock handles POST /api/v1/blocks/{id}/revert - stages the chosen
// version's content as the block's new draft. Nothing goes live until the
// block is published again.
func (h *Handler) RevertBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	blockID, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid block ID", nil)
		return
	}

	var req RevertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.VersionID <= 0 {
		WriteValidationError(w, map[string]string{"version_id": "Version ID is required"})
		return
	}

	block, err := h.blocks.Revert(ctx, blockID, req.VersionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Block or version not found")
			return
		}
		h.logger.Error("failed to revert block", "block_id", blockID, "version_id", req.VersionID, "error", err)
		WriteInternalError(w, "Failed to revert block")
		return
	}

	WriteSuccess(w, block, nil)
}

// ReorderBlocks handles POST /api/v1/pages/{id}/blocks/reorder
func (h *Handler) ReorderBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pageID, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID", nil)
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.ActiveID <= 0 || req.OverID <= 0 {
		WriteValidationError(w, map[string]string{
			"active_id": "Both active_id and over_id are required",
		})
		return
	}

	if err := h.blocks.Reorder(ctx, pageID, req.ActiveID, req.OverID); err != nil {
		h.logger.Error("failed to reorder blocks", "page_id", pageID, "error", err)
		WriteInternalError(w, "Failed to reorder blocks")
		return
	}

	blocks, err := h.queries.ListBlocksByPage(ctx, pageID)
	if err != nil {
		WriteInternalError(w, "Failed to list blocks")
		return
	}

	WriteSuccess(w, blocks, nil)
}

// DeleteBlock handles DELETE /api/v1/blocks/{id}
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	blockID, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid block ID", nil)
		return
	}

	if err := h.blocks.DeleteBlock(ctx, blockID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, "Block not found")
			return
		}
		h.logger.Error("failed to delete block", "block_id", blockID, "error", err)
		WriteInternalError(w, "Failed to delete block")
		return
	}

	WriteSuccess(w, map[string]any{"deleted": true, "id": blockID}, nil)
}
