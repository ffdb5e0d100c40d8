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

	"github.com/olegiv/blockcms/internal/content"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/store"
)

// ContentInvalidator drops cached published content for a page. The cache
// package implements it; a nil invalidator disables invalidation.
type ContentInvalidator interface {
	InvalidatePage(ctx context.Context, slug string)
}

// BlockService mediates reading a page's blocks and mutating drafts,
// validating content, publishing, reverting and reordering.
//
// Draft and published content on a block are only ever written through
// this service: UpdateDraft and Revert touch the draft column, Publish is
// the single operation that copies a draft into the published column and
// appends a version snapshot.
type BlockService struct {
	db          *sql.DB
	queries     *store.Queries
	events      *EventService
	invalidator ContentInvalidator
	logger      *slog.Logger
}

// NewBlockService creates a new BlockService. invalidator may be nil.
func NewBlockService(db *sql.DB, invalidator ContentInvalidator, logger *slog.Logger) *BlockService {
	return &BlockService{
		db:          db,
		queries:     store.New(db),
		events:      NewEventService(db),
		invalidator: invalidator,
		logger:      logger,
	}
}

// LoadPage returns a page and its blocks ordered by display_order.
// Returns ErrNotFound if no page matches the slug.
func (s *BlockService) LoadPage(ctx context.Context, slug string) (model.Page, []model.Block, error) {
	page, err := s.queries.GetPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Page{}, nil, ErrNotFound
		}
		return model.Page{}, nil, fmt.Errorf("loading page %q: %w", slug, err)
	}

	blocks, err := s.queries.ListBlocksByPage(ctx, page.ID)
	if err != nil {
		return model.Page{}, nil, fmt.Errorf("listing blocks for page %q: %w", slug, err)
	}

	return page, blocks, nil
}

// CreateBlock adds a block to a page, appended at the end of the display
// order. The initial content becomes the draft; nothing is published.
func (s *BlockService) CreateBlock(ctx context.Context, pageID int64, blockKey, blockType string, raw []byte) (model.Block, error) {
	if _, err := s.queries.GetPageByID(ctx, pageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Block{}, ErrNotFound
		}
		return model.Block{}, err
	}

	exists, err := s.queries.BlockKeyExists(ctx, store.BlockKeyExistsParams{PageID: pageID, BlockKey: blockKey})
	if err != nil {
		return model.Block{}, err
	}
	if exists != 0 {
		return model.Block{}, ErrBlockKeyTaken
	}

	draft, err := content.SanitizeDraft(blockType, raw)
	if err != nil {
		return model.Block{}, err
	}

	maxOrder, err := s.queries.MaxDisplayOrder(ctx, pageID)
	if err != nil {
		return model.Block{}, err
	}

	now := time.Now()
	return s.queries.CreateBlock(ctx, store.CreateBlockParams{
		PageID:       pageID,
		BlockKey:     blockKey,
		BlockType:    blockType,
		ContentDraft: string(draft),
		DisplayOrder: maxOrder + 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// UpdateDraft overwrites a block's draft content. The published column is
// untouched. Content is sanitized but not validated here: validation is an
// explicit, advisory step (ValidateBlock), and last write wins between
// concurrent editors.
func (s *BlockService) UpdateDraft(ctx context.Context, blockID int64, raw []byte) (model.Block, error) {
	block, err := s.queries.GetBlockByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Block{}, ErrNotFound
		}
		return model.Block{}, err
	}

	draft, err := content.SanitizeDraft(block.BlockType, raw)
	if err != nil {
		return model.Block{}, err
	}

	return s.queries.UpdateBlockDraft(ctx, store.UpdateBlockDraftParams{
		ID:           blockID,
		ContentDraft: string(draft),
		UpdatedAt:    time.Now(),
	})
}

// ValidateBlock checks raw content against the block's type schema and
// returns field-level errors. An empty slice means valid. The service does
// not enforce validity on publish; that decision belongs to the caller.
func (s *BlockService) ValidateBlock(block model.Block, raw []byte) []content.FieldError {
	return content.Validate(block.BlockType, raw)
}

// Publish copies a block's draft into its published column and appends a
// version snapshot, returning the snapshot. The copy and the snapshot
// insert run in one transaction so concurrent publishes of the same block
// can never interleave into duplicate version numbers.
func (s *BlockService) Publish(ctx context.Context, blockID int64) (model.BlockVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BlockVersion{}, fmt.Errorf("beginning publish tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)

	block, err := qtx.GetBlockByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BlockVersion{}, ErrNotFound
		}
		return model.BlockVersion{}, err
	}

	now := time.Now()
	if _, err := qtx.SetBlockPublished(ctx, store.SetBlockPublishedParams{
		ID:               blockID,
		ContentPublished: block.ContentDraft,
		UpdatedAt:        now,
	}); err != nil {
		return model.BlockVersion{}, fmt.Errorf("publishing block %d: %w", blockID, err)
	}

	version, err := qtx.CreateBlockVersion(ctx, store.CreateBlockVersionParams{
		BlockID:   blockID,
		Content:   block.ContentDraft,
		CreatedAt: now,
	})
	if err != nil {
		return model.BlockVersion{}, fmt.Errorf("creating version snapshot for block %d: %w", blockID, err)
	}

	if err := tx.Commit(); err != nil {
		return model.BlockVersion{}, fmt.Errorf("committing publish tx: %w", err)
	}

	s.invalidatePageByID(ctx, block.PageID)
	_ = s.events.LogInfo(ctx, model.EventCategoryBlock, "Block published: "+block.BlockKey, nil, map[string]any{
		"block_id":       block.ID,
		"page_id":        block.PageID,
		"version_number": version.VersionNumber,
	})

	return version, nil
}

// ListVersions returns a block's snapshots, newest first. A block that was
// never published yields an empty slice.
func (s *BlockService) ListVersions(ctx context.Context, blockID int64) ([]model.BlockVersion, error) {
	return s.queries.ListBlockVersions(ctx, blockID)
}

// Revert stages a past snapshot as the block's new draft. The published
// column stays as it is until a subsequent Publish, so "content becomes
// live" keeps a single code path. Returns ErrNotFound if the version does
// not belong to the block.
func (s *BlockService) Revert(ctx context.Context, blockID, versionID int64) (model.Block, error) {
	version, err := s.queries.GetBlockVersion(ctx, store.GetBlockVersionParams{ID: versionID, BlockID: blockID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Block{}, ErrNotFound
		}
		return model.Block{}, err
	}

	block, err := s.queries.UpdateBlockDraft(ctx, store.UpdateBlockDraftParams{
		ID:           blockID,
		ContentDraft: version.Content,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Block{}, ErrNotFound
		}
		return model.Block{}, err
	}

	_ = s.events.LogInfo(ctx, model.EventCategoryBlock, "Block draft reverted: "+block.BlockKey, nil, map[string]any{
		"block_id":       block.ID,
		"version_number": version.VersionNumber,
	})

	return block, nil
}

// Reorder moves the active block to the position previously occupied by
// the over block, shifting the blocks in between by one. Unknown ids are a
// no-op: reorders come from drag gestures against a possibly stale list.
func (s *BlockService) Reorder(ctx context.Context, pageID, activeBlockID, overBlockID int64) error {
	blocks, err := s.queries.ListBlocksByPage(ctx, pageID)
	if err != nil {
		return err
	}

	activeIdx, overIdx := -1, -1
	for i, b := range blocks {
		if b.ID == activeBlockID {
			activeIdx = i
		}
		if b.ID == overBlockID {
			overIdx = i
		}
	}
	if activeIdx == -1 || overIdx == -1 || activeIdx == overIdx {
		return nil
	}

	moved := blocks[activeIdx]
	blocks = append(blocks[:activeIdx], blocks[activeIdx+1:]...)
	rest := make([]model.Block, 0, len(blocks)+1)
	rest = append(rest, blocks[:overIdx]...)
	rest = append(rest, moved)
	rest = append(rest, blocks[overIdx:]...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reorder tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now()
	for i, b := range rest {
		if b.DisplayOrder == int64(i) {
			continue
		}
		if err := qtx.UpdateBlockOrder(ctx, store.UpdateBlockOrderParams{
			ID:           b.ID,
			DisplayOrder: int64(i),
			UpdatedAt:    now,
		}); err != nil {
			return fmt.Errorf("reordering block %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder tx: %w", err)
	}

	s.invalidatePageByID(ctx, pageID)
	return nil
}

// DeleteBlock removes a block and its version history.
func (s *BlockService) DeleteBlock(ctx context.Context, blockID int64) error {
	block, err := s.queries.GetBlockByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if err := s.queries.DeleteBlock(ctx, blockID); err != nil {
		return err
	}

	s.invalidatePageByID(ctx, block.PageID)
	return nil
}

// invalidatePageByID drops cached published content for the page, if an
// invalidator is configured.
func (s *BlockService) invalidatePageByID(ctx context.Context, pageID int64) {
	if s.invalidator == nil {
		return
	}
	page, err := s.queries.GetPageByID(ctx, pageID)
	if err != nil {
		s.logger.Warn("cache invalidation skipped, page lookup failed", "page_id", pageID, "error", err)
		return
	}
	s.invalidator.InvalidatePage(ctx, page.Slug)
}
