// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

const blockColumns = `id, page_id, block_key, block_type, content_draft, content_published, display_order, created_at, updated_at`

func scanBlock(row interface{ Scan(...any) error }) (model.Block, error) {
	var b model.Block
	err := row.Scan(
		&b.ID, &b.PageID, &b.BlockKey, &b.BlockType, &b.ContentDraft,
		&b.ContentPublished, &b.DisplayOrder, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// CreateBlockParams holds the fields for creating a block.
type CreateBlockParams struct {
	PageID       int64
	BlockKey     string
	BlockType    string
	ContentDraft string
	DisplayOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateBlock inserts a block and returns the stored row.
func (q *Queries) CreateBlock(ctx context.Context, arg CreateBlockParams) (model.Block, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO blocks (page_id, block_key, block_type, content_draft, display_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+blockColumns,
		arg.PageID, arg.BlockKey, arg.BlockType, arg.ContentDraft,
		arg.DisplayOrder, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanBlock(row)
}

// GetBlockByID fetches a block by its ID.
func (q *Queries) GetBlockByID(ctx context.Context, id int64) (model.Block, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id)
	return scanBlock(row)
}

// GetBlockByPageAndKeyParams identifies a block by page and machine name.
type GetBlockByPageAndKeyParams struct {
	PageID   int64
	BlockKey string
}

// GetBlockByPageAndKey fetches a block by its stable key within a page.
func (q *Queries) GetBlockByPageAndKey(ctx context.Context, arg GetBlockByPageAndKeyParams) (model.Block, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE page_id = ? AND block_key = ?`,
		arg.PageID, arg.BlockKey,
	)
	return scanBlock(row)
}

// ListBlocksByPage returns all blocks of a page ordered by display_order.
func (q *Queries) ListBlocksByPage(ctx context.Context, pageID int64) ([]model.Block, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE page_id = ? ORDER BY display_order ASC, id ASC`,
		pageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make([]model.Block, 0)
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// ListPublishedBlocksByPage returns blocks that have published content,
// ordered by display_order.
func (q *Queries) ListPublishedBlocksByPage(ctx context.Context, pageID int64) ([]model.Block, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks
		 WHERE page_id = ? AND content_published IS NOT NULL
		 ORDER BY display_order ASC, id ASC`,
		pageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make([]model.Block, 0)
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// UpdateBlockDraftParams overwrites a block's draft content.
type UpdateBlockDraftParams struct {
	ID           int64
	ContentDraft string
	UpdatedAt    time.Time
}

// UpdateBlockDraft overwrites content_draft and returns the stored row.
// The published column is never touched here.
func (q *Queries) UpdateBlockDraft(ctx context.Context, arg UpdateBlockDraftParams) (model.Block, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE blocks SET content_draft = ?, updated_at = ? WHERE id = ?
		RETURNING `+blockColumns,
		arg.ContentDraft, arg.UpdatedAt, arg.ID,
	)
	return scanBlock(row)
}

// SetBlockPublishedParams copies content into the published column.
type SetBlockPublishedParams struct {
	ID               int64
	ContentPublished string
	UpdatedAt        time.Time
}

// SetBlockPublished writes the published content column. Callers must run
// this inside the publish transaction together with CreateBlockVersion.
func (q *Queries) SetBlockPublished(ctx context.Context, arg SetBlockPublishedParams) (model.Block, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE blocks SET content_published = ?, updated_at = ? WHERE id = ?
		RETURNING `+blockColumns,
		arg.ContentPublished, arg.UpdatedAt, arg.ID,
	)
	return scanBlock(row)
}

// UpdateBlockOrderParams sets one block's position.
type UpdateBlockOrderParams struct {
	ID           int64
	DisplayOrder int64
	UpdatedAt    time.Time
}

// UpdateBlockOrder sets a block's display_order.
func (q *Queries) UpdateBlockOrder(ctx context.Context, arg UpdateBlockOrderParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE blocks SET display_order = ?, updated_at = ? WHERE id = ?`,
		arg.DisplayOrder, arg.UpdatedAt, arg.ID,
	)
	return err
}

// DeleteBlock removes a block. Its versions cascade.
func (q *Queries) DeleteBlock(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = ?`, id)
	return err
}

// BlockKeyExistsParams checks key uniqueness within a page.
type BlockKeyExistsParams struct {
	PageID   int64
	BlockKey string
}

// BlockKeyExists returns 1 if the page already has a block with the key.
func (q *Queries) BlockKeyExists(ctx context.Context, arg BlockKeyExistsParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blocks WHERE page_id = ? AND block_key = ?`,
		arg.PageID, arg.BlockKey,
	).Scan(&n)
	return n, err
}

// MaxDisplayOrder returns the highest display_order on a page, or -1 when
// the page has no blocks.
func (q *Queries) MaxDisplayOrder(ctx context.Context, pageID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order), -1) FROM blocks WHERE page_id = ?`,
		pageID,
	).Scan(&n)
	return n, err
}
