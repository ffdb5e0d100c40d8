// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

const versionColumns = `id, block_id, version_number, content, created_at`

func scanVersion(row interface{ Scan(...any) error }) (model.BlockVersion, error) {
	var v model.BlockVersion
	err := row.Scan(&v.ID, &v.BlockID, &v.VersionNumber, &v.Content, &v.CreatedAt)
	return v, err
}

// CreateBlockVersionParams holds the fields for appending a version snapshot.
type CreateBlockVersionParams struct {
	BlockID   int64
	Content   string
	CreatedAt time.Time
}

// CreateBlockVersion appends a snapshot with the next version number for
// the block. The number is assigned inside the INSERT so that concurrent
// publishes, serialized by SQLite's single writer, can never produce a
// duplicate.
func (q *Queries) CreateBlockVersion(ctx context.Context, arg CreateBlockVersionParams) (model.BlockVersion, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO block_versions (block_id, version_number, content, created_at)
		VALUES (
			?,
			(SELECT COALESCE(MAX(version_number), 0) + 1 FROM block_versions WHERE block_id = ?),
			?,
			?
		)
		RETURNING `+versionColumns,
		arg.BlockID, arg.BlockID, arg.Content, arg.CreatedAt,
	)
	return scanVersion(row)
}

// ListBlockVersions returns all snapshots for a block, newest first.
func (q *Queries) ListBlockVersions(ctx context.Context, blockID int64) ([]model.BlockVersion, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM block_versions WHERE block_id = ? ORDER BY version_number DESC`,
		blockID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]model.BlockVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetBlockVersionParams identifies a snapshot by ID and owning block.
type GetBlockVersionParams struct {
	ID      int64
	BlockID int64
}

// GetBlockVersion fetches a snapshot, checking it belongs to the block.
func (q *Queries) GetBlockVersion(ctx context.Context, arg GetBlockVersionParams) (model.BlockVersion, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM block_versions WHERE id = ? AND block_id = ?`,
		arg.ID, arg.BlockID,
	)
	return scanVersion(row)
}

// CountBlockVersions returns the number of snapshots for a block.
func (q *Queries) CountBlockVersions(ctx context.Context, blockID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM block_versions WHERE block_id = ?`, blockID,
	).Scan(&n)
	return n, err
}
