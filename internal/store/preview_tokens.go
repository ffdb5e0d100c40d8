// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

const previewTokenColumns = `id, page_id, token, expires_at, created_at`

func scanPreviewToken(row interface{ Scan(...any) error }) (model.PreviewToken, error) {
	var t model.PreviewToken
	err := row.Scan(&t.ID, &t.PageID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// CreatePreviewTokenParams holds the fields for issuing a preview token.
type CreatePreviewTokenParams struct {
	PageID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreatePreviewToken inserts a preview token and returns the stored row.
func (q *Queries) CreatePreviewToken(ctx context.Context, arg CreatePreviewTokenParams) (model.PreviewToken, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO preview_tokens (page_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+previewTokenColumns,
		arg.PageID, arg.Token, arg.ExpiresAt, arg.CreatedAt,
	)
	return scanPreviewToken(row)
}

// GetPreviewToken fetches a token row by its opaque token string.
func (q *Queries) GetPreviewToken(ctx context.Context, token string) (model.PreviewToken, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+previewTokenColumns+` FROM preview_tokens WHERE token = ?`,
		token,
	)
	return scanPreviewToken(row)
}

// DeleteExpiredPreviewTokens removes tokens whose expiry has passed and
// returns the number removed. Tokens expiring in the future are never
// touched, so cleanup is safe to run concurrently with issuance.
func (q *Queries) DeleteExpiredPreviewTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM preview_tokens WHERE expires_at <= ?`, now,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeletePreviewTokensByPage removes all tokens issued for a page.
func (q *Queries) DeletePreviewTokensByPage(ctx context.Context, pageID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM preview_tokens WHERE page_id = ?`, pageID)
	return err
}
