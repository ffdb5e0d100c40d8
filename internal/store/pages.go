// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

const pageColumns = `id, slug, title, status, meta_title, meta_description, created_at, updated_at, published_at, scheduled_at`

func scanPage(row interface{ Scan(...any) error }) (model.Page, error) {
	var p model.Page
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Status, &p.MetaTitle, &p.MetaDescription,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt, &p.ScheduledAt,
	)
	return p, err
}

// CreatePageParams holds the fields for creating a page.
type CreatePageParams struct {
	Slug            string
	Title           string
	Status          string
	MetaTitle       string
	MetaDescription string
	ScheduledAt     sql.NullTime
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreatePage inserts a page and returns the stored row.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO pages (slug, title, status, meta_title, meta_description, scheduled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+pageColumns,
		arg.Slug, arg.Title, arg.Status, arg.MetaTitle, arg.MetaDescription,
		arg.ScheduledAt, arg.CreatedAt, arg.UpdatedAt,
	)
	return scanPage(row)
}

// GetPageByID fetches a page by its ID.
func (q *Queries) GetPageByID(ctx context.Context, id int64) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// GetPageBySlug fetches a page by slug regardless of status.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

// GetPublishedPageBySlug fetches a published page by slug.
func (q *Queries) GetPublishedPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE slug = ? AND status = ?`,
		slug, model.PageStatusPublished,
	)
	return scanPage(row)
}

// ListPagesParams holds pagination for page listing.
type ListPagesParams struct {
	Limit  int64
	Offset int64
}

// ListPages returns pages ordered by most recently updated.
func (q *Queries) ListPages(ctx context.Context, arg ListPagesParams) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]model.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// ListPagesByStatusParams holds filters for status-scoped page listing.
type ListPagesByStatusParams struct {
	Status string
	Limit  int64
	Offset int64
}

// ListPagesByStatus returns pages with the given status.
func (q *Queries) ListPagesByStatus(ctx context.Context, arg ListPagesByStatusParams) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE status = ? ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		arg.Status, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]model.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// CountPages returns the total number of pages.
func (q *Queries) CountPages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}

// CountPagesByStatus returns the number of pages with the given status.
func (q *Queries) CountPagesByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE status = ?`, status).Scan(&n)
	return n, err
}

// UpdatePageParams holds the full set of mutable page fields.
type UpdatePageParams struct {
	ID              int64
	Slug            string
	Title           string
	Status          string
	MetaTitle       string
	MetaDescription string
	PublishedAt     sql.NullTime
	ScheduledAt     sql.NullTime
	UpdatedAt       time.Time
}

// UpdatePage updates a page and returns the stored row.
func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE pages
		SET slug = ?, title = ?, status = ?, meta_title = ?, meta_description = ?,
		    published_at = ?, scheduled_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+pageColumns,
		arg.Slug, arg.Title, arg.Status, arg.MetaTitle, arg.MetaDescription,
		arg.PublishedAt, arg.ScheduledAt, arg.UpdatedAt, arg.ID,
	)
	return scanPage(row)
}

// DeletePage removes a page. Blocks, versions and preview tokens cascade.
func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}

// SlugExists returns 1 if a page with the slug exists, 0 otherwise.
func (q *Queries) SlugExists(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

// SlugExistsExcludingParams checks slug uniqueness excluding one page.
type SlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

// SlugExistsExcluding returns 1 if another page already uses the slug.
func (q *Queries) SlugExistsExcluding(ctx context.Context, arg SlugExistsExcludingParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE slug = ? AND id != ?`,
		arg.Slug, arg.ID,
	).Scan(&n)
	return n, err
}

// GetScheduledPagesForPublishing returns draft pages whose scheduled_at is due.
func (q *Queries) GetScheduledPagesForPublishing(ctx context.Context, now time.Time) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages
		 WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?`,
		model.PageStatusDraft, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]model.Page, 0)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// PublishScheduledPageParams marks a scheduled page as published.
type PublishScheduledPageParams struct {
	ID          int64
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

// PublishScheduledPage flips a scheduled page to published and clears the schedule.
func (q *Queries) PublishScheduledPage(ctx context.Context, arg PublishScheduledPageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE pages
		SET status = ?, published_at = ?, scheduled_at = NULL, updated_at = ?
		WHERE id = ?
		RETURNING `+pageColumns,
		model.PageStatusPublished, arg.PublishedAt, arg.UpdatedAt, arg.ID,
	)
	return scanPage(row)
}
