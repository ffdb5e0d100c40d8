// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

const seoPageColumns = `id, region_slug, region, state, title, meta_description, headline, intro, created_at, updated_at`

func scanSeoPage(row interface{ Scan(...any) error }) (model.SeoPage, error) {
	var p model.SeoPage
	err := row.Scan(
		&p.ID, &p.RegionSlug, &p.Region, &p.State, &p.Title,
		&p.MetaDescription, &p.Headline, &p.Intro, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// SeoPageParams holds the upsertable fields of a regional SEO page.
type SeoPageParams struct {
	RegionSlug      string
	Region          string
	State           string
	Title           string
	MetaDescription string
	Headline        string
	Intro           string
	Now             time.Time
}

// CreateSeoPage inserts a regional SEO page row.
func (q *Queries) CreateSeoPage(ctx context.Context, arg SeoPageParams) (model.SeoPage, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO seo_pages (region_slug, region, state, title, meta_description, headline, intro, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+seoPageColumns,
		arg.RegionSlug, arg.Region, arg.State, arg.Title,
		arg.MetaDescription, arg.Headline, arg.Intro, arg.Now, arg.Now,
	)
	return scanSeoPage(row)
}

// UpdateSeoPageBySlug updates a regional SEO page identified by its slug.
func (q *Queries) UpdateSeoPageBySlug(ctx context.Context, arg SeoPageParams) (model.SeoPage, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE seo_pages
		SET region = ?, state = ?, title = ?, meta_description = ?, headline = ?, intro = ?, updated_at = ?
		WHERE region_slug = ?
		RETURNING `+seoPageColumns,
		arg.Region, arg.State, arg.Title, arg.MetaDescription,
		arg.Headline, arg.Intro, arg.Now, arg.RegionSlug,
	)
	return scanSeoPage(row)
}

// GetSeoPageBySlug fetches a regional SEO page by slug.
func (q *Queries) GetSeoPageBySlug(ctx context.Context, regionSlug string) (model.SeoPage, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+seoPageColumns+` FROM seo_pages WHERE region_slug = ?`, regionSlug,
	)
	return scanSeoPage(row)
}

// ListSeoPages returns all regional SEO pages ordered by slug.
func (q *Queries) ListSeoPages(ctx context.Context) ([]model.SeoPage, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+seoPageColumns+` FROM seo_pages ORDER BY region_slug ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]model.SeoPage, 0)
	for rows.Next() {
		p, err := scanSeoPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// CountSeoPages returns the number of regional SEO pages.
func (q *Queries) CountSeoPages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seo_pages`).Scan(&n)
	return n, err
}
