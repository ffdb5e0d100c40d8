// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// SeoPage is regional SEO landing-page metadata, maintained by the seosync
// batch tool. Rows are upserted by RegionSlug; the interactive CMS never
// writes to this table, so bulk seeding and editing cannot conflict.
type SeoPage struct {
	ID              int64     `json:"id"`
	RegionSlug      string    `json:"region_slug"`
	Region          string    `json:"region"`
	State           string    `json:"state"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Headline        string    `json:"headline"`
	Intro           string    `json:"intro"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
