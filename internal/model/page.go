// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application.
package model

import (
	"database/sql"
	"time"
)

// Page statuses
const (
	PageStatusDraft     = "draft"
	PageStatusPublished = "published"
)

// Page represents one editable site page. Page status is independent of
// block-level draft state: a published page can still carry blocks whose
// drafts have not been published yet.
type Page struct {
	ID              int64        `json:"id"`
	Slug            string       `json:"slug"`
	Title           string       `json:"title"`
	Status          string       `json:"status"`
	MetaTitle       string       `json:"meta_title,omitempty"`
	MetaDescription string       `json:"meta_description,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	PublishedAt     sql.NullTime `json:"published_at,omitempty"`
	ScheduledAt     sql.NullTime `json:"scheduled_at,omitempty"`
}

// IsPublished returns true if the page is published.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// IsDraft returns true if the page is a draft.
func (p *Page) IsDraft() bool {
	return p.Status == PageStatusDraft
}
