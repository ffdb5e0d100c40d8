// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic layer: block draft/publish
// orchestration, version history, preview tokens, SEO page syncing and
// event logging.
package service

import "errors"

var (
	// ErrNotFound indicates the referenced page, block or version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTokenInvalid indicates a preview token is missing or expired. The
	// two cases are deliberately collapsed so callers cannot probe for
	// token existence.
	ErrTokenInvalid = errors.New("invalid preview token")

	// ErrSlugTaken indicates a page slug is already in use.
	ErrSlugTaken = errors.New("slug already exists")

	// ErrBlockKeyTaken indicates a block key is already used on the page.
	ErrBlockKeyTaken = errors.New("block key already exists on page")
)
