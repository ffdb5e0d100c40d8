// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Block types
const (
	BlockTypeText     = "text"
	BlockTypeRichtext = "richtext"
	BlockTypeImage    = "image"
	BlockTypeCTA      = "cta"
	BlockTypeList     = "list"
	BlockTypeFAQ      = "faq"
	BlockTypeBanner   = "banner"
)

// BlockTypes returns all known block types.
func BlockTypes() []string {
	return []string{
		BlockTypeText,
		BlockTypeRichtext,
		BlockTypeImage,
		BlockTypeCTA,
		BlockTypeList,
		BlockTypeFAQ,
		BlockTypeBanner,
	}
}

// IsValidBlockType reports whether t is a known block type.
func IsValidBlockType(t string) bool {
	for _, bt := range BlockTypes() {
		if bt == t {
			return true
		}
	}
	return false
}

// Block is the smallest independently editable content unit on a page.
// ContentDraft and ContentPublished are JSON documents whose shape depends
// on BlockType; only an explicit publish copies the draft into the
// published column. BlockKey is unique per page and is the stable machine
// name used by content extraction.
type Block struct {
	ID               int64          `json:"id"`
	PageID           int64          `json:"page_id"`
	BlockKey         string         `json:"block_key"`
	BlockType        string         `json:"block_type"`
	ContentDraft     string         `json:"content_draft"`
	ContentPublished sql.NullString `json:"content_published,omitempty"`
	DisplayOrder     int64          `json:"display_order"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// HasPublishedContent reports whether the block has been published at least once.
func (b *Block) HasPublishedContent() bool {
	return b.ContentPublished.Valid
}

// BlockVersion is an immutable snapshot of a block's published content,
// created as a side effect of each publish. Version numbers increase
// monotonically per block, starting at 1.
type BlockVersion struct {
	ID            int64     `json:"id"`
	BlockID       int64     `json:"block_id"`
	VersionNumber int64     `json:"version_number"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}
