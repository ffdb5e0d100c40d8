// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/blockcms/internal/model"
)

var (
	// sanitizePolicy strips anything outside the usual user-generated
	// content tag set from richtext HTML.
	sanitizePolicy = bluemonday.UGCPolicy()

	// markdown converts richtext markdown to HTML on the read path.
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
)

// SanitizeDraft prepares raw content for storage in a block draft.
// Richtext HTML is sanitized; all other types pass through after a JSON
// well-formedness check. The returned bytes are what gets persisted.
func SanitizeDraft(blockType string, raw []byte) ([]byte, error) {
	if blockType != model.BlockTypeRichtext {
		if !json.Valid(raw) {
			return nil, ErrMalformedContent
		}
		return raw, nil
	}

	var rc RichtextContent
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, ErrMalformedContent
	}
	if rc.HTML != "" {
		rc.HTML = sanitizePolicy.Sanitize(rc.HTML)
	}
	return json.Marshal(rc)
}

// RenderPublished prepares stored content for public delivery. Richtext
// markdown is rendered to sanitized HTML; the markdown source is not
// exposed. Other block types are returned unchanged.
func RenderPublished(blockType string, raw []byte) ([]byte, error) {
	if blockType != model.BlockTypeRichtext {
		return raw, nil
	}

	var rc RichtextContent
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, ErrMalformedContent
	}

	if rc.HTML == "" && strings.TrimSpace(rc.Markdown) != "" {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(rc.Markdown), &buf); err != nil {
			return nil, err
		}
		rc.HTML = sanitizePolicy.Sanitize(buf.String())
	}

	return json.Marshal(RichtextContent{HTML: rc.HTML})
}

// Error is a content-level error type.
type Error string

func (e Error) Error() string { return string(e) }

// ErrMalformedContent indicates the raw content is not valid JSON for the
// block's declared type.
const ErrMalformedContent Error = "malformed block content"
