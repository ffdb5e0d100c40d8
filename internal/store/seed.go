// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/blockcms/internal/model"
)

// DefaultAPIKeyName identifies the key created on first run.
const DefaultAPIKeyName = "Default Editor Key"

// Seed creates initial data in the database: a first API key with all
// permissions, and optionally a demo page. The raw key is logged exactly
// once at creation; only its hash is stored.
func Seed(ctx context.Context, db *sql.DB, seedDemo bool) error {
	queries := New(db)

	keys, err := queries.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("listing api keys: %w", err)
	}

	if len(keys) == 0 {
		rawKey, prefix, err := model.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("generating api key: %w", err)
		}

		perms, err := json.Marshal(model.AllPermissions())
		if err != nil {
			return fmt.Errorf("encoding permissions: %w", err)
		}

		now := time.Now()
		key, err := queries.CreateAPIKey(ctx, CreateAPIKeyParams{
			Name:        DefaultAPIKeyName,
			KeyHash:     model.HashAPIKey(rawKey),
			KeyPrefix:   prefix,
			Permissions: string(perms),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("creating default api key: %w", err)
		}

		slog.Info("created default API key - store it now, it will not be shown again",
			"id", key.ID,
			"key", rawKey,
		)
	}

	if seedDemo {
		if err := seedDemoPage(ctx, queries); err != nil {
			return fmt.Errorf("seeding demo page: %w", err)
		}
	}

	return nil
}

// seedDemoPage creates a sample published page with a few typed blocks so a
// fresh install has content to look at.
func seedDemoPage(ctx context.Context, queries *Queries) error {
	const demoSlug = "welcome"

	_, err := queries.GetPageBySlug(ctx, demoSlug)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	now := time.Now()
	page, err := queries.CreatePage(ctx, CreatePageParams{
		Slug:            demoSlug,
		Title:           "Welcome",
		Status:          model.PageStatusPublished,
		MetaTitle:       "Welcome to blockcms",
		MetaDescription: "A block-based content engine.",
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return err
	}
	if _, err := queries.UpdatePage(ctx, UpdatePageParams{
		ID:          page.ID,
		Slug:        page.Slug,
		Title:       page.Title,
		Status:      page.Status,
		MetaTitle:   page.MetaTitle,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
	}); err != nil {
		return err
	}

	demoBlocks := []struct {
		key       string
		blockType string
		content   string
	}{
		{"hero", model.BlockTypeBanner, `{"heading":"Welcome to blockcms","subheading":"Structured content, block by block","cta_text":"Get started","cta_url":"/docs"}`},
		{"intro", model.BlockTypeText, `{"value":"Every page is a stack of typed blocks. Drafts stay private until you publish them."}`},
		{"body", model.BlockTypeRichtext, `{"markdown":"## How it works\n\nEdit a block draft, validate it, then publish. Each publish appends a version snapshot you can revert to later.","html":""}`},
	}

	for i, b := range demoBlocks {
		block, err := queries.CreateBlock(ctx, CreateBlockParams{
			PageID:       page.ID,
			BlockKey:     b.key,
			BlockType:    b.blockType,
			ContentDraft: b.content,
			DisplayOrder: int64(i),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		if _, err := queries.SetBlockPublished(ctx, SetBlockPublishedParams{
			ID:               block.ID,
			ContentPublished: b.content,
			UpdatedAt:        now,
		}); err != nil {
			return err
		}
		if _, err := queries.CreateBlockVersion(ctx, CreateBlockVersionParams{
			BlockID:   block.ID,
			Content:   b.content,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}

	slog.Info("seeded demo page", "slug", demoSlug, "blocks", len(demoBlocks))
	return nil
}
