// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
)

// testDB creates a temporary migrated database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func createTestPage(t *testing.T, q *Queries, slug string) model.Page {
	t.Helper()

	now := time.Now()
	page, err := q.CreatePage(context.Background(), CreatePageParams{
		Slug:      slug,
		Title:     "Test Page",
		Status:    model.PageStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return page
}

func createTestBlock(t *testing.T, q *Queries, pageID int64, key string, order int64) model.Block {
	t.Helper()

	now := time.Now()
	block, err := q.CreateBlock(context.Background(), CreateBlockParams{
		PageID:       pageID,
		BlockKey:     key,
		BlockType:    model.BlockTypeText,
		ContentDraft: `{"value":"draft"}`,
		DisplayOrder: order,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return block
}

func TestPages_CreateAndGet(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "hello")
	require.NotZero(t, page.ID)
	require.Equal(t, model.PageStatusDraft, page.Status)

	byID, err := q.GetPageByID(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, page.Slug, byID.Slug)

	bySlug, err := q.GetPageBySlug(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, page.ID, bySlug.ID)
}

func TestPages_SlugUnique(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	createTestPage(t, q, "hello")

	n, err := q.SlugExists(ctx, "hello")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = q.CreatePage(ctx, CreatePageParams{
		Slug: "hello", Title: "Dup", Status: model.PageStatusDraft,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.Error(t, err, "duplicate slug must violate the unique constraint")
}

func TestPages_SlugExistsExcluding(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	a := createTestPage(t, q, "page-a")
	createTestPage(t, q, "page-b")

	n, err := q.SlugExistsExcluding(ctx, SlugExistsExcludingParams{Slug: "page-a", ID: a.ID})
	require.NoError(t, err)
	require.Zero(t, n, "a page may keep its own slug")

	n, err = q.SlugExistsExcluding(ctx, SlugExistsExcludingParams{Slug: "page-b", ID: a.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestPages_GetPublishedBySlug(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "draft-only")

	_, err := q.GetPublishedPageBySlug(ctx, "draft-only")
	require.ErrorIs(t, err, sql.ErrNoRows, "a draft page is invisible on the published read path")

	now := time.Now()
	_, err = q.UpdatePage(ctx, UpdatePageParams{
		ID: page.ID, Slug: page.Slug, Title: page.Title,
		Status:      model.PageStatusPublished,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	got, err := q.GetPublishedPageBySlug(ctx, "draft-only")
	require.NoError(t, err)
	require.Equal(t, page.ID, got.ID)
}

func TestPages_ListByStatusAndCount(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	createTestPage(t, q, "d1")
	createTestPage(t, q, "d2")
	p := createTestPage(t, q, "p1")
	now := time.Now()
	_, err := q.UpdatePage(ctx, UpdatePageParams{
		ID: p.ID, Slug: p.Slug, Title: p.Title,
		Status:      model.PageStatusPublished,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	drafts, err := q.ListPagesByStatus(ctx, ListPagesByStatusParams{
		Status: model.PageStatusDraft, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	total, err := q.CountPages(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	published, err := q.CountPagesByStatus(ctx, model.PageStatusPublished)
	require.NoError(t, err)
	require.EqualValues(t, 1, published)
}

func TestBlocks_OrderingStable(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "ordered")
	createTestBlock(t, q, page.ID, "c", 2)
	createTestBlock(t, q, page.ID, "a", 0)
	createTestBlock(t, q, page.ID, "b", 1)

	blocks, err := q.ListBlocksByPage(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	require.Equal(t, "a", blocks[0].BlockKey)
	require.Equal(t, "b", blocks[1].BlockKey)
	require.Equal(t, "c", blocks[2].BlockKey)
}

func TestBlocks_KeyUniquePerPage(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "page-one")
	other := createTestPage(t, q, "page-two")
	createTestBlock(t, q, page.ID, "hero", 0)

	n, err := q.BlockKeyExists(ctx, BlockKeyExistsParams{PageID: page.ID, BlockKey: "hero"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Same key on another page is fine
	createTestBlock(t, q, other.ID, "hero", 0)
}

func TestBlocks_MaxDisplayOrder(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "maxorder")

	n, err := q.MaxDisplayOrder(ctx, page.ID)
	require.NoError(t, err)
	require.EqualValues(t, -1, n, "empty page reports -1 so the first block lands at 0")

	createTestBlock(t, q, page.ID, "a", 0)
	createTestBlock(t, q, page.ID, "b", 1)

	n, err = q.MaxDisplayOrder(ctx, page.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestBlocks_PublishedFilter(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "filter")
	a := createTestBlock(t, q, page.ID, "a", 0)
	createTestBlock(t, q, page.ID, "b", 1)

	_, err := q.SetBlockPublished(ctx, SetBlockPublishedParams{
		ID: a.ID, ContentPublished: `{"value":"live"}`, UpdatedAt: time.Now(),
	})
	require.NoError(t, err)

	published, err := q.ListPublishedBlocksByPage(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.Equal(t, "a", published[0].BlockKey)
}

func TestVersions_MonotonicNumbering(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "versions")
	block := createTestBlock(t, q, page.ID, "body", 0)
	other := createTestBlock(t, q, page.ID, "aside", 1)

	for i := 1; i <= 3; i++ {
		v, err := q.CreateBlockVersion(ctx, CreateBlockVersionParams{
			BlockID: block.ID, Content: `{"value":"v"}`, CreatedAt: time.Now(),
		})
		require.NoError(t, err)
		require.EqualValues(t, i, v.VersionNumber)
	}

	// Numbering is per block, not global
	v, err := q.CreateBlockVersion(ctx, CreateBlockVersionParams{
		BlockID: other.ID, Content: `{"value":"o"}`, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, v.VersionNumber)

	versions, err := q.ListBlockVersions(ctx, block.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.EqualValues(t, 3, versions[0].VersionNumber, "newest first")
}

func TestVersions_GetChecksOwnership(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "ownership")
	a := createTestBlock(t, q, page.ID, "a", 0)
	b := createTestBlock(t, q, page.ID, "b", 1)

	v, err := q.CreateBlockVersion(ctx, CreateBlockVersionParams{
		BlockID: a.ID, Content: `{"value":"v"}`, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = q.GetBlockVersion(ctx, GetBlockVersionParams{ID: v.ID, BlockID: b.ID})
	require.ErrorIs(t, err, sql.ErrNoRows, "a version must not resolve against another block")
}

func TestCascade_DeletePageRemovesBlocksAndVersions(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "cascade")
	block := createTestBlock(t, q, page.ID, "body", 0)
	_, err := q.CreateBlockVersion(ctx, CreateBlockVersionParams{
		BlockID: block.ID, Content: `{"value":"v"}`, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	_, err = q.CreatePreviewToken(ctx, CreatePreviewTokenParams{
		PageID: page.ID, Token: "cascade-token-012345678901234567890123456",
		ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, q.DeletePage(ctx, page.ID))

	_, err = q.GetBlockByID(ctx, block.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	n, err := q.CountBlockVersions(ctx, block.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = q.GetPreviewToken(ctx, "cascade-token-012345678901234567890123456")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPreviewTokens_Lifecycle(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	page := createTestPage(t, q, "tokens")
	now := time.Now()

	tok, err := q.CreatePreviewToken(ctx, CreatePreviewTokenParams{
		PageID: page.ID, Token: "live-token-0123456789012345678901234567890",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	require.NoError(t, err)
	require.False(t, tok.IsExpired(now))

	_, err = q.CreatePreviewToken(ctx, CreatePreviewTokenParams{
		PageID: page.ID, Token: "old-token-01234567890123456789012345678901",
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	removed, err := q.DeleteExpiredPreviewTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = q.GetPreviewToken(ctx, tok.Token)
	require.NoError(t, err)
}

func TestScheduledPages_DueSelection(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	now := time.Now()
	due, err := q.CreatePage(ctx, CreatePageParams{
		Slug: "due", Title: "Due", Status: model.PageStatusDraft,
		ScheduledAt: sql.NullTime{Time: now.Add(-time.Minute), Valid: true},
		CreatedAt:   now, UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = q.CreatePage(ctx, CreatePageParams{
		Slug: "later", Title: "Later", Status: model.PageStatusDraft,
		ScheduledAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
		CreatedAt:   now, UpdatedAt: now,
	})
	require.NoError(t, err)

	pages, err := q.GetScheduledPagesForPublishing(ctx, now)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "due", pages[0].Slug)

	published, err := q.PublishScheduledPage(ctx, PublishScheduledPageParams{
		ID: due.ID, PublishedAt: sql.NullTime{Time: now, Valid: true}, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.Equal(t, model.PageStatusPublished, published.Status)
	require.False(t, published.ScheduledAt.Valid)
}

func TestSeed_CreatesDefaultAPIKeyOnce(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db, false))

	keys, err := q.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, DefaultAPIKeyName, keys[0].Name)
	require.True(t, keys[0].IsActive)
	require.Len(t, keys[0].GetPermissions(), len(model.AllPermissions()))

	// Second run is a no-op
	require.NoError(t, Seed(ctx, db, false))
	keys, err = q.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
}

func TestSeed_DemoPage(t *testing.T) {
	db := testDB(t)
	q := New(db)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db, true))

	page, err := q.GetPublishedPageBySlug(ctx, "welcome")
	require.NoError(t, err)

	blocks, err := q.ListPublishedBlocksByPage(ctx, page.ID)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)

	// Idempotent
	require.NoError(t, Seed(ctx, db, true))
	again, err := q.ListBlocksByPage(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, again, len(blocks))
}

func TestSeoPages_Upsert(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	now := time.Now()
	params := SeoPageParams{
		RegionSlug: "plumbers-austin-tx", Region: "Austin", State: "TX",
		Title: "Plumbers in Austin", MetaDescription: "desc",
		Headline: "h", Intro: "i", Now: now,
	}

	created, err := q.CreateSeoPage(ctx, params)
	require.NoError(t, err)
	require.Equal(t, "Austin", created.Region)

	params.Title = "Updated Title"
	params.Now = now.Add(time.Minute)
	updated, err := q.UpdateSeoPageBySlug(ctx, params)
	require.NoError(t, err)
	require.Equal(t, "Updated Title", updated.Title)
	require.Equal(t, created.ID, updated.ID)

	n, err := q.CountSeoPages(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestEvents_CreateAndPrune(t *testing.T) {
	q := New(testDB(t))
	ctx := context.Background()

	now := time.Now()
	_, err := q.CreateEvent(ctx, CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategorySystem,
		Message: "old", Metadata: "{}", CreatedAt: now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = q.CreateEvent(ctx, CreateEventParams{
		Level: model.EventLevelError, Category: model.EventCategoryBlock,
		Message: "recent", Metadata: "{}", CreatedAt: now,
	})
	require.NoError(t, err)

	removed, err := q.DeleteEventsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	n, err := q.CountEvents(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
