// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
)

// previewTokenParams builds token params expiring expiresIn from now.
func previewTokenParams(pageID int64, expiresIn time.Duration) store.CreatePreviewTokenParams {
	now := time.Now()
	return store.CreatePreviewTokenParams{
		PageID:    pageID,
		Token:     "test-preview-token-0123456789012345678901",
		ExpiresAt: now.Add(expiresIn),
		CreatedAt: now,
	}
}

func TestCreatePreviewToken(t *testing.T) {
	env := newTestEnv(t)
	page := env.createPage(t, `{"title":"Previewable"}`)

	rec := env.do(http.MethodPost, "/api/v1/preview-tokens",
		`{"page_id":`+itoa(page.ID)+`,"expires_in_minutes":30}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var token PreviewTokenResponse
	decodeData(t, rec, &token)
	require.NotEmpty(t, token.Token)
	require.Equal(t, page.ID, token.PageID)
	require.Equal(t, "/api/v1/preview/"+token.Token, token.PreviewURL)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), token.ExpiresAt, time.Minute)
}

func TestCreatePreviewToken_DefaultExpiry(t *testing.T) {
	env := newTestEnv(t)
	page := env.createPage(t, `{"title":"Defaulted"}`)

	// Omitting expires_in_minutes falls back to the default lifetime
	rec := env.do(http.MethodPost, "/api/v1/preview-tokens", `{"page_id":`+itoa(page.ID)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var token PreviewTokenResponse
	decodeData(t, rec, &token)
	require.WithinDuration(t, time.Now().Add(service.DefaultPreviewExpiry), token.ExpiresAt, time.Minute)
}

func TestCreatePreviewToken_ZeroExpiry(t *testing.T) {
	env := newTestEnv(t)
	page := env.createPage(t, `{"title":"Born Expired"}`)

	// An explicit zero is not the same as omitting the field: the token
	// is issued already expired and the preview endpoint refuses it.
	rec := env.do(http.MethodPost, "/api/v1/preview-tokens",
		`{"page_id":`+itoa(page.ID)+`,"expires_in_minutes":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var token PreviewTokenResponse
	decodeData(t, rec, &token)
	require.WithinDuration(t, time.Now(), token.ExpiresAt, time.Minute)

	rec = env.do(http.MethodGet, token.PreviewURL, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Preview not found", decodeError(t, rec).Message)
}

func TestCreatePreviewToken_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/preview-tokens", `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/preview-tokens", `{"page_id":9999}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewPage_ServesDraftContent(t *testing.T) {
	env := newTestEnv(t)
	page := env.createPage(t, `{"title":"Secret Draft"}`)
	block := env.createBlock(t, page.ID, `{"block_key":"b","block_type":"text","content":{"value":"draft only"}}`)
	env.do(http.MethodPost, "/api/v1/blocks/"+itoa(block.ID)+"/publish", "")
	env.do(http.MethodPut, "/api/v1/blocks/"+itoa(block.ID)+"/draft", `{"content":{"value":"newer draft"}}`)

	rec := env.do(http.MethodPost, "/api/v1/preview-tokens", `{"page_id":`+itoa(page.ID)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var token PreviewTokenResponse
	decodeData(t, rec, &token)

	rec = env.do(http.MethodGet, token.PreviewURL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var payload struct {
		PageContent
		Preview bool `json:"preview"`
	}
	decodeData(t, rec, &payload)
	require.True(t, payload.Preview)
	require.Equal(t, "secret-draft", payload.Slug)
	require.Len(t, payload.Blocks, 1)
	require.JSONEq(t, `{"value":"newer draft"}`, string(payload.Blocks[0].Content),
		"preview shows the draft, not the published content")
}

func TestPreviewPage_RendersDraftMarkdown(t *testing.T) {
	env := newTestEnv(t)
	page := env.createPage(t, `{"title":"MD"}`)
	env.createBlock(t, page.ID, `{"block_key":"b","block_type":"richtext","content":{"markdown":"# Title"}}`)

	rec := env.do(http.MethodPost, "/api/v1/preview-tokens", `{"page_id":`+itoa(page.ID)+`}`)
	var token PreviewTokenResponse
	decodeData(t, rec, &token)

	rec = env.do(http.MethodGet, token.PreviewURL, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload PageContent
	decodeData(t, rec, &payload)
	require.Contains(t, string(payload.Blocks[0].Content), "<h1")
}

func TestPreviewPage_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/preview/nonexistent-token", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Preview not found", decodeError(t, rec).Message)
}

func TestPreviewPage_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	page := env.createPage(t, `{"title":"Expired"}`)

	// Issue a token that is already dead
	token, err := env.queries.CreatePreviewToken(context.Background(), previewTokenParams(page.ID, -time.Hour))
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/v1/preview/"+token.Token, "")
	require.Equal(t, http.StatusNotFound, rec.Code, "expired and missing tokens are indistinguishable")
}
