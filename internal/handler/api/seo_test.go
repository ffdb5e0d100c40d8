// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
)

func TestUpsertSeoPage_CreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)

	body := `{"region":"Austin","state":"TX","title":"Plumbers in Austin","meta_description":"d","headline":"h","intro":"i"}`
	rec := env.do(http.MethodPut, "/api/v1/seo-pages/austin-tx", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.SeoPage
	decodeData(t, rec, &created)
	require.Equal(t, "austin-tx", created.RegionSlug)
	require.Equal(t, "Austin", created.Region)

	// Same slug again is an update, not a duplicate
	body = `{"region":"Austin","state":"TX","title":"Best Plumbers in Austin","meta_description":"d","headline":"h","intro":"i"}`
	rec = env.do(http.MethodPut, "/api/v1/seo-pages/austin-tx", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.SeoPage
	decodeData(t, rec, &updated)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Best Plumbers in Austin", updated.Title)
}

func TestUpsertSeoPage_RegionRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/api/v1/seo-pages/somewhere", `{"title":"t"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, decodeError(t, rec).Details, "region")
}

func TestGetSeoPage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPut, "/api/v1/seo-pages/dallas-tx",
		`{"region":"Dallas","state":"TX","title":"t","meta_description":"d","headline":"h","intro":"i"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/seo-pages/dallas-tx", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page model.SeoPage
	decodeData(t, rec, &page)
	require.Equal(t, "Dallas", page.Region)

	rec = env.do(http.MethodGet, "/api/v1/seo-pages/nowhere", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSeoPages(t *testing.T) {
	env := newTestEnv(t)
	for _, slug := range []string{"a-tx", "b-tx"} {
		rec := env.do(http.MethodPut, "/api/v1/seo-pages/"+slug,
			`{"region":"R","state":"TX","title":"t","meta_description":"d","headline":"h","intro":"i"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(http.MethodGet, "/api/v1/seo-pages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pages []model.SeoPage
	decodeData(t, rec, &pages)
	require.Len(t, pages, 2)
	require.EqualValues(t, 2, decodeMeta(t, rec).Total)
}
