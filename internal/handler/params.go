// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides shared HTTP request helpers.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidID indicates a URL id parameter that is not a positive integer.
var ErrInvalidID = errors.New("invalid id parameter")

// ParseIDParam extracts the {id} URL parameter as a positive int64.
func ParseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParsePageParam extracts the "page" query parameter, defaulting to 1.
// Invalid and non-positive values fall back to 1.
func ParsePageParam(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPageParam extracts the "per_page" query parameter. Values outside
// [1, maxVal] fall back to defaultVal.
func ParsePerPageParam(r *http.Request, defaultVal, maxVal int) int {
	raw := r.URL.Query().Get("per_page")
	perPage, err := strconv.Atoi(raw)
	if err != nil || perPage < 1 || perPage > maxVal {
		return defaultVal
	}
	return perPage
}
