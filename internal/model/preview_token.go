// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"math/big"
	"time"
)

// PreviewTokenLength is the default length of generated preview tokens.
// 40 alphanumeric characters give well over 128 bits of entropy.
const PreviewTokenLength = 40

// MinPreviewTokenLength is the minimum accepted token length.
const MinPreviewTokenLength = 32

// previewTokenAlphabet is the character set for preview tokens.
const previewTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PreviewToken is a bearer credential granting time-boxed unauthenticated
// read access to a page's draft content. Expiration is the only
// invalidation mechanism; tokens are never bound to a requester identity.
type PreviewToken struct {
	ID        int64     `json:"id"`
	PageID    int64     `json:"page_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the token has expired at the given instant.
func (t *PreviewToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// GeneratePreviewToken returns a random alphanumeric token of the given
// length. Lengths below MinPreviewTokenLength are raised to the default.
func GeneratePreviewToken(length int) (string, error) {
	if length < MinPreviewTokenLength {
		length = PreviewTokenLength
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(previewTokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = previewTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
