// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olegiv/blockcms/internal/cache"
)

// mirrorKeyPrefix namespaces history snapshots in the cache.
const mirrorKeyPrefix = "editor:history:"

// Mirror persists history snapshots to a session-scoped cache entry so a
// reconnect within the session can restore its undo/redo stacks. It is
// best-effort: a failed save or load leaves the in-memory history intact
// and is never an error the editing flow has to handle.
type Mirror[T any] struct {
	cache cache.Cacher
	ttl   time.Duration
}

// NewMirror creates a history mirror over the given cache. ttl bounds how
// long an abandoned session's snapshot lingers.
func NewMirror[T any](c cache.Cacher, ttl time.Duration) *Mirror[T] {
	return &Mirror[T]{cache: c, ttl: ttl}
}

// Save stores the history's snapshot under the session key. Errors are
// returned for observability but callers may ignore them.
func (m *Mirror[T]) Save(ctx context.Context, sessionKey string, h *History[T]) error {
	data, err := json.Marshal(h.Snapshot())
	if err != nil {
		return err
	}
	return m.cache.Set(ctx, mirrorKeyPrefix+sessionKey, data, m.ttl)
}

// Load restores a previously saved snapshot into the history. Returns
// false when no snapshot exists or it cannot be decoded.
func (m *Mirror[T]) Load(ctx context.Context, sessionKey string, h *History[T]) bool {
	data, err := m.cache.Get(ctx, mirrorKeyPrefix+sessionKey)
	if err != nil {
		return false
	}

	var snap Snapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return false
	}

	h.RestoreSnapshot(snap)
	return true
}

// Discard removes a session's snapshot.
func (m *Mirror[T]) Discard(ctx context.Context, sessionKey string) {
	_ = m.cache.Delete(ctx, mirrorKeyPrefix+sessionKey)
}
