// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor provides the in-memory undo/redo history used by editing
// sessions. The history is local to one session, bounded, and completely
// decoupled from persisted block versions: undoing here never touches the
// store.
package editor

import (
	"sync"
	"time"
)

// Action tags which editing operation produced a history state.
type Action string

// History actions
const (
	ActionEdit    Action = "edit"
	ActionSave    Action = "save"
	ActionPublish Action = "publish"
	ActionRevert  Action = "revert"
	ActionCreate  Action = "create"
	ActionDelete  Action = "delete"
	ActionReorder Action = "reorder"
)

// DefaultMaxStackSize bounds the undo stack.
const DefaultMaxStackSize = 50

// DefaultDebounceWindow is the coalescing window for rapid pushes. Two
// pushes inside the window collapse into one history step. This is
// best-effort UX smoothing, not a correctness guarantee.
const DefaultDebounceWindow = 300 * time.Millisecond

// State is one timestamped history entry.
type State[T any] struct {
	Data        T         `json:"data"`
	Action      Action    `json:"action"`
	Description string    `json:"description,omitempty"`
	BlockID     int64     `json:"block_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Options configures a History.
type Options struct {
	// MaxStackSize caps the undo stack; 0 means DefaultMaxStackSize.
	MaxStackSize int
	// DebounceWindow is the coalescing window; 0 means DefaultDebounceWindow.
	// Negative disables coalescing.
	DebounceWindow time.Duration
	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// History is a bounded two-stack undo/redo history. Safe for concurrent
// use, though an editing session is normally single-threaded.
type History[T any] struct {
	mu       sync.Mutex
	undo     []State[T]
	redo     []State[T]
	maxSize  int
	debounce time.Duration
	now      func() time.Time

	// lastPush is when PushState last ran. Zeroed by undo/redo/clear so
	// coalescing only ever merges consecutive pushes.
	lastPush time.Time
}

// NewHistory creates a history with the given options.
func NewHistory[T any](opts Options) *History[T] {
	if opts.MaxStackSize <= 0 {
		opts.MaxStackSize = DefaultMaxStackSize
	}
	if opts.DebounceWindow == 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &History[T]{
		maxSize:  opts.MaxStackSize,
		debounce: opts.DebounceWindow,
		now:      opts.Now,
	}
}

// PushState appends a new entry to the undo stack and clears the redo
// stack: any new forward action invalidates prior redo history. A push
// within the debounce window of the previous push call replaces the top
// entry instead of appending, coalescing rapid keystrokes into one step.
// Undo and redo end a coalescing run: the first push after either always
// appends, so a branching edit never overwrites the state it branched
// from.
func (h *History[T]) PushState(data T, action Action, description string, blockID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := State[T]{
		Data:        data,
		Action:      action,
		Description: description,
		BlockID:     blockID,
		Timestamp:   h.now(),
	}

	coalesce := len(h.undo) > 0 && h.debounce > 0 &&
		!h.lastPush.IsZero() && entry.Timestamp.Sub(h.lastPush) < h.debounce
	h.lastPush = entry.Timestamp

	if coalesce {
		h.undo[len(h.undo)-1] = entry
		h.redo = h.redo[:0]
		return
	}

	h.undo = append(h.undo, entry)
	h.redo = h.redo[:0]

	// Truncate from the oldest end; the newest entry always survives.
	if len(h.undo) > h.maxSize {
		excess := len(h.undo) - h.maxSize
		h.undo = append(h.undo[:0:0], h.undo[excess:]...)
	}
}

// Undo moves the current entry to the redo stack and returns the previous
// state's data. With fewer than two entries there is nothing to undo: the
// first entry is the baseline, not itself undoable. The second return
// value reports whether an undo happened.
func (h *History[T]) Undo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if len(h.undo) < 2 {
		return zero, false
	}

	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	h.lastPush = time.Time{}

	return h.undo[len(h.undo)-1].Data, true
}

// Redo pops the most recent redo entry, pushes it back onto the undo
// stack, and returns its data. Returns false when there is nothing to redo.
func (h *History[T]) Redo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if len(h.redo) == 0 {
		return zero, false
	}

	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, top)
	h.lastPush = time.Time{}

	return top.Data, true
}

// CanUndo reports whether Undo would produce a state.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) >= 2
}

// CanRedo reports whether Redo would produce a state.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Current returns the newest undo entry, if any.
func (h *History[T]) Current() (State[T], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undo) == 0 {
		return State[T]{}, false
	}
	return h.undo[len(h.undo)-1], true
}

// Len returns the undo and redo stack depths.
func (h *History[T]) Len() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}

// ClearHistory empties both stacks. Used on page navigation or reset.
func (h *History[T]) ClearHistory() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
	h.lastPush = time.Time{}
}

// Snapshot returns a copy of both stacks for mirroring.
func (h *History[T]) Snapshot() Snapshot[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	return Snapshot[T]{
		Undo: append([]State[T](nil), h.undo...),
		Redo: append([]State[T](nil), h.redo...),
	}
}

// RestoreSnapshot replaces both stacks with the snapshot's contents,
// re-applying the stack size cap.
func (h *History[T]) RestoreSnapshot(snap Snapshot[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	undo := append([]State[T](nil), snap.Undo...)
	if len(undo) > h.maxSize {
		undo = append(undo[:0:0], undo[len(undo)-h.maxSize:]...)
	}
	h.undo = undo
	h.redo = append([]State[T](nil), snap.Redo...)
	h.lastPush = time.Time{}
}

// Snapshot is a serializable copy of a history's stacks.
type Snapshot[T any] struct {
	Undo []State[T] `json:"undo"`
	Redo []State[T] `json:"redo"`
}
