/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo implements a bounded snapshot history. Entries are opaque states of
// any type; callers capture a state before they change it and hand the current state
// back in when stepping through history.
package undo

import (
	"sync"
	"time"
)

// DefaultMaxDepth is the number of undo entries kept when Config.MaxDepth is unset.
const DefaultMaxDepth = 50

// Config controls depth caps and coalescing behavior.
type Config struct {
	// MaxDepth limits the undo stack; the oldest entries are dropped on overflow.
	MaxDepth int
	// MinInterval coalesces pushes that arrive within the interval of the previous
	// one: the earlier snapshot is kept so one undo reverts the whole burst.
	// Zero disables coalescing.
	MinInterval time.Duration
}

type entry[T any] struct {
	state T
	ts    time.Time
}

// History is an undo/redo stack pair. It is safe for concurrent use.
type History[T any] struct {
	cfg  Config
	mu   sync.Mutex
	undo []entry[T]
	redo []entry[T]
}

func New[T any](cfg Config) *History[T] {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &History[T]{cfg: cfg}
}

// Push records the state captured before a change. Any new change invalidates redo.
func (h *History[T]) Push(state T, ts time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redo = nil
	if n := len(h.undo); n > 0 && h.cfg.MinInterval > 0 {
		if ts.Sub(h.undo[n-1].ts) < h.cfg.MinInterval {
			h.undo[n-1].ts = ts
			return
		}
	}
	h.undo = append(h.undo, entry[T]{state: state, ts: ts})
	h.enforceCapLocked()
}

// Undo pops the most recent snapshot and parks current on the redo stack.
// It reports false and leaves both stacks untouched when there is nothing to undo.
func (h *History[T]) Undo(current T) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var zero T
	n := len(h.undo)
	if n == 0 {
		return zero, false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, entry[T]{state: current, ts: time.Now()})
	return e.state, true
}

// Redo is the inverse of Undo.
func (h *History[T]) Redo(current T) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var zero T
	n := len(h.redo)
	if n == 0 {
		return zero, false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, entry[T]{state: current, ts: time.Now()})
	h.enforceCapLocked()
	return e.state, true
}

func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Stats returns the current stack sizes for diagnostics.
func (h *History[T]) Stats() (undoDepth, redoDepth int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}

// Clear drops both stacks, e.g. after a full document replace from disk.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}

func (h *History[T]) enforceCapLocked() {
	if len(h.undo) > h.cfg.MaxDepth {
		toDrop := len(h.undo) - h.cfg.MaxDepth
		h.undo = append([]entry[T]{}, h.undo[toDrop:]...)
	}
}
