/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"hrdesk/internal/document"
	applog "hrdesk/internal/log"
)

// DocumentWriter is the write side of Repository.
type DocumentWriter interface {
	Save(ctx context.Context, rev uint64, snap document.Snapshot) error
}

type pendingWrite struct {
	rev  uint64
	snap document.Snapshot
}

// Autosaver coalesces document writes. A request arriving inside the quiet window
// replaces the pending one instead of queueing behind it; Flush writes without waiting
// for the window. Writes run off the caller's goroutine and never overlap.
type Autosaver struct {
	repo      DocumentWriter
	debounced func(f func())
	onSaved   func(rev uint64)
	timeout   time.Duration
	log       *slog.Logger

	mu        sync.Mutex
	pending   *pendingWrite
	lastSaved uint64
	lastErr   error
	closed    bool

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// NewAutosaver returns a saver with the given quiet window. onSaved, if set, is called
// with the revision of every successful write.
func NewAutosaver(repo DocumentWriter, delay time.Duration, onSaved func(rev uint64)) *Autosaver {
	if delay <= 0 {
		delay = time.Second
	}
	return &Autosaver{
		repo:      repo,
		debounced: debounce.New(delay),
		onSaved:   onSaved,
		timeout:   5 * time.Second,
		log:       applog.WithComponent("autosave"),
	}
}

// Schedule queues snap for writing once no newer request arrived for the quiet window.
func (a *Autosaver) Schedule(rev uint64, snap document.Snapshot) {
	if !a.offer(rev, snap) {
		return
	}
	a.debounced(a.flushPending)
}

// Flush writes snap as soon as possible without blocking the caller.
func (a *Autosaver) Flush(rev uint64, snap document.Snapshot) {
	if !a.offer(rev, snap) {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.flushPending()
	}()
}

func (a *Autosaver) offer(rev uint64, snap document.Snapshot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.log.Warn("write requested after close", slog.Uint64("rev", rev))
		return false
	}
	if a.pending == nil || rev >= a.pending.rev {
		a.pending = &pendingWrite{rev: rev, snap: snap}
	}
	return true
}

// Pending reports whether a write is waiting.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// LastError returns the error of the most recent failed write, cleared by a success.
func (a *Autosaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Autosaver) flushPending() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	w := a.pending
	a.pending = nil
	stale := w != nil && a.lastSaved != 0 && w.rev < a.lastSaved
	a.mu.Unlock()
	if w == nil || stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	err := a.repo.Save(ctx, w.rev, w.snap)

	a.mu.Lock()
	if err != nil {
		a.lastErr = err
		// keep it for the next attempt unless something newer arrived meanwhile
		if a.pending == nil {
			a.pending = w
		}
		a.mu.Unlock()
		a.log.Error("autosave failed", slog.Uint64("rev", w.rev), slog.Any("err", err))
		return
	}
	a.lastErr = nil
	a.lastSaved = w.rev
	a.mu.Unlock()
	if a.onSaved != nil {
		a.onSaved(w.rev)
	}
}

// Close writes any pending document and stops accepting requests.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	// supersede a timer that has not fired yet
	a.debounced(func() {})
	a.wg.Wait()
	a.flushPending()
	return a.LastError()
}
