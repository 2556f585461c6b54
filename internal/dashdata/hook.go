/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dashdata provides the data hook shared by every dashboard widget on a page:
// one fetch at canvas level, threaded into each widget as {data, loading, error}.
package dashdata

import (
	"context"
	"log/slog"
	"sync"

	applog "hrdesk/internal/log"
)

// State is the snapshot handed to dashboard widgets.
type State struct {
	Data    *Summary
	Loading bool
	Err     error
}

// Hook owns the shared dashboard state. Refresh is asynchronous; a newer refresh
// supersedes the result of an older one still in flight.
type Hook struct {
	src Source
	log *slog.Logger

	mu        sync.Mutex
	state     State
	seq       uint64
	listeners map[int]func(State)
	nextID    int
	wg        sync.WaitGroup
}

func NewHook(src Source) *Hook {
	return &Hook{src: src, log: applog.WithComponent("dashdata"), listeners: map[int]func(State){}}
}

func (h *Hook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// OnChange registers fn for state changes. fn runs on the goroutine that changed the
// state. The returned func unregisters it.
func (h *Hook) OnChange(fn func(State)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Refresh starts a fetch and returns immediately. A nil Source leaves the hook idle.
func (h *Hook) Refresh(ctx context.Context) {
	if h == nil || h.src == nil {
		return
	}
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.state.Loading = true
	st := h.state
	h.mu.Unlock()
	h.notify(st)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		sum, err := h.src.Summary(ctx)
		h.mu.Lock()
		if seq != h.seq {
			h.mu.Unlock()
			return
		}
		h.state.Loading = false
		h.state.Err = err
		if err == nil {
			h.state.Data = &sum
		} else {
			h.log.Warn("dashboard refresh failed", slog.Any("err", err))
		}
		st := h.state
		h.mu.Unlock()
		h.notify(st)
	}()
}

// Wait blocks until in-flight refreshes have finished.
func (h *Hook) Wait() { h.wg.Wait() }

func (h *Hook) notify(st State) {
	h.mu.Lock()
	fns := make([]func(State), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}
