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
	"errors"
	"sync"
	"testing"
	"time"

	"hrdesk/internal/document"
)

type recordingWriter struct {
	mu    sync.Mutex
	revs  []uint64
	fail  error
	delay time.Duration
}

func (w *recordingWriter) Save(ctx context.Context, rev uint64, snap document.Snapshot) error {
	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.revs = append(w.revs, rev)
	return nil
}

func (w *recordingWriter) saved() []uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]uint64(nil), w.revs...)
}

func snapNamed(name string) document.Snapshot {
	return document.Snapshot{Pages: []document.PageData{{ID: "p", Name: name}}, ActivePageID: "p"}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAutosaverCoalescesBurst(t *testing.T) {
	w := &recordingWriter{}
	var mu sync.Mutex
	var savedRevs []uint64
	a := NewAutosaver(w, 30*time.Millisecond, func(rev uint64) {
		mu.Lock()
		savedRevs = append(savedRevs, rev)
		mu.Unlock()
	})
	for i := uint64(1); i <= 10; i++ {
		a.Schedule(i, snapNamed("v"))
	}
	waitFor(t, func() bool { return len(w.saved()) == 1 })
	time.Sleep(60 * time.Millisecond)
	if got := w.saved(); len(got) != 1 || got[0] != 10 {
		t.Fatalf("expected a single write of rev 10, got %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(savedRevs) != 1 || savedRevs[0] != 10 {
		t.Fatalf("onSaved got %v", savedRevs)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestAutosaverFlushSkipsWindow(t *testing.T) {
	w := &recordingWriter{}
	a := NewAutosaver(w, time.Hour, nil)
	a.Schedule(1, snapNamed("a"))
	a.Flush(2, snapNamed("b"))
	waitFor(t, func() bool { return len(w.saved()) == 1 })
	if got := w.saved(); got[0] != 2 {
		t.Fatalf("flush wrote %v, want rev 2", got)
	}
	if a.Pending() {
		t.Fatalf("nothing should be pending after flush")
	}
	_ = a.Close()
	if got := w.saved(); len(got) != 1 {
		t.Fatalf("close must not rewrite an already saved revision: %v", got)
	}
}

func TestAutosaverCloseWritesPending(t *testing.T) {
	w := &recordingWriter{}
	a := NewAutosaver(w, time.Hour, nil)
	a.Schedule(5, snapNamed("x"))
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := w.saved(); len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected pending rev 5 written on close, got %v", got)
	}
	a.Schedule(6, snapNamed("y"))
	if a.Pending() {
		t.Fatalf("requests after close must be dropped")
	}
}

func TestAutosaverKeepsFailedWriteForRetry(t *testing.T) {
	w := &recordingWriter{fail: errors.New("disk full")}
	a := NewAutosaver(w, time.Hour, nil)
	a.Flush(1, snapNamed("x"))
	waitFor(t, func() bool { return a.LastError() != nil })
	if !a.Pending() {
		t.Fatalf("failed write must stay pending")
	}
	w.mu.Lock()
	w.fail = nil
	w.mu.Unlock()
	if err := a.Close(); err != nil {
		t.Fatalf("Close after recovery: %v", err)
	}
	if got := w.saved(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected retried rev 1, got %v", got)
	}
}

func TestAutosaverWithRepository(t *testing.T) {
	_, repo := openRepo(t)
	a := NewAutosaver(repo, 10*time.Millisecond, nil)
	a.Schedule(1, snapNamed("first"))
	a.Schedule(2, snapNamed("second"))
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Pages[0].Name != "second" {
		t.Fatalf("last write must win, got %q", got.Pages[0].Name)
	}
}
