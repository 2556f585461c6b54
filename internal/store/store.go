/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store owns the page-builder document. Every accepted mutation records an
// undo snapshot, marks the document dirty, notifies subscribers and hands the new
// state to the persister.
package store

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrdesk/internal/document"
	applog "hrdesk/internal/log"
	"hrdesk/internal/undo"
)

var (
	ErrCycle        = document.ErrCycle
	ErrNotContainer = errors.New("store: target cannot hold children")
)

const (
	DefaultWidth           = 300
	DefaultHeight          = 200
	DefaultDuplicateOffset = 20
	DefaultPageName        = "Main Page"
)

// Catalog decodes props and knows which types may hold children. The widget
// registry implements it.
type Catalog interface {
	document.PropsCodec
	IsContainer(tag string) bool
}

// Persister receives the document after each accepted content change, tagged with a
// revision that increases per change. Schedule may be coalesced; Flush should write
// without waiting for a quiet period. Neither may block the caller on I/O.
type Persister interface {
	Schedule(rev uint64, snap document.Snapshot)
	Flush(rev uint64, snap document.Snapshot)
}

type Options struct {
	Catalog         Catalog
	Persister       Persister
	HistoryDepth    int
	HistoryCoalesce time.Duration
	DuplicateOffset float64
	DefaultGridSize int
	NewID           func() string
	Now             func() time.Time
}

// Change describes an accepted mutation.
type Change struct {
	Op  string
	Gen uint64
}

type state struct {
	doc      *document.Document
	selected string
}

type Store struct {
	cat       Catalog
	persister Persister
	newID     func() string
	now       func() time.Time
	dupOffset float64
	gridSize  int
	log       *slog.Logger

	mu       sync.Mutex
	doc      *document.Document
	selected string
	hist     *undo.History[state]
	gen      uint64
	rev      uint64
	dirty    bool
	saved    bool

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// New returns a store holding an empty document.
func New(opts Options) *Store {
	if opts.Catalog == nil {
		opts.Catalog = rawCatalog{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DuplicateOffset == 0 {
		opts.DuplicateOffset = DefaultDuplicateOffset
	}
	if opts.DefaultGridSize <= 0 {
		opts.DefaultGridSize = document.DefaultGridSize
	}
	return &Store{
		cat:       opts.Catalog,
		persister: opts.Persister,
		newID:     opts.NewID,
		now:       opts.Now,
		dupOffset: opts.DuplicateOffset,
		gridSize:  opts.DefaultGridSize,
		log:       applog.WithComponent("store"),
		doc:       document.New(),
		hist:      undo.New[state](undo.Config{MaxDepth: opts.HistoryDepth, MinInterval: opts.HistoryCoalesce}),
		subs:      map[int]func(Change){},
	}
}

// rawCatalog treats every type as a leaf with opaque props.
type rawCatalog struct{ document.RawCodec }

func (rawCatalog) IsContainer(string) bool { return false }

// Codec returns the props codec used for snapshots.
func (s *Store) Codec() document.PropsCodec { return s.cat }

// Load replaces the document with a persisted one. History is reset and the document
// starts clean.
func (s *Store) Load(snap document.Snapshot) error {
	d, err := document.FromSnapshot(snap, s.cat)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = d
	s.selected = ""
	s.hist.Clear()
	s.gen++
	s.dirty = false
	s.saved = true
	gen := s.gen
	s.mu.Unlock()
	s.emit(Change{Op: "load", Gen: gen})
	return nil
}

// Subscribe registers fn for accepted mutations. fn runs after the store lock is released.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) emit(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

type persistMode int

const (
	persistNone persistMode = iota
	persistDebounced
	persistNow
	// persistOnSwitch flushes when the active page changed and debounces otherwise.
	persistOnSwitch
)

// mutate runs fn against the live document. When fn reports a change, the pre-change
// state goes onto the undo stack, the redo stack is dropped and the change is published.
// A rejected fn leaves the document exactly as it was.
func (s *Store) mutate(op string, mode persistMode, fn func(doc **document.Document, sel *string) bool) bool {
	s.mu.Lock()
	prev := state{doc: s.doc.Clone(), selected: s.selected}
	if !fn(&s.doc, &s.selected) {
		s.doc, s.selected = prev.doc, prev.selected
		s.mu.Unlock()
		return false
	}
	s.fixSelectionLocked()
	s.hist.Push(prev, s.now())
	if mode == persistOnSwitch {
		mode = persistDebounced
		if prev.doc.ActivePageID() != s.doc.ActivePageID() {
			mode = persistNow
		}
	}
	return s.publishLocked(op, mode)
}

// publishLocked releases s.mu.
func (s *Store) publishLocked(op string, mode persistMode) bool {
	s.gen++
	gen := s.gen
	var snap document.Snapshot
	if mode != persistNone {
		s.rev++
		s.dirty = true
		s.saved = false
		snap = s.doc.Snapshot(s.cat)
	}
	rev := s.rev
	s.mu.Unlock()

	s.log.Debug("mutation", slog.String("op", op), slog.Uint64("gen", gen))
	s.emit(Change{Op: op, Gen: gen})
	if s.persister != nil {
		switch mode {
		case persistDebounced:
			s.persister.Schedule(rev, snap)
		case persistNow:
			s.persister.Flush(rev, snap)
		}
	}
	return true
}

func (s *Store) fixSelectionLocked() {
	if s.selected == "" {
		return
	}
	if s.doc.PageOf(s.selected) != s.doc.ActivePageID() || s.doc.ActivePageID() == "" {
		s.selected = ""
	}
}

// Undo restores the most recent snapshot. It reports false on an empty stack.
func (s *Store) Undo() bool {
	s.mu.Lock()
	prev, ok := s.hist.Undo(state{doc: s.doc, selected: s.selected})
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc, s.selected = prev.doc, prev.selected
	return s.publishLocked("undo", persistDebounced)
}

// Redo re-applies the most recently undone state.
func (s *Store) Redo() bool {
	s.mu.Lock()
	next, ok := s.hist.Redo(state{doc: s.doc, selected: s.selected})
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc, s.selected = next.doc, next.selected
	return s.publishLocked("redo", persistDebounced)
}

func (s *Store) CanUndo() bool { return s.hist.CanUndo() }
func (s *Store) CanRedo() bool { return s.hist.CanRedo() }

// HistoryLen returns the number of undo entries.
func (s *Store) HistoryLen() int {
	n, _ := s.hist.Stats()
	return n
}

// Dirty reports unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Saved reports whether the last flush succeeded with nothing newer pending.
func (s *Store) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Generation increases with every accepted mutation, selection changes included.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Revision increases with every change to persisted content.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// MarkSaved records a successful flush of revision rev. A newer change keeps the
// document dirty.
func (s *Store) MarkSaved(rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = true
	if rev >= s.rev {
		s.dirty = false
	}
}
