/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"log/slog"

	"hrdesk/internal/document"
)

// Draft is a component to be created. Props nil means the type's defaults.
type Draft struct {
	Type          string
	X, Y          float64
	Width, Height float64
	Props         map[string]any
}

// PagePatch holds the page fields to change; nil fields are left alone.
type PagePatch struct {
	Name        *string
	Background  *string
	GridEnabled *bool
	GridSize    *int
}

// ComponentPatch holds the component fields to change. Props is merged key by key
// into the existing configuration; a nil value removes the key.
type ComponentPatch struct {
	X, Y          *float64
	Width, Height *float64
	Props         map[string]any
}

// SetPages replaces all pages. The active page is kept when it still exists.
func (s *Store) SetPages(pages []document.PageData) error {
	s.mu.Lock()
	active := s.doc.ActivePageID()
	s.mu.Unlock()
	d, err := document.FromSnapshot(document.Snapshot{Pages: pages, ActivePageID: active}, s.cat)
	if err != nil {
		return err
	}
	s.mutate("set_pages", persistDebounced, func(doc **document.Document, _ *string) bool {
		*doc = d
		return true
	})
	return nil
}

// AddPage appends a page with default settings, activates it and returns its id.
func (s *Store) AddPage(name string) string {
	id := s.newID()
	if name == "" {
		name = DefaultPageName
	}
	s.mutate("add_page", persistDebounced, func(doc **document.Document, _ *string) bool {
		d := *doc
		if err := d.AppendPage(document.Page{
			ID:          id,
			Name:        name,
			Background:  document.DefaultBackground,
			GridEnabled: true,
			GridSize:    s.gridSize,
		}); err != nil {
			return false
		}
		d.SetActivePageID(id)
		return true
	})
	return id
}

func (s *Store) UpdatePage(pageID string, patch PagePatch) {
	s.mutate("update_page", persistDebounced, func(doc **document.Document, _ *string) bool {
		d := *doc
		p, ok := d.Page(pageID)
		if !ok {
			return false
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Background != nil {
			p.Background = *patch.Background
		}
		if patch.GridEnabled != nil {
			p.GridEnabled = *patch.GridEnabled
		}
		if patch.GridSize != nil && *patch.GridSize > 0 {
			p.GridSize = *patch.GridSize
		}
		return d.SetPage(p)
	})
}

func (s *Store) RenamePage(pageID, name string) {
	s.UpdatePage(pageID, PagePatch{Name: &name})
}

// DeletePage removes a page with its components. Callers confirm beforehand when the
// page is not empty. Deleting the active page flushes like SetActivePage does.
func (s *Store) DeletePage(pageID string) {
	s.mutate("delete_page", persistOnSwitch, func(doc **document.Document, sel *string) bool {
		if !(*doc).RemovePage(pageID) {
			return false
		}
		*sel = ""
		return true
	})
}

// SetActivePage switches pages and clears the selection. The switch is flushed
// immediately instead of debounced.
func (s *Store) SetActivePage(pageID string) {
	s.mutate("set_active_page", persistNow, func(doc **document.Document, sel *string) bool {
		d := *doc
		if pageID == "" || d.ActivePageID() == pageID || !d.SetActivePageID(pageID) {
			return false
		}
		*sel = ""
		return true
	})
}

func (s *Store) newComponent(d Draft) document.Component {
	c := document.Component{
		ID:     s.newID(),
		Type:   d.Type,
		X:      d.X,
		Y:      d.Y,
		Width:  d.Width,
		Height: d.Height,
		Props:  s.cat.DecodeProps(d.Type, d.Props),
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	return c
}

// AddComponent appends a root component to the page and selects it when the page is
// active. It returns "" when the page does not exist.
func (s *Store) AddComponent(pageID string, draft Draft) string {
	c := s.newComponent(draft)
	ok := s.mutate("add_component", persistDebounced, func(doc **document.Document, sel *string) bool {
		d := *doc
		if err := d.InsertRoot(pageID, c); err != nil {
			return false
		}
		if d.ActivePageID() == pageID {
			*sel = c.ID
		}
		return true
	})
	if !ok {
		return ""
	}
	return c.ID
}

// AddChild appends a component inside a container. Position is relative to the
// container's content area.
func (s *Store) AddChild(pageID, parentID string, draft Draft) (string, error) {
	c := s.newComponent(draft)
	var err error
	ok := s.mutate("add_child", persistDebounced, func(doc **document.Document, sel *string) bool {
		d := *doc
		parent, found := d.Component(parentID)
		if !found || d.PageOf(parentID) != pageID {
			return false
		}
		if !s.cat.IsContainer(parent.Type) {
			err = ErrNotContainer
			return false
		}
		if e := d.InsertChild(parentID, c); e != nil {
			err = e
			return false
		}
		if d.ActivePageID() == pageID {
			*sel = c.ID
		}
		return true
	})
	if err != nil {
		s.log.Debug("add child rejected", slog.String("parent", parentID), slog.Any("err", err))
		return "", err
	}
	if !ok {
		return "", nil
	}
	return c.ID, nil
}

func (s *Store) UpdateComponent(pageID, componentID string, patch ComponentPatch) {
	s.mutate("update_component", persistDebounced, func(doc **document.Document, _ *string) bool {
		d := *doc
		c, ok := d.Component(componentID)
		if !ok || d.PageOf(componentID) != pageID {
			return false
		}
		if patch.X != nil {
			c.X = *patch.X
		}
		if patch.Y != nil {
			c.Y = *patch.Y
		}
		if patch.Width != nil && *patch.Width > 0 {
			c.Width = *patch.Width
		}
		if patch.Height != nil && *patch.Height > 0 {
			c.Height = *patch.Height
		}
		if patch.Props != nil {
			c.Props = document.MergeProps(s.cat, c.Type, c.Props, patch.Props)
		}
		return d.SetComponent(c)
	})
}

func (s *Store) MoveComponent(pageID, componentID string, x, y float64) {
	s.UpdateComponent(pageID, componentID, ComponentPatch{X: &x, Y: &y})
}

// DeleteComponent removes a component, root or nested, together with its subtree.
func (s *Store) DeleteComponent(pageID, componentID string) {
	s.mutate("delete_component", persistDebounced, func(doc **document.Document, sel *string) bool {
		d := *doc
		if d.PageOf(componentID) != pageID || pageID == "" {
			return false
		}
		for _, id := range d.Detach(componentID) {
			if id == *sel {
				*sel = ""
			}
		}
		return true
	})
}

// DuplicateComponent clones a component, root or nested, with its subtree under fresh
// ids, inserts the clone at the end of the page's root list offset by the duplicate
// delta and returns the new id.
func (s *Store) DuplicateComponent(pageID, componentID string) string {
	var newRoot string
	s.mutate("duplicate_component", persistDebounced, func(doc **document.Document, sel *string) bool {
		d := *doc
		if d.PageOf(componentID) != pageID || pageID == "" {
			return false
		}
		ids := map[string]string{}
		for _, old := range d.Subtree(componentID) {
			c, _ := d.Component(old)
			c.ID = s.newID()
			ids[old] = c.ID
			if old == componentID {
				c.X += s.dupOffset
				c.Y += s.dupOffset
				if err := d.InsertRoot(pageID, c); err != nil {
					return false
				}
				newRoot = c.ID
				continue
			}
			parent, _ := d.ParentOf(old)
			if err := d.InsertChild(ids[parent], c); err != nil {
				return false
			}
		}
		if d.ActivePageID() == pageID {
			*sel = newRoot
		}
		return true
	})
	return newRoot
}

// Reparent moves a component under newParentID, or to the page root when newParentID
// is "", placing it at x, y relative to its new container.
func (s *Store) Reparent(pageID, componentID, newParentID string, x, y float64) error {
	var err error
	s.mutate("reparent", persistDebounced, func(doc **document.Document, _ *string) bool {
		d := *doc
		c, ok := d.Component(componentID)
		if !ok || d.PageOf(componentID) != pageID {
			return false
		}
		if newParentID != "" {
			parent, ok := d.Component(newParentID)
			if !ok || d.PageOf(newParentID) != pageID {
				return false
			}
			if !s.cat.IsContainer(parent.Type) {
				err = ErrNotContainer
				return false
			}
		}
		if e := d.Reparent(componentID, newParentID); e != nil {
			err = e
			return false
		}
		c.X, c.Y = x, y
		return d.SetComponent(c)
	})
	if err != nil {
		s.log.Debug("reparent rejected", slog.String("component", componentID), slog.String("parent", newParentID), slog.Any("err", err))
	}
	return err
}

// Select marks a component on the active page as selected. Selection is recorded in
// history but is not persisted.
func (s *Store) Select(componentID string) {
	s.mutate("select", persistNone, func(doc **document.Document, sel *string) bool {
		d := *doc
		page := d.PageOf(componentID)
		if page == "" || *sel == componentID || page != d.ActivePageID() {
			return false
		}
		*sel = componentID
		return true
	})
}

func (s *Store) ClearSelection() {
	s.mutate("clear_selection", persistNone, func(_ **document.Document, sel *string) bool {
		if *sel == "" {
			return false
		}
		*sel = ""
		return true
	})
}

// ActivePage returns the settings of the active page.
func (s *Store) ActivePage() (document.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Page(s.doc.ActivePageID())
}

func (s *Store) ActivePageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ActivePageID()
}

func (s *Store) Pages() []document.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Pages()
}

// SelectedID returns the selected component id, or "".
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Store) SelectedComponent() (document.Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return document.Component{}, false
	}
	return s.doc.Component(s.selected)
}

// ComponentByID finds a component anywhere in the document.
func (s *Store) ComponentByID(id string) (document.Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Component(id)
}

// Read runs fn against the live document under the store lock. fn must neither keep
// nor modify d and must not call back into the store.
func (s *Store) Read(fn func(d *document.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Document returns a deep copy of the document.
func (s *Store) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Snapshot returns the persisted shape of the document.
func (s *Store) Snapshot() document.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Snapshot(s.cat)
}
