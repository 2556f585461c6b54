/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas lays out the active page, translates pointer input and runs the
// move-drag, palette drop and selection flows on top of the document store.
package canvas

import (
	"context"
	"log/slog"

	"hrdesk/internal/dashdata"
	"hrdesk/internal/document"
	applog "hrdesk/internal/log"
	"hrdesk/internal/store"
	"hrdesk/internal/vector"
	"hrdesk/internal/widget"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// PointerEvent is a pointer event in viewport coordinates.
type PointerEvent struct {
	Pos    vector.Pt
	Button Button
}

// Listeners are the window-level pointer hooks a host installs while a drag runs.
type Listeners interface {
	Attach()
	Detach()
}

type Options struct {
	// Hook supplies shared data to dashboard widgets. Optional.
	Hook *dashdata.Hook
	// Listeners is notified when a drag starts and ends. Optional.
	Listeners Listeners
	// Invalidate is called when the scene needs to be redrawn. Optional.
	Invalidate func()
	// GuideThreshold is the alignment guide distance; 0 means 6.
	GuideThreshold float64
	Context        context.Context
}

type drag struct {
	id       string
	pageID   string
	parentID string
	grab     vector.Pt
	size     widget.Size
	startRel vector.Pt
	ghost    vector.Rect
	moved    bool
	guides   []vector.GuideLine
}

// State reports the drag state machine.
type State struct {
	Dragging    bool
	ComponentID string
	Ghost       vector.Rect
}

// Surface is the interactive canvas of the active page. It is driven from the UI
// event loop and is not safe for concurrent use.
type Surface struct {
	st   *store.Store
	reg  *widget.Registry
	opts Options
	log  *slog.Logger

	bounds      vector.Rect
	sizes       map[string]widget.Size
	focus       bool
	drag        *drag
	wasDragging bool
	fetched     bool

	unsub []func()
}

// New returns a surface over st. Close releases its subscriptions.
func New(st *store.Store, reg *widget.Registry, opts Options) *Surface {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.GuideThreshold <= 0 {
		opts.GuideThreshold = 6
	}
	s := &Surface{
		st:    st,
		reg:   reg,
		opts:  opts,
		log:   applog.WithComponent("canvas"),
		sizes: map[string]widget.Size{},
	}
	s.unsub = append(s.unsub, st.Subscribe(s.onStoreChange))
	if opts.Hook != nil {
		s.unsub = append(s.unsub, opts.Hook.OnChange(func(dashdata.State) { s.invalidate() }))
	}
	return s
}

func (s *Surface) Close() {
	for _, fn := range s.unsub {
		fn()
	}
	s.unsub = nil
	s.endDrag()
}

func (s *Surface) invalidate() {
	if s.opts.Invalidate != nil {
		s.opts.Invalidate()
	}
}

func (s *Surface) onStoreChange(store.Change) {
	if s.drag != nil {
		if _, ok := s.st.ComponentByID(s.drag.id); !ok || s.st.ActivePageID() != s.drag.pageID {
			s.log.Debug("drag target vanished", slog.String("component", s.drag.id))
			s.endDrag()
		}
	}
	s.invalidate()
}

// SetBounds records the canvas rectangle in viewport coordinates.
func (s *Surface) SetBounds(r vector.Rect) { s.bounds = r }

func (s *Surface) Bounds() vector.Rect { return s.bounds }

// ToLocal converts a viewport point into canvas-local coordinates.
func (s *Surface) ToLocal(p vector.Pt) vector.Pt { return p.Sub(s.bounds.Min()) }

func (s *Surface) inBounds(local vector.Pt) bool {
	return vector.R(0, 0, s.bounds.W, s.bounds.H).Contains(local)
}

// ReportSize records the rendered size of a component as measured by the host.
func (s *Surface) ReportSize(id string, w, h float64) {
	if w <= 0 || h <= 0 {
		delete(s.sizes, id)
		return
	}
	s.sizes[id] = widget.Size{W: w, H: h}
}

// SetInputFocus tells the surface whether a text field currently holds focus.
func (s *Surface) SetInputFocus(focused bool) { s.focus = focused }

func (s *Surface) State() State {
	if s.drag == nil {
		return State{}
	}
	return State{Dragging: true, ComponentID: s.drag.id, Ghost: s.drag.ghost}
}

func (s *Surface) grid() Grid {
	p, ok := s.st.ActivePage()
	if !ok {
		return Grid{}
	}
	return gridOf(p)
}

// Render lays out the active page.
func (s *Surface) Render() Scene {
	var dash dashdata.State
	if s.opts.Hook != nil {
		dash = s.opts.Hook.State()
	}
	sel := s.st.SelectedID()
	var sc Scene
	s.st.Read(func(d *document.Document) {
		sc = s.layout(d, d.ActivePageID(), sel, dash)
	})
	if s.drag != nil {
		g := s.drag.ghost
		sc.Ghost = &g
		sc.Guides = append([]vector.GuideLine(nil), s.drag.guides...)
	}
	if s.opts.Hook != nil && !s.fetched && hasType(sc, widget.DashboardTag) {
		s.fetched = true
		s.opts.Hook.Refresh(s.opts.Context)
	}
	return sc
}

// RenderPage lays out any page without selection or drag feedback. Dashboard widgets
// show whatever data the hook already holds.
func (s *Surface) RenderPage(pageID string) (Scene, bool) {
	var dash dashdata.State
	if s.opts.Hook != nil {
		dash = s.opts.Hook.State()
	}
	var (
		sc Scene
		ok bool
	)
	s.st.Read(func(d *document.Document) {
		if _, ok = d.Page(pageID); ok {
			sc = s.layout(d, pageID, "", dash)
		}
	})
	return sc, ok
}

func hasType(sc Scene, tag string) bool {
	found := false
	sc.Walk(func(n Node) bool {
		found = n.Type == tag
		return !found
	})
	return found
}

func (s *Surface) layout(d *document.Document, pageID, sel string, dash dashdata.State) Scene {
	sc := Scene{Size: vector.R(0, 0, s.bounds.W, s.bounds.H)}
	p, ok := d.Page(pageID)
	if !ok {
		return sc
	}
	sc.PageID, sc.PageName, sc.Background, sc.Grid = p.ID, p.Name, p.Background, gridOf(p)

	var build func(ids []string, parent string, origin vector.Pt, depth int) []Node
	build = func(ids []string, parent string, origin vector.Pt, depth int) []Node {
		out := make([]Node, 0, len(ids))
		for _, id := range ids {
			c, ok := d.Component(id)
			if !ok {
				continue
			}
			w, _ := s.reg.Lookup(c.Type)
			size := s.reg.SizeOf(c)
			r := vector.R(origin.X+c.X, origin.Y+c.Y, size.W, size.H)
			view := w.Render(widget.RenderContext{Selected: id == sel, Dashboard: dash}, c)
			n := Node{
				ID:        id,
				Type:      c.Type,
				ParentID:  parent,
				Depth:     depth,
				Rect:      r,
				View:      view,
				Container: w.Container(),
				Selected:  id == sel,
				Hidden:    s.drag != nil && s.drag.id == id,
			}
			n.Header, n.Content, n.Controls = frame(r, view.Actions)
			n.Children = build(d.Children(id), id, contentOrigin(n), depth+1)
			out = append(out, n)
		}
		return out
	}
	sc.Nodes = build(d.Roots(pageID), "", vector.Pt{}, 0)
	return sc
}

// Select, Delete and RefreshDashboard make the surface the widget host.
func (s *Surface) Select(id string) { s.st.Select(id) }

func (s *Surface) Delete(id string) { s.st.DeleteComponent(s.st.ActivePageID(), id) }

func (s *Surface) RefreshDashboard() {
	if s.opts.Hook == nil {
		return
	}
	s.opts.Hook.Refresh(s.opts.Context)
}
