/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"errors"
	"log/slog"

	applog "hrdesk/internal/log"
	"hrdesk/internal/store"
	"hrdesk/internal/vector"
	"hrdesk/internal/widget"
)

// PointerDown starts a move-drag when the press lands in a component header outside
// its controls. It reports whether a drag started.
func (s *Surface) PointerDown(ev PointerEvent) bool {
	if s.drag != nil {
		return false
	}
	// a new press means no trailing click is coming for the last drag
	s.wasDragging = false
	if ev.Button != ButtonLeft {
		return false
	}
	local := s.ToLocal(ev.Pos)
	if !s.inBounds(local) {
		return false
	}
	sc := s.Render()
	h, ok := hitTest(sc.Nodes, local, nil)
	if !ok || !h.inHead || h.control != nil {
		return false
	}
	c, ok := s.st.ComponentByID(h.node.ID)
	if !ok {
		return false
	}
	size := widget.Size{W: h.node.Rect.W, H: h.node.Rect.H}
	if rs, ok := s.sizes[c.ID]; ok {
		size = rs
	}
	s.drag = &drag{
		id:       c.ID,
		pageID:   sc.PageID,
		parentID: h.node.ParentID,
		grab:     local.Sub(h.node.Rect.Min()),
		size:     size,
		startRel: vector.Pt{X: c.X, Y: c.Y},
		ghost:    vector.R(h.node.Rect.X, h.node.Rect.Y, size.W, size.H),
	}
	if s.opts.Listeners != nil {
		s.opts.Listeners.Attach()
	}
	s.log.Debug("drag start", slog.String("component", c.ID))
	s.invalidate()
	return true
}

// PointerMove updates the ghost of an active drag.
func (s *Surface) PointerMove(ev PointerEvent) {
	d := s.drag
	if d == nil || s.focus {
		return
	}
	local := s.ToLocal(ev.Pos)
	if !s.inBounds(local) {
		return
	}
	pos := Snap(local.Sub(d.grab), s.grid())
	d.ghost = vector.R(pos.X, pos.Y, d.size.W, d.size.H)
	d.moved = true
	d.guides = s.guidesFor(d.ghost)
	s.invalidate()
}

func (s *Surface) guidesFor(r vector.Rect) []vector.GuideLine {
	sc := s.Render()
	anchors := []vector.Anchor{{Rect: sc.Size, Weight: 0.5}}
	for _, n := range sc.Nodes {
		if n.Hidden {
			continue
		}
		anchors = append(anchors, vector.Anchor{Rect: n.Rect, Weight: 1})
	}
	_, guides := vector.ComputeSmartGuides(r, anchors, vector.SnapOptions{
		Threshold:     s.opts.GuideThreshold,
		SnapToEdges:   true,
		SnapToCenters: true,
	})
	return guides
}

// PointerUp ends an active drag. A release inside the canvas commits the snapped
// position, moving the component into the container under the pointer if any. Any
// other release discards the drag.
func (s *Surface) PointerUp(ev PointerEvent) {
	d := s.drag
	if d == nil {
		return
	}
	defer s.endDrag()
	s.wasDragging = d.moved
	local := s.ToLocal(ev.Pos)
	if s.focus || !s.inBounds(local) {
		s.log.Debug("drag discarded", slog.String("component", d.id))
		return
	}
	g := s.grid()
	top := local.Sub(d.grab)
	sc := s.Render()
	target, nested := containerAt(sc.Nodes, local, map[string]bool{d.id: true})
	parent, rel := "", Snap(top, g)
	if nested {
		parent = target.ID
		rel = Snap(top.Sub(contentOrigin(target)), g)
	}
	if parent == d.parentID {
		if rel == d.startRel {
			return
		}
		s.st.MoveComponent(d.pageID, d.id, rel.X, rel.Y)
		return
	}
	if err := s.st.Reparent(d.pageID, d.id, parent, rel.X, rel.Y); err != nil {
		lvl := slog.LevelWarn
		if errors.Is(err, store.ErrCycle) || errors.Is(err, store.ErrNotContainer) {
			lvl = slog.LevelDebug
		}
		ctx := applog.ContextWithComponent(applog.ContextWithPage(s.opts.Context, d.pageID), d.id)
		s.log.Log(ctx, lvl, "reparent rejected", slog.String("parent", parent), slog.Any("err", err))
	}
}

// Cancel aborts an active drag without committing.
func (s *Surface) Cancel() {
	if s.drag != nil {
		s.log.Debug("drag cancelled", slog.String("component", s.drag.id))
		s.endDrag()
	}
}

func (s *Surface) endDrag() {
	if s.drag == nil {
		return
	}
	s.drag = nil
	if s.opts.Listeners != nil {
		s.opts.Listeners.Detach()
	}
	s.invalidate()
}

// EndGesture tells the surface that the host delivers no click after a released
// drag, so the next click is a real one.
func (s *Surface) EndGesture() {
	s.wasDragging = false
}

// Click selects the component under the pointer, runs a header control, or clears
// the selection on the background. The click that ends a drag is swallowed.
func (s *Surface) Click(ev PointerEvent) {
	if s.wasDragging {
		s.wasDragging = false
		return
	}
	if s.drag != nil || ev.Button != ButtonLeft {
		return
	}
	local := s.ToLocal(ev.Pos)
	if !s.inBounds(local) {
		return
	}
	h, ok := hitTest(s.Render().Nodes, local, nil)
	if !ok {
		s.st.ClearSelection()
		return
	}
	c, ok := s.st.ComponentByID(h.node.ID)
	if !ok {
		return
	}
	w, _ := s.reg.Lookup(c.Type)
	if h.control == nil {
		w.OnClick(s, c)
		return
	}
	switch h.control.Action {
	case widget.ActionRefresh:
		w.OnRefresh(s, c)
	case widget.ActionClose, widget.ActionDelete:
		w.OnClose(s, c)
	}
}

// Drop handles a palette drop at pos. Malformed payloads and move markers are
// ignored. It returns the id of the created component or "".
func (s *Surface) Drop(pos vector.Pt, raw []byte) string {
	p, err := ParsePayload(raw)
	if err != nil {
		s.log.Warn("drop ignored", slog.Any("err", err))
		return ""
	}
	if p.IsMove() {
		return ""
	}
	local := s.ToLocal(pos)
	pageID := s.st.ActivePageID()
	if pageID == "" || !s.inBounds(local) {
		return ""
	}
	w, _ := s.reg.Lookup(p.Type)
	size := w.DefaultSize()
	draft := store.Draft{Type: p.Type, Width: size.W, Height: size.H, Props: p.DefaultProps}
	g := s.grid()
	if target, nested := containerAt(s.Render().Nodes, local, nil); nested {
		at := Snap(local.Sub(contentOrigin(target)), g)
		draft.X, draft.Y = at.X, at.Y
		id, err := s.st.AddChild(pageID, target.ID, draft)
		if err != nil {
			ctx := applog.ContextWithPage(s.opts.Context, pageID)
			s.log.WarnContext(ctx, "drop into container rejected", slog.String("container", target.ID), slog.Any("err", err))
		}
		return id
	}
	at := Snap(local, g)
	draft.X, draft.Y = at.X, at.Y
	return s.st.AddComponent(pageID, draft)
}
