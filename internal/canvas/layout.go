/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"

	"hrdesk/internal/document"
	"hrdesk/internal/vector"
	"hrdesk/internal/widget"
)

// Layout constants in canvas units.
const (
	HeaderHeight = 32
	ControlSize  = 24
	controlGap   = 4
)

// Grid is the snapping configuration of a page.
type Grid struct {
	Enabled bool
	Size    int
}

func gridOf(p document.Page) Grid { return Grid{Enabled: p.GridEnabled, Size: p.GridSize} }

// Snap rounds both axes of p to the nearest multiple of the grid size. It returns p
// unchanged when snapping is off.
func Snap(p vector.Pt, g Grid) vector.Pt {
	if !g.Enabled || g.Size <= 0 {
		return p
	}
	s := float64(g.Size)
	return vector.Pt{X: snapAxis(p.X, s), Y: snapAxis(p.Y, s)}
}

func snapAxis(v, s float64) float64 {
	r := math.Round(v/s) * s
	if r == 0 {
		return 0 // avoid -0
	}
	return r
}

// Control is a clickable header action.
type Control struct {
	Action widget.Action
	Rect   vector.Rect
}

// Node is one laid out component. Rects are canvas-local.
type Node struct {
	ID       string
	Type     string
	ParentID string
	Depth    int
	Rect     vector.Rect
	Header   vector.Rect
	Content  vector.Rect
	Controls []Control
	View     widget.View
	// Container is true for types that host children in their content area.
	Container bool
	Selected  bool
	// Hidden is set on the component being dragged; only the ghost is drawn for it.
	Hidden   bool
	Children []Node
}

// Scene is the renderable state of the active page.
type Scene struct {
	PageID     string
	PageName   string
	Background string
	Grid       Grid
	Size       vector.Rect
	Nodes      []Node
	Ghost      *vector.Rect
	Guides     []vector.GuideLine
}

// Walk visits nodes depth first in draw order until fn returns false.
func (s Scene) Walk(fn func(n Node) bool) {
	var visit func(ns []Node) bool
	visit = func(ns []Node) bool {
		for _, n := range ns {
			if !fn(n) || !visit(n.Children) {
				return false
			}
		}
		return true
	}
	visit(s.Nodes)
}

// Find returns the node with the given id.
func (s Scene) Find(id string) (Node, bool) {
	var out Node
	found := false
	s.Walk(func(n Node) bool {
		if n.ID == id {
			out, found = n, true
			return false
		}
		return true
	})
	return out, found
}

// frame derives header, content and control rects for a component at r.
func frame(r vector.Rect, actions []widget.Action) (header, content vector.Rect, controls []Control) {
	hh := math.Min(HeaderHeight, r.H)
	header = vector.R(r.X, r.Y, r.W, hh)
	content = vector.R(r.X, r.Y+hh, r.W, math.Max(0, r.H-hh))
	right := r.X + r.W - controlGap
	for i := len(actions) - 1; i >= 0; i-- {
		right -= ControlSize
		controls = append([]Control{{
			Action: actions[i],
			Rect:   vector.R(right, r.Y+(hh-ControlSize)/2, ControlSize, ControlSize),
		}}, controls...)
		right -= controlGap
	}
	return header, content, controls
}

// contentOrigin is where child coordinates are measured from.
func contentOrigin(n Node) vector.Pt { return n.Content.Min() }

func strictlyInside(r vector.Rect, p vector.Pt) bool {
	return p.X > r.X && p.Y > r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// hit is the result of a hit test.
type hit struct {
	node    Node
	inHead  bool
	control *Control
}

// hitTest returns the topmost node under p. Children draw above their container and
// later siblings above earlier ones. Hidden nodes and ids in skip are ignored along
// with their subtrees.
func hitTest(nodes []Node, p vector.Pt, skip map[string]bool) (hit, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Hidden || skip[n.ID] {
			continue
		}
		if h, ok := hitTest(n.Children, p, skip); ok {
			return h, true
		}
		if !n.Rect.Contains(p) {
			continue
		}
		h := hit{node: n, inHead: strictlyInside(n.Header, p)}
		for j := range n.Controls {
			if n.Controls[j].Rect.Contains(p) {
				c := n.Controls[j]
				h.control = &c
				break
			}
		}
		return h, true
	}
	return hit{}, false
}

// containerAt returns the innermost container whose content area holds p.
func containerAt(nodes []Node, p vector.Pt, skip map[string]bool) (Node, bool) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Hidden || skip[n.ID] {
			continue
		}
		if c, ok := containerAt(n.Children, p, skip); ok {
			return c, true
		}
		if n.Container && n.Content.Contains(p) {
			return n, true
		}
		if n.Rect.Contains(p) {
			// an opaque leaf covers whatever lies below it
			return Node{}, false
		}
	}
	return Node{}, false
}
