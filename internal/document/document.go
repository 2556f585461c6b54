/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document holds the page-builder data model: ordered pages, each owning a
// tree of components. Components live in an arena keyed by id; structure is kept in
// explicit parent and ordered-children indexes so moves never rebuild the tree.
package document

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID      = errors.New("document: duplicate id")
	ErrUnknownPage      = errors.New("document: unknown page")
	ErrUnknownComponent = errors.New("document: unknown component")
	ErrCycle            = errors.New("document: component cannot contain itself")
	ErrCrossPage        = errors.New("document: components live on different pages")
)

const (
	DefaultBackground = "#ffffff"
	DefaultGridSize   = 20
)

// Page carries the per-page settings. Its component tree is reached through Roots.
type Page struct {
	ID          string
	Name        string
	Background  string
	GridEnabled bool
	GridSize    int
}

// Component is one placed widget instance. Width and Height of zero mean unset.
type Component struct {
	ID     string
	Type   string
	X, Y   float64
	Width  float64
	Height float64
	Props  Props
}

func (c Component) clone() Component {
	if c.Props != nil {
		c.Props = c.Props.CloneProps()
	}
	return c
}

type node struct {
	comp     Component
	page     string
	parent   string
	children []string
}

type pageNode struct {
	page  Page
	roots []string
}

// Document is not safe for concurrent use; the store serializes access.
type Document struct {
	pages  []*pageNode
	active string
	nodes  map[string]*node
}

func New() *Document {
	return &Document{nodes: make(map[string]*node)}
}

// Len returns the number of components across all pages.
func (d *Document) Len() int { return len(d.nodes) }

func (d *Document) ActivePageID() string { return d.active }

// SetActivePageID activates id when it names a page, or clears the active page on "".
func (d *Document) SetActivePageID(id string) bool {
	if id != "" && d.pageNode(id) == nil {
		return false
	}
	d.active = id
	return true
}

func (d *Document) Pages() []Page {
	out := make([]Page, 0, len(d.pages))
	for _, p := range d.pages {
		out = append(out, p.page)
	}
	return out
}

func (d *Document) Page(id string) (Page, bool) {
	if p := d.pageNode(id); p != nil {
		return p.page, true
	}
	return Page{}, false
}

func (d *Document) pageNode(id string) *pageNode {
	for _, p := range d.pages {
		if p.page.ID == id {
			return p
		}
	}
	return nil
}

// AppendPage adds an empty page at the end of the page list.
func (d *Document) AppendPage(p Page) error {
	if p.ID == "" || d.pageNode(p.ID) != nil {
		return fmt.Errorf("%w: page %q", ErrDuplicateID, p.ID)
	}
	d.pages = append(d.pages, &pageNode{page: p})
	return nil
}

// SetPage replaces the settings of an existing page.
func (d *Document) SetPage(p Page) bool {
	pn := d.pageNode(p.ID)
	if pn == nil {
		return false
	}
	pn.page = p
	return true
}

// RemovePage drops the page and every component on it. When the page was active the
// first remaining page becomes active, or none.
func (d *Document) RemovePage(id string) bool {
	idx := -1
	for i, p := range d.pages {
		if p.page.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	for _, root := range d.pages[idx].roots {
		d.dropSubtree(root)
	}
	d.pages = append(d.pages[:idx], d.pages[idx+1:]...)
	if d.active == id {
		d.active = ""
		if len(d.pages) > 0 {
			d.active = d.pages[0].page.ID
		}
	}
	return true
}

func (d *Document) Component(id string) (Component, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return Component{}, false
	}
	return n.comp.clone(), true
}

// SetComponent replaces the data of an existing component without touching structure.
func (d *Document) SetComponent(c Component) bool {
	n, ok := d.nodes[c.ID]
	if !ok {
		return false
	}
	n.comp = c.clone()
	return true
}

// Roots returns the ordered root ids of a page.
func (d *Document) Roots(pageID string) []string {
	if p := d.pageNode(pageID); p != nil {
		return append([]string(nil), p.roots...)
	}
	return nil
}

// Children returns the ordered child ids of a component.
func (d *Document) Children(id string) []string {
	if n, ok := d.nodes[id]; ok {
		return append([]string(nil), n.children...)
	}
	return nil
}

// ParentOf returns the containing component id, "" for roots. ok is false for unknown ids.
func (d *Document) ParentOf(id string) (string, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return "", false
	}
	return n.parent, true
}

// PageOf returns the id of the page holding the component, or "".
func (d *Document) PageOf(id string) string {
	if n, ok := d.nodes[id]; ok {
		return n.page
	}
	return ""
}

// IsAncestor reports whether ancestor is id itself or lies on the path from id to its root.
func (d *Document) IsAncestor(ancestor, id string) bool {
	for cur := id; cur != ""; {
		if cur == ancestor {
			return true
		}
		n, ok := d.nodes[cur]
		if !ok {
			return false
		}
		cur = n.parent
	}
	return false
}

// Subtree lists id and all of its descendants in pre-order.
func (d *Document) Subtree(id string) []string {
	if _, ok := d.nodes[id]; !ok {
		return nil
	}
	var out []string
	var visit func(string)
	visit = func(cur string) {
		out = append(out, cur)
		for _, ch := range d.nodes[cur].children {
			visit(ch)
		}
	}
	visit(id)
	return out
}

// Walk visits a page's tree in pre-order. Returning false from fn skips the children
// of the visited component.
func (d *Document) Walk(pageID string, fn func(c Component, parent string, depth int) bool) {
	p := d.pageNode(pageID)
	if p == nil {
		return
	}
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		n := d.nodes[id]
		if !fn(n.comp.clone(), n.parent, depth) {
			return
		}
		for _, ch := range n.children {
			visit(ch, depth+1)
		}
	}
	for _, r := range p.roots {
		visit(r, 0)
	}
}

// InsertRoot appends c to the page's root list.
func (d *Document) InsertRoot(pageID string, c Component) error {
	p := d.pageNode(pageID)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownPage, pageID)
	}
	if err := d.checkNewID(c.ID); err != nil {
		return err
	}
	d.nodes[c.ID] = &node{comp: c.clone(), page: pageID}
	p.roots = append(p.roots, c.ID)
	return nil
}

// InsertChild appends c to the children of parentID. Whether the parent may host
// children is decided by the caller.
func (d *Document) InsertChild(parentID string, c Component) error {
	parent, ok := d.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, parentID)
	}
	if err := d.checkNewID(c.ID); err != nil {
		return err
	}
	d.nodes[c.ID] = &node{comp: c.clone(), page: parent.page, parent: parentID}
	parent.children = append(parent.children, c.ID)
	return nil
}

func (d *Document) checkNewID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty component id", ErrDuplicateID)
	}
	if _, exists := d.nodes[id]; exists {
		return fmt.Errorf("%w: component %q", ErrDuplicateID, id)
	}
	return nil
}

// Detach removes the component and its subtree, returning the removed ids.
func (d *Document) Detach(id string) []string {
	n, ok := d.nodes[id]
	if !ok {
		return nil
	}
	removed := d.Subtree(id)
	d.unlink(id, n)
	d.dropSubtree(id)
	return removed
}

func (d *Document) unlink(id string, n *node) {
	if n.parent != "" {
		parent := d.nodes[n.parent]
		parent.children = without(parent.children, id)
		return
	}
	if p := d.pageNode(n.page); p != nil {
		p.roots = without(p.roots, id)
	}
}

func (d *Document) dropSubtree(id string) {
	n, ok := d.nodes[id]
	if !ok {
		return
	}
	for _, ch := range n.children {
		d.dropSubtree(ch)
	}
	delete(d.nodes, id)
}

// Reparent moves id under newParent, or to the end of its page's root list when
// newParent is "". Moving a component into itself or one of its descendants fails
// with ErrCycle and leaves the tree unchanged.
func (d *Document) Reparent(id, newParent string) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	if newParent != "" {
		target, ok := d.nodes[newParent]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownComponent, newParent)
		}
		if target.page != n.page {
			return ErrCrossPage
		}
		if d.IsAncestor(id, newParent) {
			return fmt.Errorf("%w: %q into %q", ErrCycle, id, newParent)
		}
	}
	if n.parent == newParent {
		return nil
	}
	d.unlink(id, n)
	n.parent = newParent
	if newParent == "" {
		p := d.pageNode(n.page)
		p.roots = append(p.roots, id)
		return nil
	}
	target := d.nodes[newParent]
	target.children = append(target.children, id)
	return nil
}

// Clone returns a deep copy sharing no mutable state with d.
func (d *Document) Clone() *Document {
	out := &Document{
		pages:  make([]*pageNode, 0, len(d.pages)),
		active: d.active,
		nodes:  make(map[string]*node, len(d.nodes)),
	}
	for _, p := range d.pages {
		out.pages = append(out.pages, &pageNode{page: p.page, roots: append([]string(nil), p.roots...)})
	}
	for id, n := range d.nodes {
		out.nodes[id] = &node{
			comp:     n.comp.clone(),
			page:     n.page,
			parent:   n.parent,
			children: append([]string(nil), n.children...),
		}
	}
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
