/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/dashdata"
	"hrdesk/internal/document"
	"hrdesk/internal/store"
	"hrdesk/internal/vector"
	"hrdesk/internal/widget"
)

var origin = vector.Pt{X: 50, Y: 20}

func f(v float64) *float64 { return &v }

type countingListeners struct{ attached, detached int }

func (c *countingListeners) Attach() { c.attached++ }
func (c *countingListeners) Detach() { c.detached++ }

// fixture: page p1 with grid 10, a text "a" at (100,100) 200x100 and a card at
// (400,100) 300x300 holding a text "b" at (10,10) 100x60.
func newFixture(t *testing.T, opts Options) (*Surface, *store.Store) {
	t.Helper()
	n := 0
	reg := widget.Builtin()
	st := store.New(store.Options{
		Catalog: reg,
		NewID: func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		},
	})
	require.NoError(t, st.Load(document.Snapshot{
		ActivePageID: "p1",
		Pages: []document.PageData{{
			ID: "p1", Name: "Main Page", Background: "#ffffff", GridEnabled: true, GridSize: 10,
			Components: []document.ComponentData{
				{ID: "a", Type: widget.TextTag, X: 100, Y: 100, Width: f(200), Height: f(100), Props: map[string]any{"text": "hello"}},
				{ID: "card", Type: widget.CardTag, X: 400, Y: 100, Width: f(300), Height: f(300), Props: map[string]any{},
					Children: []document.ComponentData{
						{ID: "b", Type: widget.TextTag, X: 10, Y: 10, Width: f(100), Height: f(60), Props: map[string]any{}},
					}},
			},
		}},
	}))
	s := New(st, reg, opts)
	t.Cleanup(s.Close)
	s.SetBounds(vector.R(origin.X, origin.Y, 1000, 800))
	return s, st
}

// at converts canvas-local coordinates to a viewport event.
func at(x, y float64) PointerEvent {
	return PointerEvent{Pos: vector.Pt{X: x, Y: y}.Add(origin), Button: ButtonLeft}
}

func pos(t *testing.T, st *store.Store, id string) vector.Pt {
	t.Helper()
	c, ok := st.ComponentByID(id)
	require.True(t, ok, "component %s", id)
	return vector.Pt{X: c.X, Y: c.Y}
}

func parentOf(st *store.Store, id string) string {
	p, _ := st.Document().ParentOf(id)
	return p
}

func TestSnapRoundsToGrid(t *testing.T) {
	g := Grid{Enabled: true, Size: 10}
	assert.Equal(t, vector.Pt{X: 10, Y: 30}, Snap(vector.Pt{X: 14, Y: 27}, g))
	assert.Equal(t, vector.Pt{X: 20, Y: 20}, Snap(vector.Pt{X: 15, Y: 24.9}, g))
	assert.Equal(t, vector.Pt{X: 0, Y: 0}, Snap(vector.Pt{X: -4, Y: 4}, g))
	assert.Equal(t, vector.Pt{X: 14, Y: 27}, Snap(vector.Pt{X: 14, Y: 27}, Grid{Enabled: false, Size: 10}))
	assert.Equal(t, vector.Pt{X: 14, Y: 27}, Snap(vector.Pt{X: 14, Y: 27}, Grid{Enabled: true}))
}

func TestToLocalSubtractsBoundsOrigin(t *testing.T) {
	s, _ := newFixture(t, Options{})
	assert.Equal(t, vector.Pt{X: 10, Y: 5}, s.ToLocal(vector.Pt{X: 60, Y: 25}))
}

func TestRenderLaysOutNestedTree(t *testing.T) {
	s, st := newFixture(t, Options{})
	st.Select("b")
	sc := s.Render()
	assert.Equal(t, "p1", sc.PageID)
	assert.Equal(t, Grid{Enabled: true, Size: 10}, sc.Grid)
	require.Len(t, sc.Nodes, 2)

	card := sc.Nodes[1]
	assert.True(t, card.Container)
	assert.Equal(t, vector.R(400, 100, 300, 32), card.Header)
	assert.Equal(t, vector.R(400, 132, 300, 268), card.Content)
	require.Len(t, card.Children, 1)
	b := card.Children[0]
	assert.Equal(t, vector.R(410, 142, 100, 60), b.Rect)
	assert.Equal(t, "card", b.ParentID)
	assert.Equal(t, 1, b.Depth)
	assert.True(t, b.Selected)
	assert.Nil(t, sc.Ghost)

	require.Len(t, card.Controls, 1)
	assert.Equal(t, widget.ActionClose, card.Controls[0].Action)
	assert.Equal(t, vector.R(672, 104, 24, 24), card.Controls[0].Rect)
}

func TestDragCommitsSnappedPosition(t *testing.T) {
	l := &countingListeners{}
	s, st := newFixture(t, Options{Listeners: l})

	require.True(t, s.PointerDown(at(110, 110)))
	assert.Equal(t, 1, l.attached)
	assert.True(t, s.State().Dragging)

	// grab offset (10,10): top-left lands on raw (14,27)
	s.PointerMove(at(24, 37))
	assert.Equal(t, vector.R(10, 30, 200, 100), s.State().Ghost)
	sc := s.Render()
	require.NotNil(t, sc.Ghost)
	assert.True(t, sc.Nodes[0].Hidden)
	assert.Equal(t, vector.Pt{X: 100, Y: 100}, pos(t, st, "a"), "nothing committed while dragging")

	s.PointerUp(at(24, 37))
	assert.False(t, s.State().Dragging)
	assert.Equal(t, 1, l.detached)
	assert.Equal(t, vector.Pt{X: 10, Y: 30}, pos(t, st, "a"))
	assert.Equal(t, "", parentOf(st, "a"))
	assert.True(t, st.CanUndo())
}

func TestDragReleasedOutsideBoundsIsDiscarded(t *testing.T) {
	l := &countingListeners{}
	s, st := newFixture(t, Options{Listeners: l})
	before := st.Snapshot()
	hist := st.HistoryLen()

	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(300, 300))
	s.PointerUp(at(1500, 900))

	assert.Equal(t, before, st.Snapshot())
	assert.Equal(t, hist, st.HistoryLen())
	assert.Equal(t, 1, l.detached)
	assert.False(t, s.State().Dragging)
}

func TestMoveOutsideBoundsKeepsGhost(t *testing.T) {
	s, _ := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(60, 60))
	ghost := s.State().Ghost
	s.PointerMove(at(-30, 40))
	assert.Equal(t, ghost, s.State().Ghost)
}

func TestDragStartsOnlyFromHeader(t *testing.T) {
	s, _ := newFixture(t, Options{})

	assert.False(t, s.PointerDown(at(110, 150)), "content area")
	assert.False(t, s.PointerDown(at(280, 115)), "close control")
	assert.False(t, s.PointerDown(at(20, 20)), "background")
	right := at(110, 110)
	right.Button = ButtonRight
	assert.False(t, s.PointerDown(right), "right button")
	assert.False(t, s.State().Dragging)
}

func TestDragIsNotReentrant(t *testing.T) {
	l := &countingListeners{}
	s, _ := newFixture(t, Options{Listeners: l})
	require.True(t, s.PointerDown(at(110, 110)))
	assert.False(t, s.PointerDown(at(420, 110)))
	assert.Equal(t, "a", s.State().ComponentID)
	assert.Equal(t, 1, l.attached)
}

func TestInputFocusSuspendsDrag(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(60, 60))
	ghost := s.State().Ghost

	s.SetInputFocus(true)
	s.PointerMove(at(500, 500))
	assert.Equal(t, ghost, s.State().Ghost)
	s.PointerUp(at(500, 500))
	assert.Equal(t, vector.Pt{X: 100, Y: 100}, pos(t, st, "a"))
}

func TestDragIntoContainerReparents(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(500, 250))
	s.PointerUp(at(500, 250))

	assert.Equal(t, "card", parentOf(st, "a"))
	// (490,240) relative to the card content origin (400,132), snapped
	assert.Equal(t, vector.Pt{X: 90, Y: 110}, pos(t, st, "a"))
}

func TestNestedDragOutMovesToRoot(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(420, 150)))
	s.PointerMove(at(820, 520))
	s.PointerUp(at(820, 520))

	assert.Equal(t, "", parentOf(st, "b"))
	assert.Equal(t, vector.Pt{X: 810, Y: 510}, pos(t, st, "b"))
}

func TestNestedDragWithinContainerMoves(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(420, 150)))
	s.PointerMove(at(520, 250))
	s.PointerUp(at(520, 250))

	assert.Equal(t, "card", parentOf(st, "b"))
	// top-left (510,242) relative to (400,132)
	assert.Equal(t, vector.Pt{X: 110, Y: 110}, pos(t, st, "b"))
}

func TestContainerCannotBeDroppedIntoItsOwnChild(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(420, 110)))
	s.PointerMove(at(450, 160))
	s.PointerUp(at(450, 160))

	assert.Equal(t, "", parentOf(st, "card"))
	assert.Equal(t, "card", parentOf(st, "b"))
	assert.Equal(t, vector.Pt{X: 430, Y: 150}, pos(t, st, "card"))
}

func TestReleaseAtStartIsNoOp(t *testing.T) {
	s, st := newFixture(t, Options{})
	hist := st.HistoryLen()
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerUp(at(110, 110))
	assert.Equal(t, hist, st.HistoryLen())
}

func TestReportedSizeSizesGhost(t *testing.T) {
	s, _ := newFixture(t, Options{})
	s.ReportSize("a", 250, 120)
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(60, 60))
	g := s.State().Ghost
	assert.Equal(t, 250.0, g.W)
	assert.Equal(t, 120.0, g.H)
}

func TestGuidesShownNearSiblingEdges(t *testing.T) {
	s, _ := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	// ghost top-left at (400, 500): left edge aligned with the card
	s.PointerMove(at(410, 510))
	sc := s.Render()
	assert.NotEmpty(t, sc.Guides)
	require.NotNil(t, sc.Ghost)
	assert.Equal(t, 400.0, sc.Ghost.X, "guides do not move the ghost")
}

func TestDraggedComponentRemovedEndsDrag(t *testing.T) {
	l := &countingListeners{}
	s, st := newFixture(t, Options{Listeners: l})
	require.True(t, s.PointerDown(at(110, 110)))
	st.DeleteComponent("p1", "a")
	assert.False(t, s.State().Dragging)
	assert.Equal(t, 1, l.detached)
}

func TestClickSelectsAndBackgroundClears(t *testing.T) {
	s, st := newFixture(t, Options{})
	s.Click(at(150, 160))
	assert.Equal(t, "a", st.SelectedID())
	s.Click(at(450, 170))
	assert.Equal(t, "b", st.SelectedID(), "topmost nested child wins")
	s.Click(at(20, 700))
	assert.Equal(t, "", st.SelectedID())
}

func TestClickAfterDragIsSwallowed(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(24, 37))
	s.PointerUp(at(24, 37))
	st.ClearSelection()

	s.Click(at(20, 40))
	assert.Equal(t, "", st.SelectedID())
	s.Click(at(20, 40))
	assert.Equal(t, "a", st.SelectedID())
}

func TestClickAfterEndedGestureSelects(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(24, 37))
	s.PointerUp(at(24, 37))
	s.EndGesture()
	st.ClearSelection()

	s.Click(at(420, 150))
	assert.Equal(t, "b", st.SelectedID())
}

func TestNextPressExpiresSwallowedClick(t *testing.T) {
	s, st := newFixture(t, Options{})
	require.True(t, s.PointerDown(at(110, 110)))
	s.PointerMove(at(24, 37))
	s.PointerUp(at(24, 37))
	st.ClearSelection()

	// press on the empty background starts no drag
	assert.False(t, s.PointerDown(at(900, 700)))
	s.Click(at(420, 150))
	assert.Equal(t, "b", st.SelectedID())
}

func TestCloseControlDeletes(t *testing.T) {
	s, st := newFixture(t, Options{})
	s.Click(at(280, 115))
	_, ok := st.ComponentByID("a")
	assert.False(t, ok)
}

func TestUnknownTypeRendersPlaceholderWithDelete(t *testing.T) {
	s, st := newFixture(t, Options{})
	id := st.AddComponent("p1", store.Draft{Type: "legacy-widget", X: 100, Y: 500, Width: 200, Height: 100})
	require.NotEmpty(t, id)

	sc := s.Render()
	n, ok := sc.Find(id)
	require.True(t, ok)
	assert.True(t, n.View.Placeholder)
	require.Len(t, n.Controls, 1)
	assert.Equal(t, widget.ActionDelete, n.Controls[0].Action)
	require.Len(t, sc.Nodes, 3, "the rest of the page still renders")

	c := n.Controls[0].Rect.Center()
	s.Click(at(c.X, c.Y))
	_, ok = st.ComponentByID(id)
	assert.False(t, ok)
}

func TestDropAddsSnappedRootComponent(t *testing.T) {
	s, st := newFixture(t, Options{})
	raw, err := EncodePayload(widget.TextTag, map[string]any{"text": "Hi"})
	require.NoError(t, err)

	id := s.Drop(vector.Pt{X: 14, Y: 27}.Add(origin), raw)
	require.NotEmpty(t, id)
	c, ok := st.ComponentByID(id)
	require.True(t, ok)
	assert.Equal(t, 10.0, c.X)
	assert.Equal(t, 30.0, c.Y)
	assert.Equal(t, 240.0, c.Width)
	assert.Equal(t, 80.0, c.Height)
	assert.Equal(t, "Hi", c.Props.(widget.TextProps).Text)
	assert.Equal(t, "", parentOf(st, id))
	assert.Equal(t, id, st.SelectedID())
}

func TestDropOverContainerAddsChild(t *testing.T) {
	s, st := newFixture(t, Options{})
	raw, err := EncodePayload(widget.ChartTag, nil)
	require.NoError(t, err)

	id := s.Drop(vector.Pt{X: 600, Y: 300}.Add(origin), raw)
	require.NotEmpty(t, id)
	assert.Equal(t, "card", parentOf(st, id))
	assert.Equal(t, vector.Pt{X: 200, Y: 170}, pos(t, st, id))
}

func TestDropIgnoresMalformedAndMovePayloads(t *testing.T) {
	s, st := newFixture(t, Options{})
	n := st.Document().Len()
	for _, raw := range []string{``, `{`, `[]`, `{"type": 3}`, `{"defaultProps": {}}`, `{"type": "move", "id": "a"}`} {
		assert.Empty(t, s.Drop(vector.Pt{X: 100, Y: 600}, []byte(raw)), raw)
	}
	assert.Equal(t, n, st.Document().Len())
}

func TestDropOutsideBoundsIgnored(t *testing.T) {
	s, _ := newFixture(t, Options{})
	raw, _ := EncodePayload(widget.TextTag, nil)
	assert.Empty(t, s.Drop(vector.Pt{X: 10, Y: 10}, raw))
}

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSource) Summary(context.Context) (dashdata.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return dashdata.Summary{OpenVacancies: 7}, nil
}

func (c *countingSource) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestDashboardDataFetchedOnceAndRefreshedOnDemand(t *testing.T) {
	src := &countingSource{}
	hook := dashdata.NewHook(src)
	s, st := newFixture(t, Options{Hook: hook})
	st.AddComponent("p1", store.Draft{Type: widget.DashboardTag, X: 0, Y: 420, Width: 600, Height: 300})
	st.AddComponent("p1", store.Draft{Type: widget.DashboardTag, X: 0, Y: 730, Width: 600, Height: 60})

	s.Render()
	s.Render()
	hook.Wait()
	assert.Equal(t, 1, src.count())

	sc := s.Render()
	var dash Node
	sc.Walk(func(n Node) bool {
		if n.Type == widget.DashboardTag {
			dash = n
			return false
		}
		return true
	})
	assert.Contains(t, dash.View.Lines, "Open vacancies: 7")

	require.Equal(t, widget.ActionRefresh, dash.Controls[0].Action)
	c := dash.Controls[0].Rect.Center()
	s.Click(at(c.X, c.Y))
	hook.Wait()
	assert.Equal(t, 2, src.count())
}

func TestRenderPageLaysOutInactivePage(t *testing.T) {
	s, st := newFixture(t, Options{})
	other := st.AddPage("Second")
	st.AddComponent(other, store.Draft{Type: widget.TextTag, X: 40, Y: 60, Width: 100, Height: 50})
	st.SetActivePage("p1")
	st.Select("a")

	sc, ok := s.RenderPage(other)
	require.True(t, ok)
	assert.Equal(t, "Second", sc.PageName)
	require.Len(t, sc.Nodes, 1)
	assert.Equal(t, vector.R(40, 60, 100, 50), sc.Nodes[0].Rect)
	assert.False(t, sc.Nodes[0].Selected)

	_, ok = s.RenderPage("missing")
	assert.False(t, ok)
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload([]byte(`{"type":"chart","defaultProps":{"kind":"bar"}}`))
	require.NoError(t, err)
	assert.Equal(t, "chart", p.Type)
	assert.Equal(t, "bar", p.DefaultProps["kind"])
	assert.False(t, p.IsMove())

	p, err = ParsePayload([]byte(`{"type":"move","id":"x"}`))
	require.NoError(t, err)
	assert.True(t, p.IsMove())

	for _, raw := range []string{``, `nope`, `{"type":""}`, `{"type":"chart","defaultProps":[1]}`} {
		_, err := ParsePayload([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedPayload, raw)
	}
}
