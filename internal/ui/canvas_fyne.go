//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	board "hrdesk/internal/canvas"
	"hrdesk/internal/export"
	"hrdesk/internal/vector"
	hwidget "hrdesk/internal/widget"
)

var (
	colFrame       = color.RGBA{R: 60, G: 60, B: 66, A: 255}
	colSelected    = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	colHeader      = color.RGBA{R: 232, G: 234, B: 238, A: 255}
	colBody        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colText        = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	colMuted       = color.RGBA{R: 110, G: 110, B: 120, A: 255}
	colError       = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	colPlaceholder = color.RGBA{R: 200, G: 120, B: 0, A: 255}
	colGrid        = color.RGBA{R: 0, G: 0, B: 0, A: 18}
	colGhost       = color.RGBA{R: 0, G: 170, B: 255, A: 50}
	colGuide       = color.RGBA{R: 255, G: 0, B: 140, A: 220}
)

const (
	lineStep   = 16
	textInset  = 6
	minGridPx  = 4
	defaultW   = 1000
	defaultH   = 700
	glyphClose = "✕"
	glyphRef   = "↻"
)

// PageCanvas hosts a canvas surface inside a Fyne window. Pointer input is translated
// into surface events and every refresh redraws the surface's scene.
type PageCanvas struct {
	widget.BaseWidget

	surface *board.Surface
	// focused reports whether a text input holds keyboard focus.
	focused func() bool

	// Palette payload placed by the next tap on the canvas.
	armed []byte
	// OnPlaced is called with the id of a component created from an armed payload.
	OnPlaced func(id string)

	attached bool
	last     fyne.Position
}

// NewPageCanvas returns an unbound canvas. Bind attaches the surface.
func NewPageCanvas() *PageCanvas {
	pc := &PageCanvas{}
	pc.ExtendBaseWidget(pc)
	return pc
}

// Bind sets the surface this widget drives and the focus check.
func (p *PageCanvas) Bind(s *board.Surface, focused func() bool) {
	p.surface = s
	p.focused = focused
	if sz := p.Size(); sz.Width > 0 {
		s.SetBounds(vector.R(0, 0, float64(sz.Width), float64(sz.Height)))
	}
}

// Attach and Detach implement canvas.Listeners: while attached, hover movement is
// forwarded so a drag follows the pointer even between drag events.
func (p *PageCanvas) Attach() { p.attached = true }
func (p *PageCanvas) Detach() { p.attached = false }

// Arm stores a palette payload that the next tap drops.
func (p *PageCanvas) Arm(payload []byte) { p.armed = payload }

// Armed reports whether a palette payload is waiting for a tap.
func (p *PageCanvas) Armed() bool { return p.armed != nil }

func (p *PageCanvas) Resize(size fyne.Size) {
	p.BaseWidget.Resize(size)
	if p.surface != nil {
		p.surface.SetBounds(vector.R(0, 0, float64(size.Width), float64(size.Height)))
	}
}

func (p *PageCanvas) syncFocus() {
	if p.focused != nil {
		p.surface.SetInputFocus(p.focused())
	}
}

func toPt(pos fyne.Position) vector.Pt { return vector.Pt{X: float64(pos.X), Y: float64(pos.Y)} }

func buttonOf(b desktop.MouseButton) board.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return board.ButtonRight
	case desktop.MouseButtonTertiary:
		return board.ButtonMiddle
	default:
		return board.ButtonLeft
	}
}

func (p *PageCanvas) MouseDown(e *desktop.MouseEvent) {
	if p.surface == nil || p.armed != nil {
		return
	}
	p.syncFocus()
	p.last = e.Position
	if p.surface.PointerDown(board.PointerEvent{Pos: toPt(e.Position), Button: buttonOf(e.Button)}) {
		p.Refresh()
	}
}

// MouseUp commits a drag. Fyne delivers no Tapped after a drag, so the gesture ends
// here.
func (p *PageCanvas) MouseUp(e *desktop.MouseEvent) {
	if p.surface == nil || !p.surface.State().Dragging {
		return
	}
	p.syncFocus()
	p.surface.PointerUp(board.PointerEvent{Pos: toPt(e.Position), Button: buttonOf(e.Button)})
	p.surface.EndGesture()
	p.Refresh()
}

func (p *PageCanvas) Dragged(e *fyne.DragEvent) {
	p.move(e.Position)
}

// DragEnd commits at the last known position when the release was not delivered as
// a mouse up.
func (p *PageCanvas) DragEnd() {
	if p.surface == nil || !p.surface.State().Dragging {
		return
	}
	p.syncFocus()
	p.surface.PointerUp(board.PointerEvent{Pos: toPt(p.last), Button: board.ButtonLeft})
	p.surface.EndGesture()
	p.Refresh()
}

func (p *PageCanvas) MouseIn(e *desktop.MouseEvent) {}

func (p *PageCanvas) MouseMoved(e *desktop.MouseEvent) {
	if p.attached {
		p.move(e.Position)
	}
}

func (p *PageCanvas) MouseOut() {}

func (p *PageCanvas) move(pos fyne.Position) {
	if p.surface == nil || !p.surface.State().Dragging {
		return
	}
	p.syncFocus()
	p.last = pos
	p.surface.PointerMove(board.PointerEvent{Pos: toPt(pos), Button: board.ButtonLeft})
	p.Refresh()
}

// Tapped drops an armed palette payload, otherwise it clicks.
func (p *PageCanvas) Tapped(e *fyne.PointEvent) {
	if p.surface == nil {
		return
	}
	if p.armed != nil {
		payload := p.armed
		p.armed = nil
		if id := p.surface.Drop(toPt(e.Position), payload); id != "" && p.OnPlaced != nil {
			p.OnPlaced(id)
		}
		return
	}
	p.surface.Click(board.PointerEvent{Pos: toPt(e.Position), Button: board.ButtonLeft})
}

// TappedSecondary cancels a pending palette placement.
func (p *PageCanvas) TappedSecondary(*fyne.PointEvent) { p.armed = nil }

func (p *PageCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &pageCanvasRenderer{pc: p}
	r.objects = r.draw(p.Size())
	return r
}

// pageCanvasRenderer rebuilds its objects from the surface scene on every refresh.
type pageCanvasRenderer struct {
	pc      *PageCanvas
	objects []fyne.CanvasObject
}

func (r *pageCanvasRenderer) Destroy()                     {}
func (r *pageCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *pageCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(400, 300) }
func (r *pageCanvasRenderer) Layout(size fyne.Size)        { r.objects = r.draw(size) }
func (r *pageCanvasRenderer) Refresh() {
	r.objects = r.draw(r.pc.Size())
	canvas.Refresh(r.pc)
}

func (r *pageCanvasRenderer) draw(size fyne.Size) []fyne.CanvasObject {
	if size.Width <= 0 || size.Height <= 0 {
		size = fyne.NewSize(defaultW, defaultH)
	}
	bg := canvas.NewRectangle(color.White)
	bg.Resize(size)
	objs := []fyne.CanvasObject{bg}
	if r.pc.surface == nil {
		return objs
	}
	sc := r.pc.surface.Render()
	bg.FillColor = export.ParseHex(sc.Background)

	if g := sc.Grid; g.Enabled && g.Size >= minGridPx {
		step := float32(g.Size)
		for x := step; x < size.Width; x += step {
			objs = append(objs, line(x, 0, x, size.Height, colGrid, 1))
		}
		for y := step; y < size.Height; y += step {
			objs = append(objs, line(0, y, size.Width, y, colGrid, 1))
		}
	}

	var visit func(ns []board.Node)
	visit = func(ns []board.Node) {
		for _, n := range ns {
			if n.Hidden {
				continue
			}
			objs = appendNode(objs, n)
			visit(n.Children)
		}
	}
	visit(sc.Nodes)

	if sc.Ghost != nil {
		objs = append(objs, rect(*sc.Ghost, colGhost, colSelected, 1))
	}
	for _, gl := range sc.Guides {
		objs = append(objs, line(float32(gl.From.X), float32(gl.From.Y), float32(gl.To.X), float32(gl.To.Y), colGuide, 1))
	}
	return objs
}

func appendNode(objs []fyne.CanvasObject, n board.Node) []fyne.CanvasObject {
	stroke, width := colFrame, float32(1)
	if n.Selected {
		stroke, width = colSelected, 2
	}
	if n.View.Placeholder {
		stroke = colPlaceholder
	}
	objs = append(objs, rect(n.Rect, colBody, stroke, width))
	objs = append(objs, rect(n.Header, colHeader, color.Transparent, 0))

	title := canvas.NewText(n.View.Title, colText)
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 12
	title.Move(fyne.NewPos(float32(n.Header.X)+textInset, float32(n.Header.Y)+textInset))
	objs = append(objs, title)

	for _, c := range n.Controls {
		objs = append(objs, rect(c.Rect, colBody, colFrame, 1))
		glyph := glyphClose
		if c.Action == hwidget.ActionRefresh {
			glyph = glyphRef
		}
		t := canvas.NewText(glyph, colText)
		t.TextSize = 12
		t.Alignment = fyne.TextAlignCenter
		t.Move(fyne.NewPos(float32(c.Rect.X), float32(c.Rect.Y)+4))
		t.Resize(fyne.NewSize(float32(c.Rect.W), 16))
		objs = append(objs, t)
	}

	lines := make([]textLine, 0, len(n.View.Lines)+2)
	for _, s := range n.View.Lines {
		lines = append(lines, textLine{s, colText})
	}
	if n.View.Loading {
		lines = append(lines, textLine{"Loading…", colMuted})
	}
	if n.View.Err != "" {
		lines = append(lines, textLine{n.View.Err, colError})
	}
	y := float32(n.Content.Y) + textInset
	for _, l := range lines {
		if y+lineStep > float32(n.Content.Y+n.Content.H) {
			break
		}
		t := canvas.NewText(l.text, l.col)
		t.TextSize = 12
		t.Move(fyne.NewPos(float32(n.Content.X)+textInset, y))
		objs = append(objs, t)
		y += lineStep
	}
	return objs
}

type textLine struct {
	text string
	col  color.Color
}

func rect(r vector.Rect, fill, stroke color.Color, width float32) *canvas.Rectangle {
	cr := canvas.NewRectangle(fill)
	cr.StrokeColor = stroke
	cr.StrokeWidth = width
	cr.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	cr.Resize(fyne.NewSize(float32(r.W), float32(r.H)))
	return cr
}

func line(x1, y1, x2, y2 float32, col color.Color, width float32) *canvas.Line {
	l := canvas.NewLine(col)
	l.StrokeWidth = width
	l.Position1 = fyne.NewPos(x1, y1)
	l.Position2 = fyne.NewPos(x2, y2)
	return l
}
