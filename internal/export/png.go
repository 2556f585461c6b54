/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"hrdesk/internal/canvas"
	"hrdesk/internal/vector"
)

// PNGOptions controls PNG export. Scale multiplies canvas units into pixels; 0 means 1.
type PNGOptions struct {
	Style Style
	Scale float64
}

// RenderImage rasterizes the scene.
func RenderImage(sc canvas.Scene, opt PNGOptions) *image.RGBA {
	st := opt.Style.withDefaults()
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	ext := Extent(sc)
	img := image.NewRGBA(image.Rect(0, 0, px(ext.W, scale), px(ext.H, scale)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: ParseHex(sc.Background)}, image.Point{}, draw.Src)

	if st.IncludeGrid && sc.Grid.Enabled && sc.Grid.Size > 0 {
		step := float64(sc.Grid.Size)
		for y := step; y < ext.H; y += step {
			for x := step; x < ext.W; x += step {
				img.SetRGBA(px(x, scale), px(y, scale), st.Grid)
			}
		}
	}

	sc.Walk(func(n canvas.Node) bool {
		drawNodePNG(img, n, st, scale)
		return true
	})
	return img
}

// WritePNG encodes the rasterized scene to w.
func WritePNG(sc canvas.Scene, w io.Writer, opt PNGOptions) error {
	if err := png.Encode(w, RenderImage(sc, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func px(v, scale float64) int { return int(math.Round(v * scale)) }

func pxRect(r vector.Rect, scale float64) image.Rectangle {
	return image.Rect(px(r.X, scale), px(r.Y, scale), px(r.X+r.W, scale), px(r.Y+r.H, scale))
}

func drawNodePNG(img *image.RGBA, n canvas.Node, st Style, scale float64) {
	r := pxRect(n.Rect, scale)
	fillRect(img, r, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	fillRect(img, pxRect(n.Header, scale), st.Header)
	frame := st.Frame
	if n.View.Placeholder {
		frame = st.Placeholder
	}
	strokeRect(img, r, frame)
	for _, c := range n.Controls {
		strokeRect(img, pxRect(c.Rect, scale), st.Frame)
	}

	title, lines := nodeText(n)
	clip := img.SubImage(r).(*image.RGBA)
	d := &font.Drawer{Dst: clip, Src: image.NewUniform(st.Text), Face: basicfont.Face7x13}
	h := pxRect(n.Header, scale)
	d.Dot = fixed.P(h.Min.X+textPadding, h.Min.Y+(h.Dy()+9)/2)
	d.DrawString(title)
	y := px(n.Content.Y, scale) + textPadding + 10
	for _, l := range lines[:visibleLines(n, len(lines))] {
		d.Dot = fixed.P(r.Min.X+textPadding, y)
		d.DrawString(l)
		y += px(lineHeight, scale)
	}
}

// strokeRect draws a 1px border just inside r.
func strokeRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, col)
		img.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, col)
		img.SetRGBA(r.Max.X-1, y, col)
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}
