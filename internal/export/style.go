/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders page wireframes from a laid out canvas scene.
package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hrdesk/internal/canvas"
	"hrdesk/internal/vector"
)

// Style controls colors and strokes shared by all formats. Zero values select defaults.
type Style struct {
	Frame       color.RGBA
	Header      color.RGBA
	Text        color.RGBA
	Placeholder color.RGBA
	Grid        color.RGBA
	StrokeWidth float64
	IncludeGrid bool
}

func (s Style) withDefaults() Style {
	if s.Frame == (color.RGBA{}) {
		s.Frame = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	}
	if s.Header == (color.RGBA{}) {
		s.Header = color.RGBA{R: 228, G: 232, B: 240, A: 255}
	}
	if s.Text == (color.RGBA{}) {
		s.Text = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	}
	if s.Placeholder == (color.RGBA{}) {
		s.Placeholder = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	}
	if s.Grid == (color.RGBA{}) {
		s.Grid = color.RGBA{R: 210, G: 210, B: 210, A: 255}
	}
	if s.StrokeWidth <= 0 {
		s.StrokeWidth = 1
	}
	return s
}

const (
	margin      = 40
	lineHeight  = 14
	textPadding = 6
	minWidth    = 800
	minHeight   = 600
)

// Extent returns the exported area of a scene: the canvas size when known, grown to
// cover every component plus a margin.
func Extent(sc canvas.Scene) vector.Rect {
	w, h := sc.Size.W, sc.Size.H
	if w <= 0 || h <= 0 {
		w, h = minWidth, minHeight
	}
	sc.Walk(func(n canvas.Node) bool {
		w = math.Max(w, n.Rect.X+n.Rect.W+margin)
		h = math.Max(h, n.Rect.Y+n.Rect.H+margin)
		return true
	})
	return vector.R(0, 0, math.Ceil(w), math.Ceil(h))
}

// ParseHex parses #rgb or #rrggbb. It falls back to white.
func ParseHex(s string) color.RGBA {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return white
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return white
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// nodeText lists the text drawn for a node: title then content lines.
func nodeText(n canvas.Node) (title string, lines []string) {
	title = n.View.Title
	if title == "" {
		title = n.Type
	}
	lines = append(lines, n.View.Lines...)
	if n.View.Loading {
		lines = append(lines, "Loading...")
	}
	if n.View.Err != "" {
		lines = append(lines, "Error: "+n.View.Err)
	}
	return title, lines
}

// visibleLines returns how many content lines fit into the node's content area.
func visibleLines(n canvas.Node, total int) int {
	fit := int((n.Content.H - textPadding) / lineHeight)
	if fit < 0 {
		fit = 0
	}
	if total < fit {
		return total
	}
	return fit
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}
