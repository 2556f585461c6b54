/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"

	"hrdesk/internal/canvas"
)

// SVGOptions controls SVG export. The viewBox uses canvas units.
type SVGOptions struct {
	Style Style
}

// WriteSVG renders the scene as an SVG wireframe.
func WriteSVG(sc canvas.Scene, w io.Writer, opt SVGOptions) error {
	st := opt.Style.withDefaults()
	ext := Extent(sc)

	var buf bytes.Buffer
	wf := func(format string, args ...any) { fmt.Fprintf(&buf, format, args...) }

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", ext.W, ext.H, ext.W, ext.H)
	if sc.PageName != "" {
		wf("  <title>%s</title>\n", esc(sc.PageName))
	}
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", ext.W, ext.H, svgColor(ParseHex(sc.Background)))

	if st.IncludeGrid && sc.Grid.Enabled && sc.Grid.Size > 0 {
		g := sc.Grid.Size
		wf("  <defs><pattern id=\"grid\" width=\"%d\" height=\"%d\" patternUnits=\"userSpaceOnUse\">", g, g)
		wf("<path d=\"M %d 0 L 0 0 0 %d\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/></pattern></defs>\n", g, g, svgColor(st.Grid))
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"url(#grid)\"/>\n", ext.W, ext.H)
	}

	sc.Walk(func(n canvas.Node) bool {
		r, h := n.Rect, n.Header
		frame := svgColor(st.Frame)
		dash := ""
		if n.View.Placeholder {
			frame = svgColor(st.Placeholder)
			dash = " stroke-dasharray=\"4 3\""
		}
		wf("  <g id=\"%s\" data-type=\"%s\">\n", esc(n.ID), esc(n.Type))
		wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\" stroke=\"%s\" stroke-width=\"%g\"%s/>\n", r.X, r.Y, r.W, r.H, frame, st.StrokeWidth, dash)
		wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n", h.X, h.Y, h.W, h.H, svgColor(st.Header), frame, st.StrokeWidth)
		for _, c := range n.Controls {
			wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" data-action=\"%s\"/>\n", c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H, svgColor(st.Frame), esc(string(c.Action)))
		}
		title, lines := nodeText(n)
		tc := svgColor(st.Text)
		wf("    <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"11\" font-weight=\"bold\" fill=\"%s\">%s</text>\n", h.X+textPadding, h.Y+h.H/2+4, tc, esc(title))
		y := n.Content.Y + textPadding + 10
		for _, l := range lines[:visibleLines(n, len(lines))] {
			wf("    <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"10\" fill=\"%s\">%s</text>\n", n.Content.X+textPadding, y, tc, esc(l))
			y += lineHeight
		}
		wf("  </g>\n")
		return true
	})
	wf("</svg>\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func esc(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
