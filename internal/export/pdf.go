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
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"hrdesk/internal/canvas"
	"hrdesk/internal/version"
)

// PDFOptions controls PDF export. Units are canvas units mapped 1:1 to points.
type PDFOptions struct {
	Style Style
	Title string
}

// WritePDF renders the scene as a one page PDF wireframe.
func WritePDF(sc canvas.Scene, w io.Writer, opt PDFOptions) error {
	st := opt.Style.withDefaults()
	ext := Extent(sc)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: ext.W, Ht: ext.H},
	})
	title := opt.Title
	if title == "" {
		title = sc.PageName
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("hrdesk "+version.String(), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	setFillColor(pdf, ParseHex(sc.Background))
	pdf.Rect(0, 0, ext.W, ext.H, "F")

	if st.IncludeGrid && sc.Grid.Enabled && sc.Grid.Size > 0 {
		setDrawColor(pdf, st.Grid)
		pdf.SetLineWidth(0.2)
		step := float64(sc.Grid.Size)
		for x := step; x < ext.W; x += step {
			pdf.Line(x, 0, x, ext.H)
		}
		for y := step; y < ext.H; y += step {
			pdf.Line(0, y, ext.W, y)
		}
	}

	sc.Walk(func(n canvas.Node) bool {
		drawNodePDF(pdf, tr, n, st)
		return true
	})

	if pdf.Err() {
		return fmt.Errorf("render pdf: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawNodePDF(pdf *gofpdf.Fpdf, tr func(string) string, n canvas.Node, st Style) {
	r := n.Rect
	frame := st.Frame
	if n.View.Placeholder {
		frame = st.Placeholder
		pdf.SetDashPattern([]float64{4, 3}, 0)
	}
	setFillColor(pdf, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	setDrawColor(pdf, frame)
	pdf.SetLineWidth(st.StrokeWidth)
	pdf.Rect(r.X, r.Y, r.W, r.H, "FD")
	pdf.SetDashPattern(nil, 0)

	h := n.Header
	setFillColor(pdf, st.Header)
	pdf.Rect(h.X, h.Y, h.W, h.H, "FD")
	for _, c := range n.Controls {
		pdf.Rect(c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H, "D")
	}

	title, lines := nodeText(n)
	setTextColor(pdf, st.Text)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(h.X+textPadding, h.Y+h.H/2+4, tr(title))
	pdf.SetFont("Helvetica", "", 10)
	y := n.Content.Y + textPadding + 10
	for _, l := range lines[:visibleLines(n, len(lines))] {
		pdf.Text(n.Content.X+textPadding, y, tr(l))
		y += lineHeight
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
