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
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hrdesk/internal/canvas"
	"hrdesk/internal/vector"
	"hrdesk/internal/widget"
)

func sampleScene() canvas.Scene {
	node := func(id, typ string, r vector.Rect, v widget.View, children ...canvas.Node) canvas.Node {
		return canvas.Node{
			ID: id, Type: typ, Rect: r, View: v, Children: children,
			Header:  vector.R(r.X, r.Y, r.W, canvas.HeaderHeight),
			Content: vector.R(r.X, r.Y+canvas.HeaderHeight, r.W, r.H-canvas.HeaderHeight),
		}
	}
	return canvas.Scene{
		PageID:     "p1",
		PageName:   "Main Page",
		Background: "#f0f0f0",
		Grid:       canvas.Grid{Enabled: true, Size: 20},
		Nodes: []canvas.Node{
			node("d", widget.DashboardTag, vector.R(40, 40, 600, 300), widget.View{Title: "Recruiting overview", Lines: []string{"Open vacancies: 3"}}),
			node("c", widget.CardTag, vector.R(700, 40, 300, 300), widget.View{Title: "Card"},
				node("x", "legacy", vector.R(710, 82, 200, 100), widget.View{Title: "Unknown widget", Placeholder: true, Lines: []string{`Type "legacy" <is> not supported`}})),
		},
	}
}

func TestExtentCoversComponents(t *testing.T) {
	ext := Extent(sampleScene())
	if ext.W != 1040 || ext.H != 600 {
		t.Fatalf("extent = %vx%v, want 1040x600", ext.W, ext.H)
	}
	sc := sampleScene()
	sc.Size = vector.R(0, 0, 1200, 900)
	if ext := Extent(sc); ext.W != 1200 || ext.H != 900 {
		t.Fatalf("extent with size = %vx%v", ext.W, ext.H)
	}
}

func TestParseHex(t *testing.T) {
	cases := map[string]color.RGBA{
		"#ffffff": {255, 255, 255, 255},
		"#102030": {0x10, 0x20, 0x30, 255},
		"#abc":    {0xaa, 0xbb, 0xcc, 255},
		"bogus":   {255, 255, 255, 255},
		"":        {255, 255, 255, 255},
	}
	for in, want := range cases {
		if got := ParseHex(in); got != want {
			t.Fatalf("ParseHex(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(sampleScene(), &buf, PDFOptions{Style: Style{IncludeGrid: true}}); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:8])
	}
}

func TestRenderImageDrawsFramesAndBackground(t *testing.T) {
	img := RenderImage(sampleScene(), PNGOptions{})
	if b := img.Bounds(); b.Dx() != 1040 || b.Dy() != 600 {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{0xf0, 0xf0, 0xf0, 255}) {
		t.Fatalf("background = %v", got)
	}
	st := Style{}.withDefaults()
	if got := img.RGBAAt(40, 200); got != st.Frame {
		t.Fatalf("frame pixel = %v, want %v", got, st.Frame)
	}
	if got := img.RGBAAt(710, 150); got != st.Placeholder {
		t.Fatalf("placeholder frame pixel = %v, want %v", got, st.Placeholder)
	}
	if got := img.RGBAAt(300, 300); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("content pixel = %v", got)
	}
}

func TestWritePNGScales(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(sampleScene(), &buf, PNGOptions{Scale: 0.5}); err != nil {
		t.Fatalf("write png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 520 || b.Dy() != 300 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestWriteSVGEscapesText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(sampleScene(), &buf, SVGOptions{Style: Style{IncludeGrid: true}}); err != nil {
		t.Fatalf("write svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`viewBox="0 0 1040 600"`,
		`<title>Main Page</title>`,
		`id="x" data-type="legacy"`,
		`stroke-dasharray="4 3"`,
		`&lt;is&gt;`,
		`pattern id="grid"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q", want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"pdf": FormatPDF, "PNG": FormatPNG, "out/page.svg": FormatSVG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
}

func TestBatchPresets(t *testing.T) {
	root := t.TempDir()
	scenes := []canvas.Scene{sampleScene(), sampleScene()}

	written, err := Batch(scenes, BatchOptions{Preset: PresetWeb, OutDir: filepath.Join(root, "web")})
	if err != nil {
		t.Fatalf("batch web: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("written = %v", written)
	}
	written, err = Batch(scenes[:1], BatchOptions{Preset: PresetPrint, OutDir: filepath.Join(root, "print")})
	if err != nil {
		t.Fatalf("batch print: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("written = %v", written)
	}
	for _, p := range []string{
		filepath.Join(root, "web", "png", "page-1.png"),
		filepath.Join(root, "web", "svg", "page-2.svg"),
		filepath.Join(root, "print", "pdf", "page-1.pdf"),
	} {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
	if _, err := Batch(nil, BatchOptions{}); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}
