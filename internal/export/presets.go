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
	"os"
	"path/filepath"
	"strings"

	"hrdesk/internal/canvas"
)

// Format is an output file format.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimPrefix(ext, ".")
	}
	switch f := Format(s); f {
	case FormatPDF, FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls exporting several pages in several formats.
//
// Files are written to <OutDir>/<format>/page-<n>.<format>, n counting from 1 in the
// order the scenes are given.
type BatchOptions struct {
	Preset      PresetName
	Formats     []Format // empty means preset defaults
	IncludeGrid *bool    // when set, overrides the preset's default
	Scale       float64  // raster scale; 0 means the preset default
	OutDir      string
}

// File writes one scene to path in format f.
func File(sc canvas.Scene, path string, f Format, st Style, scale float64) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", f, cerr)
		}
	}()
	switch f {
	case FormatPDF:
		return WritePDF(sc, out, PDFOptions{Style: st})
	case FormatPNG:
		return WritePNG(sc, out, PNGOptions{Style: st, Scale: scale})
	case FormatSVG:
		return WriteSVG(sc, out, SVGOptions{Style: st})
	}
	return fmt.Errorf("unknown format: %q", f)
}

// Batch exports every scene according to the preset and returns the written paths.
func Batch(scenes []canvas.Scene, opt BatchOptions) ([]string, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	st := Style{IncludeGrid: presetIncludeGrid(opt.Preset)}
	if opt.IncludeGrid != nil {
		st.IncludeGrid = *opt.IncludeGrid
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = presetScale(opt.Preset)
	}
	base := opt.OutDir
	if base == "" {
		base = string(opt.Preset)
	}

	var written []string
	for _, f := range formats {
		for i, sc := range scenes {
			path := filepath.Join(base, string(f), fmt.Sprintf("page-%d.%s", i+1, f))
			if err := File(sc, path, f, st, scale); err != nil {
				return written, fmt.Errorf("%s page %d: %w", f, i+1, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetWeb:
		return []Format{FormatPNG, FormatSVG}
	case PresetPrint:
		return []Format{FormatPDF}
	default:
		return []Format{FormatPDF}
	}
}

func presetIncludeGrid(p PresetName) bool {
	return p != PresetWeb && p != PresetPrint
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}
