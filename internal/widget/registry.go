/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widget

import (
	"fmt"
	"sort"

	"hrdesk/internal/document"
)

// UnknownTag is the tag reported by the fallback widget.
const UnknownTag = "unknown"

// Built-in type tags.
const (
	DashboardTag  = "dashboard"
	VacanciesTag  = "vacancies"
	CandidatesTag = "candidates"
	InterviewsTag = "interviews"
	ChartTag      = "chart"
	CardTag       = "card"
	TextTag       = "text"
)

// PaletteEntry describes a type the palette can instantiate.
type PaletteEntry struct {
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	DefaultProps map[string]any `json:"defaultProps"`
}

// Registry is a static tag -> widget table. Lookups of unregistered tags resolve to
// the unknown placeholder. It implements document.PropsCodec.
type Registry struct {
	byTag   map[string]Widget
	order   []string
	unknown Widget
}

// NewRegistry returns an empty registry holding only the fallback widget.
func NewRegistry() *Registry {
	return &Registry{
		byTag:   map[string]Widget{},
		unknown: unknown{base{tag: UnknownTag, title: "Unknown", size: FallbackSize}},
	}
}

// Builtin returns a registry with every widget type shipped with the app.
func Builtin() *Registry {
	r := NewRegistry()
	for _, w := range []Widget{
		dashboard{base{tag: DashboardTag, title: "Dashboard", size: Size{W: 600, H: 300}}},
		list{base: base{tag: VacanciesTag, title: "Vacancies", size: Size{W: 360, H: 280}}, filter: "status=open"},
		list{base: base{tag: CandidatesTag, title: "Candidates", size: Size{W: 360, H: 280}}, filter: "stage=screening"},
		list{base: base{tag: InterviewsTag, title: "Interviews", size: Size{W: 360, H: 240}}, filter: "range=7d"},
		chart{base{tag: ChartTag, title: "Chart", size: Size{W: 400, H: 260}}},
		card{base{tag: CardTag, title: "Card", size: Size{W: 420, H: 320}}},
		text{base{tag: TextTag, title: "Text", size: Size{W: 240, H: 80}}},
	} {
		if err := r.Register(w); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds w. Tags are unique and the fallback tag is reserved.
func (r *Registry) Register(w Widget) error {
	tag := w.Tag()
	if tag == "" || tag == UnknownTag {
		return fmt.Errorf("widget: invalid tag %q", tag)
	}
	if _, dup := r.byTag[tag]; dup {
		return fmt.Errorf("widget: tag %q already registered", tag)
	}
	r.byTag[tag] = w
	r.order = append(r.order, tag)
	return nil
}

// Lookup returns the widget for tag; ok is false when the fallback was returned.
func (r *Registry) Lookup(tag string) (Widget, bool) {
	if w, ok := r.byTag[tag]; ok {
		return w, true
	}
	return r.unknown, false
}

func (r *Registry) Known(tag string) bool {
	_, ok := r.byTag[tag]
	return ok
}

// IsContainer reports whether components of tag may host children.
func (r *Registry) IsContainer(tag string) bool {
	w, ok := r.byTag[tag]
	return ok && w.Container()
}

// SizeOf returns the effective size of c, filling unset axes from the widget default.
func (r *Registry) SizeOf(c document.Component) Size {
	w, _ := r.Lookup(c.Type)
	s := w.DefaultSize()
	if s.W <= 0 || s.H <= 0 {
		s = FallbackSize
	}
	if c.Width > 0 {
		s.W = c.Width
	}
	if c.Height > 0 {
		s.H = c.Height
	}
	return s
}

func (r *Registry) DecodeProps(tag string, raw map[string]any) document.Props {
	if w, ok := r.byTag[tag]; ok {
		return w.Decode(raw)
	}
	return document.Unknown{Type: tag, Raw: document.CloneMap(raw)}
}

func (r *Registry) EncodeProps(p document.Props) map[string]any { return document.EncodeJSON(p) }

// Palette lists the registered types sorted by title.
func (r *Registry) Palette() []PaletteEntry {
	out := make([]PaletteEntry, 0, len(r.order))
	for _, tag := range r.order {
		w := r.byTag[tag]
		out = append(out, PaletteEntry{Type: tag, Title: w.Title(), DefaultProps: document.EncodeJSON(w.DefaultProps())})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}
