/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package widget maps component type tags to rendering capabilities. The canvas talks
// to every widget through the same Widget contract; adding a type means registering
// one more entry.
package widget

import (
	"hrdesk/internal/dashdata"
	"hrdesk/internal/document"
)

// Size is a default footprint in canvas units.
type Size struct{ W, H float64 }

// FallbackSize applies when neither the component nor its widget provides a size.
var FallbackSize = Size{W: 300, H: 200}

// Action is a header control a widget exposes.
type Action string

const (
	ActionRefresh Action = "refresh"
	ActionClose   Action = "close"
	ActionDelete  Action = "delete"
)

// View is the render output of a widget: a title bar and a few content lines.
type View struct {
	Title       string
	Lines       []string
	Actions     []Action
	Loading     bool
	Err         string
	Placeholder bool
}

// RenderContext carries canvas-level data into a render call.
type RenderContext struct {
	Selected  bool
	Dashboard dashdata.State
}

// Host is what widgets may ask of the surface hosting them.
type Host interface {
	Select(componentID string)
	Delete(componentID string)
	RefreshDashboard()
}

// Widget is the capability contract implemented by every type tag.
type Widget interface {
	Tag() string
	Title() string
	DefaultSize() Size
	Container() bool
	DefaultProps() document.Props
	Decode(raw map[string]any) document.Props
	Render(rc RenderContext, c document.Component) View
	OnClick(h Host, c document.Component)
	OnClose(h Host, c document.Component)
	OnRefresh(h Host, c document.Component)
}

// base supplies the default behavior: select on click, delete on close, no refresh.
type base struct {
	tag   string
	title string
	size  Size
}

func (b base) Tag() string       { return b.tag }
func (b base) Title() string     { return b.title }
func (b base) DefaultSize() Size { return b.size }
func (b base) Container() bool   { return false }

func (b base) OnClick(h Host, c document.Component)   { h.Select(c.ID) }
func (b base) OnClose(h Host, c document.Component)   { h.Delete(c.ID) }
func (b base) OnRefresh(h Host, c document.Component) {}

// decode overlays raw onto def. Keys outside the typed shape ride along as extras;
// values that do not fit it turn the whole configuration into Unknown so it survives
// a save.
func decode[P document.Props](def P, raw map[string]any) document.Props {
	p := def
	if len(raw) == 0 {
		return p
	}
	if err := document.DecodeJSON(raw, &p); err != nil {
		return document.Unknown{Type: def.Tag(), Raw: document.CloneMap(raw)}
	}
	typed := document.EncodeJSON(def)
	extra := map[string]any{}
	for k, v := range raw {
		if _, ok := typed[k]; !ok {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		if s, ok := any(&p).(interface{ SetExtra(map[string]any) }); ok {
			s.SetExtra(document.CloneMap(extra))
		}
	}
	return p
}

// propsOf returns the typed props of c, or def when c carries another variant.
func propsOf[P document.Props](c document.Component, def P) P {
	if p, ok := c.Props.(P); ok {
		return p
	}
	return def
}
