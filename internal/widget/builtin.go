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
	"strings"

	"hrdesk/internal/document"
)

type DashboardProps struct {
	document.Extras
	Title   string   `json:"title"`
	Metrics []string `json:"metrics"`
}

func (DashboardProps) Tag() string { return DashboardTag }
func (p DashboardProps) CloneProps() document.Props {
	p.Metrics = append([]string(nil), p.Metrics...)
	p.Extras = p.Extras.Clone()
	return p
}

type ListProps struct {
	document.Extras
	Kind   string `json:"-"`
	Title  string `json:"title"`
	Filter string `json:"filter"`
	Limit  int    `json:"limit"`
}

func (p ListProps) Tag() string { return p.Kind }
func (p ListProps) CloneProps() document.Props {
	p.Extras = p.Extras.Clone()
	return p
}

type ChartProps struct {
	document.Extras
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	Metric string `json:"metric"`
}

func (ChartProps) Tag() string { return ChartTag }
func (p ChartProps) CloneProps() document.Props {
	p.Extras = p.Extras.Clone()
	return p
}

type CardProps struct {
	document.Extras
	Title      string `json:"title"`
	Background string `json:"background"`
}

func (CardProps) Tag() string { return CardTag }
func (p CardProps) CloneProps() document.Props {
	p.Extras = p.Extras.Clone()
	return p
}

type TextProps struct {
	document.Extras
	Text     string `json:"text"`
	FontSize int    `json:"fontSize"`
	Align    string `json:"align"`
}

func (TextProps) Tag() string { return TextTag }
func (p TextProps) CloneProps() document.Props {
	p.Extras = p.Extras.Clone()
	return p
}

// dashboard renders the canvas-level dashboard data; it never fetches on its own.
type dashboard struct{ base }

func (dashboard) DefaultProps() document.Props {
	return DashboardProps{Title: "Recruiting overview", Metrics: []string{"open_vacancies", "active_candidates", "interviews_this_week", "hires_this_month"}}
}

func (w dashboard) Decode(raw map[string]any) document.Props {
	return decode(w.DefaultProps().(DashboardProps), raw)
}

func (w dashboard) Render(rc RenderContext, c document.Component) View {
	p := propsOf(c, w.DefaultProps().(DashboardProps))
	v := View{Title: p.Title, Actions: []Action{ActionRefresh, ActionClose}, Loading: rc.Dashboard.Loading}
	if rc.Dashboard.Err != nil {
		v.Err = rc.Dashboard.Err.Error()
	}
	d := rc.Dashboard.Data
	if d == nil {
		if !v.Loading && v.Err == "" {
			v.Lines = []string{"No data yet"}
		}
		return v
	}
	for _, m := range p.Metrics {
		switch m {
		case "open_vacancies":
			v.Lines = append(v.Lines, fmt.Sprintf("Open vacancies: %d", d.OpenVacancies))
		case "active_candidates":
			v.Lines = append(v.Lines, fmt.Sprintf("Active candidates: %d", d.ActiveCandidates))
		case "interviews_this_week":
			v.Lines = append(v.Lines, fmt.Sprintf("Interviews this week: %d", d.InterviewsThisWeek))
		case "hires_this_month":
			v.Lines = append(v.Lines, fmt.Sprintf("Hires this month: %d", d.HiresThisMonth))
		}
	}
	return v
}

func (dashboard) OnRefresh(h Host, c document.Component) { h.RefreshDashboard() }

// list covers the vacancies, candidates and interviews tags. Their rows come from
// their own data sources outside the page builder.
type list struct {
	base
	filter string
}

func (w list) DefaultProps() document.Props {
	return ListProps{Kind: w.tag, Title: w.title, Filter: w.filter, Limit: 10}
}

func (w list) Decode(raw map[string]any) document.Props {
	p := decode(w.DefaultProps().(ListProps), raw)
	if lp, ok := p.(ListProps); ok {
		lp.Kind = w.tag
		return lp
	}
	return p
}

func (w list) Render(rc RenderContext, c document.Component) View {
	p := propsOf(c, w.DefaultProps().(ListProps))
	line := fmt.Sprintf("Showing up to %d", p.Limit)
	if p.Filter != "" {
		line += " · " + p.Filter
	}
	return View{Title: p.Title, Lines: []string{line}, Actions: []Action{ActionRefresh, ActionClose}}
}

type chart struct{ base }

func (chart) DefaultProps() document.Props {
	return ChartProps{Title: "Hiring funnel", Kind: "bar", Metric: "stage_counts"}
}

func (w chart) Decode(raw map[string]any) document.Props {
	return decode(w.DefaultProps().(ChartProps), raw)
}

func (w chart) Render(rc RenderContext, c document.Component) View {
	p := propsOf(c, w.DefaultProps().(ChartProps))
	return View{Title: p.Title, Lines: []string{p.Kind + " chart of " + p.Metric}, Actions: []Action{ActionClose}}
}

// card is the container type: its body hosts child components.
type card struct{ base }

func (card) Container() bool { return true }

func (card) DefaultProps() document.Props { return CardProps{Title: "Card"} }

func (w card) Decode(raw map[string]any) document.Props {
	return decode(w.DefaultProps().(CardProps), raw)
}

func (w card) Render(rc RenderContext, c document.Component) View {
	p := propsOf(c, w.DefaultProps().(CardProps))
	return View{Title: p.Title, Actions: []Action{ActionClose}}
}

type text struct{ base }

func (text) DefaultProps() document.Props {
	return TextProps{Text: "Double-click to edit", FontSize: 14, Align: "left"}
}

func (w text) Decode(raw map[string]any) document.Props {
	return decode(w.DefaultProps().(TextProps), raw)
}

func (w text) Render(rc RenderContext, c document.Component) View {
	p := propsOf(c, w.DefaultProps().(TextProps))
	return View{Title: "Text", Lines: strings.Split(p.Text, "\n"), Actions: []Action{ActionClose}}
}

// unknown stands in for tags with no registered widget so one bad entry never
// blocks the rest of the page.
type unknown struct{ base }

func (unknown) DefaultProps() document.Props { return document.Unknown{} }

func (unknown) Decode(raw map[string]any) document.Props {
	return document.Unknown{Raw: document.CloneMap(raw)}
}

func (unknown) Render(rc RenderContext, c document.Component) View {
	return View{
		Title:       "Unknown widget",
		Lines:       []string{fmt.Sprintf("Type %q is not supported", c.Type)},
		Actions:     []Action{ActionDelete},
		Placeholder: true,
	}
}
