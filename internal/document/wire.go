/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import "fmt"

// Snapshot is the persisted shape of a document.
type Snapshot struct {
	Pages        []PageData `json:"pages"`
	ActivePageID string     `json:"activePageId"`
}

type PageData struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Components  []ComponentData `json:"components"`
	Background  string          `json:"background"`
	GridEnabled bool            `json:"gridEnabled"`
	GridSize    int             `json:"gridSize"`
}

type ComponentData struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Width    *float64        `json:"width,omitempty"`
	Height   *float64        `json:"height,omitempty"`
	Props    map[string]any  `json:"props"`
	Children []ComponentData `json:"children,omitempty"`
}

// FromSnapshot rebuilds a document. Duplicate or empty ids are rejected. An active page
// id that names no page falls back to the first page.
func FromSnapshot(s Snapshot, codec PropsCodec) (*Document, error) {
	if codec == nil {
		codec = RawCodec{}
	}
	d := New()
	for _, pd := range s.Pages {
		p := Page{
			ID:          pd.ID,
			Name:        pd.Name,
			Background:  pd.Background,
			GridEnabled: pd.GridEnabled,
			GridSize:    pd.GridSize,
		}
		if p.Background == "" {
			p.Background = DefaultBackground
		}
		if p.GridSize <= 0 {
			p.GridSize = DefaultGridSize
		}
		if err := d.AppendPage(p); err != nil {
			return nil, err
		}
		for _, cd := range pd.Components {
			if err := d.insertData(p.ID, "", cd, codec); err != nil {
				return nil, fmt.Errorf("page %q: %w", p.ID, err)
			}
		}
	}
	if !d.SetActivePageID(s.ActivePageID) || (s.ActivePageID == "" && len(d.pages) > 0) {
		d.active = ""
		if len(d.pages) > 0 {
			d.active = d.pages[0].page.ID
		}
	}
	return d, nil
}

func (d *Document) insertData(pageID, parentID string, cd ComponentData, codec PropsCodec) error {
	c := Component{
		ID:    cd.ID,
		Type:  cd.Type,
		X:     cd.X,
		Y:     cd.Y,
		Props: codec.DecodeProps(cd.Type, cd.Props),
	}
	if cd.Width != nil {
		c.Width = *cd.Width
	}
	if cd.Height != nil {
		c.Height = *cd.Height
	}
	var err error
	if parentID == "" {
		err = d.InsertRoot(pageID, c)
	} else {
		err = d.InsertChild(parentID, c)
	}
	if err != nil {
		return err
	}
	for _, ch := range cd.Children {
		if err := d.insertData(pageID, c.ID, ch, codec); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot renders the document in its persisted shape.
func (d *Document) Snapshot(codec PropsCodec) Snapshot {
	if codec == nil {
		codec = RawCodec{}
	}
	s := Snapshot{Pages: make([]PageData, 0, len(d.pages)), ActivePageID: d.active}
	for _, p := range d.pages {
		pd := PageData{
			ID:          p.page.ID,
			Name:        p.page.Name,
			Components:  make([]ComponentData, 0, len(p.roots)),
			Background:  p.page.Background,
			GridEnabled: p.page.GridEnabled,
			GridSize:    p.page.GridSize,
		}
		for _, r := range p.roots {
			pd.Components = append(pd.Components, d.componentData(r, codec))
		}
		s.Pages = append(s.Pages, pd)
	}
	return s
}

// ComponentData renders one component and its subtree in persisted shape.
func (d *Document) ComponentData(id string, codec PropsCodec) (ComponentData, bool) {
	if _, ok := d.nodes[id]; !ok {
		return ComponentData{}, false
	}
	if codec == nil {
		codec = RawCodec{}
	}
	return d.componentData(id, codec), true
}

func (d *Document) componentData(id string, codec PropsCodec) ComponentData {
	n := d.nodes[id]
	cd := ComponentData{
		ID:    n.comp.ID,
		Type:  n.comp.Type,
		X:     n.comp.X,
		Y:     n.comp.Y,
		Props: codec.EncodeProps(n.comp.Props),
	}
	if n.comp.Width > 0 {
		w := n.comp.Width
		cd.Width = &w
	}
	if n.comp.Height > 0 {
		h := n.comp.Height
		cd.Height = &h
	}
	for _, ch := range n.children {
		cd.Children = append(cd.Children, d.componentData(ch, codec))
	}
	return cd
}
