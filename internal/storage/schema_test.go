/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"testing"

	"hrdesk/internal/document"
)

func TestBootstrapConformsToSchema(t *testing.T) {
	data, err := json.Marshal(BootstrapSnapshot(nil, 0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateDocument(data); err != nil {
		t.Fatalf("bootstrap document does not conform: %v", err)
	}
}

func TestSchemaRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"pages": [`,
		"missing pages":   `{"activePageId": "p"}`,
		"component no id": `{"pages":[{"id":"p","components":[{"type":"text","x":0,"y":0}]}]}`,
		"bad coordinate":  `{"pages":[{"id":"p","components":[{"id":"c","type":"text","x":"left","y":0}]}]}`,
		"nested bad type": `{"pages":[{"id":"p","components":[{"id":"c","type":"card","x":0,"y":0,"children":[{"id":"d","type":"","x":0,"y":0}]}]}]}`,
	}
	for name, body := range cases {
		if err := ValidateDocument([]byte(body)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", name, err)
		}
	}
}

func TestSchemaAcceptsNestedDocument(t *testing.T) {
	w := 10.0
	snap := document.Snapshot{Pages: []document.PageData{{
		ID: "p", Name: "Main", GridEnabled: true, GridSize: 10,
		Components: []document.ComponentData{{
			ID: "card", Type: "card", X: 1, Y: 2, Width: &w, Props: map[string]any{"title": "T"},
			Children: []document.ComponentData{{ID: "t", Type: "text", Props: map[string]any{}}},
		}},
	}}, ActivePageID: "p"}
	data, _ := json.Marshal(snap)
	if err := ValidateDocument(data); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}
}
