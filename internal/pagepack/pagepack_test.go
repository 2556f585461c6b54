/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pagepack

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hrdesk/internal/document"
	"hrdesk/internal/storage"
)

func samplePages() []document.PageData {
	return []document.PageData{
		{ID: "p1", Name: "Main Page", Background: "#ffffff", GridEnabled: true, GridSize: 20,
			Components: []document.ComponentData{
				{ID: "card", Type: "card", X: 40, Y: 40, Props: map[string]any{"title": "Team"},
					Children: []document.ComponentData{{ID: "t1", Type: "text", X: 10, Y: 10, Props: map[string]any{"text": "hi"}}}},
			}},
		{ID: "p2", Name: "Empty", Background: "#f0f0f0", Components: []document.ComponentData{}},
	}
}

func TestExportAndInstallPack(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "out", "pages.zip")
	if err := Export(samplePages(), zipPath); err != nil {
		t.Fatalf("export pack: %v", err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	_ = r.Close()
	if !names[ManifestName] || !names["pages/001-p1.json"] || !names["pages/002-p2.json"] {
		t.Fatalf("unexpected entries: %v", names)
	}

	// Install into a workspace holding a different page
	current := []document.PageData{{ID: "home", Name: "Home", Components: nil}}
	merged, installed, err := Install(current, zipPath)
	if err != nil {
		t.Fatalf("install pack: %v", err)
	}
	if installed != 2 || len(merged) != 3 {
		t.Fatalf("installed=%d merged=%d", installed, len(merged))
	}
	if merged[1].ID != "p1" || len(merged[1].Components[0].Children) != 1 {
		t.Fatalf("nested tree not preserved: %+v", merged[1])
	}
	if merged[0].Components == nil {
		t.Fatalf("expected empty component list to be normalized")
	}
}

func TestInstallSkipsClashingIDs(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "pages.zip")
	if err := Export(samplePages(), zipPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	// p1 clashes by page id, p2 is new
	merged, installed, err := Install(samplePages()[:1], zipPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if installed != 1 || len(merged) != 2 || merged[1].ID != "p2" {
		t.Fatalf("installed=%d merged=%+v", installed, merged)
	}

	// component id clash on a fresh page id
	current := []document.PageData{{ID: "other", Components: []document.ComponentData{{ID: "t1", Type: "text"}}}}
	merged, installed, err = Install(current, zipPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if installed != 1 || merged[1].ID != "p2" {
		t.Fatalf("expected only p2 installed, got %d %+v", installed, merged)
	}
}

func TestInstallRejectsInvalidPages(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bad.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("pages/001-x.json")
	_, _ = w.Write([]byte(`{"id":"x","components":[{"id":"c","type":"","x":0,"y":0}]}`))
	_ = zw.Close()
	_ = f.Close()

	_, _, err = Install(nil, zipPath)
	if !errors.Is(err, storage.ErrInvalidDocument) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestExportRequiresInput(t *testing.T) {
	if err := Export(samplePages(), " "); err == nil {
		t.Fatalf("expected error for blank path")
	}
	if err := Export(nil, filepath.Join(t.TempDir(), "x.zip")); err == nil {
		t.Fatalf("expected error for no pages")
	}
	if _, err := Read(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Fatalf("expected error for missing pack")
	}
}
