/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pagepack shares page layouts between workspaces as a zip archive holding one
// JSON file per page under pages/ and a small manifest at the root.
package pagepack

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hrdesk/internal/document"
	applog "hrdesk/internal/log"
	"hrdesk/internal/storage"
	"hrdesk/internal/version"
)

// ManifestName is the human readable entry at the archive root.
const ManifestName = "pagepack.manifest.txt"

const pagesDir = "pages"

// Export writes pages to a new archive at destZipPath, replacing any existing file.
func Export(pages []document.PageData, destZipPath string) (err error) {
	l := applog.WithOperation(applog.WithComponent("pagepack"), "export").With(slog.String("zip", destZipPath))
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	if len(pages) == 0 {
		return errors.New("no pages to export")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() {
		if cerr := zf.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close zip: %w", cerr)
		}
	}()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("HR Desk Page Pack\nCreated: %s\nVersion: %s\nPages: %d\n\nEach file under pages/ holds one page with its component tree.\n",
		time.Now().Format(time.RFC3339), version.String(), len(pages))
	w, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for i, p := range pages {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("encode page %s: %w", p.ID, err)
		}
		// Zip names always use forward slashes.
		fw, err := zw.Create(path.Join(pagesDir, fmt.Sprintf("%03d-%s.json", i+1, p.ID)))
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("page pack exported", slog.Int("pages", len(pages)))
	return nil
}

// Read returns the pages stored in the archive in file name order.
func Read(packZipPath string) ([]document.PageData, error) {
	if strings.TrimSpace(packZipPath) == "" {
		return nil, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() || path.Dir(f.Name) != pagesDir || path.Ext(f.Name) != ".json" {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	pages := make([]document.PageData, 0, len(files))
	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		var p document.PageData
		err = json.NewDecoder(rc).Decode(&p)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.Name, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// Install appends the archive's pages to current. A page is skipped when its id or
// any of its component ids already exists. The merged set is validated against the
// document schema before it is returned together with the number of pages added.
func Install(current []document.PageData, packZipPath string) ([]document.PageData, int, error) {
	l := applog.WithOperation(applog.WithComponent("pagepack"), "install").With(slog.String("zip", packZipPath))
	incoming, err := Read(packZipPath)
	if err != nil {
		return nil, 0, err
	}

	seen := map[string]bool{}
	for _, p := range current {
		seen[p.ID] = true
		collectIDs(p.Components, seen)
	}
	merged := append([]document.PageData(nil), current...)
	installed := 0
	for _, p := range incoming {
		ids := map[string]bool{p.ID: true}
		collectIDs(p.Components, ids)
		clash := ""
		for id := range ids {
			if seen[id] {
				clash = id
				break
			}
		}
		if clash != "" {
			l.Warn("skip page with existing id", slog.String("page", p.ID), slog.String("id", clash))
			continue
		}
		for id := range ids {
			seen[id] = true
		}
		merged = append(merged, p)
		installed++
	}

	for i := range merged {
		if merged[i].Components == nil {
			merged[i].Components = []document.ComponentData{}
		}
	}
	data, err := json.Marshal(document.Snapshot{Pages: merged})
	if err != nil {
		return nil, 0, err
	}
	if err := storage.ValidateDocument(data); err != nil {
		return nil, 0, err
	}
	l.Info("page pack read", slog.Int("pages", installed), slog.Int("skipped", len(incoming)-installed))
	return merged, installed, nil
}

func collectIDs(cs []document.ComponentData, into map[string]bool) {
	for _, c := range cs {
		into[c.ID] = true
		collectIDs(c.Children, into)
	}
}
