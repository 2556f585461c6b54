/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type memTokens struct{ m map[string]string }

func (s *memTokens) Get(service, key string) (string, error) { return s.m[service+"/"+key], nil }
func (s *memTokens) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}
func (s *memTokens) Delete(service, key string) error {
	delete(s.m, service+"/"+key)
	return nil
}

// isolate points the config dir at a temp dir and stubs the keyring.
func isolate(t *testing.T) *memTokens {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("AppData", dir)
	ts := &memTokens{m: map[string]string{}}
	old := tokenStore
	tokenStore = ts
	t.Cleanup(func() { tokenStore = old })
	return ts
}

func TestEnvOverridesBackendURL(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesEditor(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, "/var/lib/hrdesk")
	t.Setenv(EnvAutosaveDelayMs, "250")
	t.Setenv(EnvHistoryDepth, "-3")
	t.Setenv(EnvHistoryCoalesce, "400")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.DataDir != "/var/lib/hrdesk" {
		t.Fatalf("DataDir = %q", cfg.Editor.DataDir)
	}
	if cfg.Editor.AutosaveDelay() != 250*time.Millisecond {
		t.Fatalf("AutosaveDelay = %v", cfg.Editor.AutosaveDelay())
	}
	if cfg.Editor.HistoryDepth != 50 {
		t.Fatalf("negative history depth must be ignored, got %d", cfg.Editor.HistoryDepth)
	}
	if cfg.Editor.HistoryCoalesce() != 400*time.Millisecond {
		t.Fatalf("HistoryCoalesce = %v", cfg.Editor.HistoryCoalesce())
	}
	if env, ok := EnvOverrideFor("editor.history_coalesce_ms"); !ok || env != EnvHistoryCoalesce {
		t.Fatalf("EnvOverrideFor(editor.history_coalesce_ms) = %q, %v", env, ok)
	}
}

func TestDefaultDataDirUnderConfigDir(t *testing.T) {
	isolate(t)
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	dir, _ := ConfigDir()
	if cfg.Editor.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("DataDir = %q, want under %q", cfg.Editor.DataDir, dir)
	}
}

func TestMergeIncludesEditor(t *testing.T) {
	dst := Defaults()
	if dst.Editor.HistoryCoalesce() != 0 {
		t.Fatalf("coalescing must be off by default, got %v", dst.Editor.HistoryCoalesce())
	}
	src := AppConfig{Editor: EditorConfig{DefaultGridSize: 10, DuplicateOffset: 0, HistoryDepth: 80, HistoryCoalesceMs: 300}}
	mergeInto(&dst, &src)
	if dst.Editor.DefaultGridSize != 10 || dst.Editor.HistoryDepth != 80 || dst.Editor.HistoryCoalesceMs != 300 {
		t.Fatalf("editor fields not merged: %#v", dst.Editor)
	}
	if dst.Editor.DuplicateOffset != 20 {
		t.Fatalf("zero duplicate offset must keep default, got %d", dst.Editor.DuplicateOffset)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/hrd.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/hrd.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/hrd.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/hrd.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveRoundTripKeepsTokenOutOfFile(t *testing.T) {
	ts := isolate(t)
	cfg := Defaults()
	cfg.Backend.BaseURL = "https://hr.example"
	cfg.Editor.DefaultGridSize = 8
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	path, _ := ConfigPath()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) == "" || strings.Contains(string(raw), "s3cret") {
		t.Fatalf("token leaked into config file or file empty")
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "s3cret" || got.Backend.BaseURL != "https://hr.example" || got.Editor.DefaultGridSize != 8 {
		t.Fatalf("round trip mismatch: tok=%q cfg=%#v", tok, got)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if len(ts.m) != 0 {
		t.Fatalf("token not cleared")
	}
}

func TestEnvOverrideFor(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	if env, ok := EnvOverrideFor("logging.level"); !ok || env != EnvLogLevel {
		t.Fatalf("EnvOverrideFor(logging.level) = %q,%v", env, ok)
	}
	if _, ok := EnvOverrideFor("editor.duplicate_offset"); ok {
		t.Fatalf("unknown key must not report an override")
	}
}
