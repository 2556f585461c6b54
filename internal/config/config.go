/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type BackendConfig struct {
	// BaseURL of the recruiting API queried by the dashboard data source.
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// EditorConfig tunes the page builder.
type EditorConfig struct {
	DataDir           string `yaml:"data_dir"`
	AutosaveDelayMs   int    `yaml:"autosave_delay_ms"`
	HistoryDepth      int    `yaml:"history_depth"`
	HistoryCoalesceMs int    `yaml:"history_coalesce_ms"` // edits closer than this share an undo step; 0 keeps every edit
	DefaultGridSize   int    `yaml:"default_grid_size"`
	DuplicateOffset   int    `yaml:"duplicate_offset"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Editor        EditorConfig  `yaml:"editor"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false},
		Editor: EditorConfig{
			DataDir:         "",
			AutosaveDelayMs: 1000,
			HistoryDepth:    50,
			DefaultGridSize: 20,
			DuplicateOffset: 20,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "HRD_BACKEND_URL"
	EnvBackendTimeoutMs = "HRD_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "HRD_TLS_INSECURE"
	EnvTelemetryOptIn   = "HRD_TELEMETRY_OPT_IN"
	EnvDataDir          = "HRD_DATA_DIR"
	EnvAutosaveDelayMs  = "HRD_AUTOSAVE_DELAY_MS"
	EnvHistoryDepth     = "HRD_HISTORY_DEPTH"
	EnvHistoryCoalesce  = "HRD_HISTORY_COALESCE_MS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "HRD_LOG_LEVEL"
	EnvLogFormat = "HRD_LOG_FORMAT"
	EnvLogSource = "HRD_LOG_SOURCE"
	EnvLogFile   = "HRD_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "HRDesk"
	keyringToken   = "backend_token"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "HRDesk")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "HRDesk")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "hrdesk")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "hrdesk")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the backend token from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if cfg.Editor.DataDir == "" {
		if dir, err := ConfigDir(); err == nil {
			cfg.Editor.DataDir = filepath.Join(dir, "data")
		}
	}
	// token from keyring
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the backend token from the keyring.
func ClearToken() error { return tokenStore.Delete(keyringService, keyringToken) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	// editor
	if strings.TrimSpace(src.Editor.DataDir) != "" {
		dst.Editor.DataDir = strings.TrimSpace(src.Editor.DataDir)
	}
	if src.Editor.AutosaveDelayMs > 0 {
		dst.Editor.AutosaveDelayMs = src.Editor.AutosaveDelayMs
	}
	if src.Editor.HistoryDepth > 0 {
		dst.Editor.HistoryDepth = src.Editor.HistoryDepth
	}
	if src.Editor.HistoryCoalesceMs > 0 {
		dst.Editor.HistoryCoalesceMs = src.Editor.HistoryCoalesceMs
	}
	if src.Editor.DefaultGridSize > 0 {
		dst.Editor.DefaultGridSize = src.Editor.DefaultGridSize
	}
	if src.Editor.DuplicateOffset > 0 {
		dst.Editor.DuplicateOffset = src.Editor.DuplicateOffset
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Editor.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveDelayMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.AutosaveDelayMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryCoalesce)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Editor.HistoryCoalesceMs = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var overrideKeys = map[string]string{
	"backend.base_url":           EnvBackendURL,
	"backend.timeout_ms":         EnvBackendTimeoutMs,
	"backend.tls_insecure":       EnvBackendTLSInsec,
	"general.telemetry_opt_in":   EnvTelemetryOptIn,
	"editor.data_dir":            EnvDataDir,
	"editor.autosave_delay_ms":   EnvAutosaveDelayMs,
	"editor.history_depth":       EnvHistoryDepth,
	"editor.history_coalesce_ms": EnvHistoryCoalesce,
	"logging.level":              EnvLogLevel,
	"logging.format":             EnvLogFormat,
	"logging.source":             EnvLogSource,
	"logging.file":               EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := overrideKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Timeout returns the backend request timeout, falling back to the default when unset.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// AutosaveDelay is the quiescence window of the debounced document flush.
func (e EditorConfig) AutosaveDelay() time.Duration {
	if e.AutosaveDelayMs <= 0 {
		return time.Second
	}
	return time.Duration(e.AutosaveDelayMs) * time.Millisecond
}

// HistoryCoalesce is the window within which consecutive edits share one undo step.
func (e EditorConfig) HistoryCoalesce() time.Duration {
	if e.HistoryCoalesceMs <= 0 {
		return 0
	}
	return time.Duration(e.HistoryCoalesceMs) * time.Millisecond
}
