/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package workspace wires the document store, widget registry, canvas surface,
// persistence and telemetry into one handle that is created once at startup.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrdesk/internal/canvas"
	"hrdesk/internal/config"
	"hrdesk/internal/crash"
	"hrdesk/internal/dashdata"
	applog "hrdesk/internal/log"
	"hrdesk/internal/storage"
	"hrdesk/internal/store"
	"hrdesk/internal/telemetry"
	"hrdesk/internal/widget"
)

type Options struct {
	// DataDir overrides the configured data dir.
	DataDir string
	// Token authenticates the dashboard data source.
	Token string
	// Source replaces the HTTP dashboard source. Optional.
	Source dashdata.Source
	// Listeners and Invalidate are handed to the canvas surface.
	Listeners  canvas.Listeners
	Invalidate func()
	// NewID replaces uuid generation in the store. Optional.
	NewID func() string
	// Telemetry replaces the env configured client. Optional.
	Telemetry *telemetry.Client
}

// Workspace is the explicit application handle. Chrome and the canvas host reach the
// document only through Store and Surface.
type Workspace struct {
	Config       config.AppConfig
	DataDir      string
	DB           *storage.DB
	Repo         *storage.Repository
	Saver        *storage.Autosaver
	Registry     *widget.Registry
	Store        *store.Store
	Hook         *dashdata.Hook
	Surface      *canvas.Surface
	Telemetry    *telemetry.Client
	Crash        *crash.Target
	Bootstrapped bool

	log    *slog.Logger
	ownTel bool
	unsub  func()
}

// LogOptions converts the logging section of the config.
func LogOptions(c config.LoggingConfig) applog.Options {
	return applog.Options{Level: c.Level, Format: c.Format, AddSource: c.Source, File: c.File}
}

// Open loads or bootstraps the document under the data dir and returns a ready
// workspace. Close must be called to flush pending writes.
func Open(ctx context.Context, cfg config.AppConfig, opts Options) (*Workspace, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = cfg.Editor.DataDir
	}
	if dataDir == "" {
		return nil, errors.New("workspace: no data dir")
	}
	l := applog.WithComponent("workspace")
	ws := &Workspace{Config: cfg, DataDir: dataDir, log: l}

	db, err := storage.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	ws.DB = db
	ws.Repo = storage.NewRepository(db)
	ws.Registry = widget.Builtin()
	ws.Saver = storage.NewAutosaver(ws.Repo, cfg.Editor.AutosaveDelay(), func(rev uint64) {
		if ws.Store != nil {
			ws.Store.MarkSaved(rev)
		}
	})
	ws.Store = store.New(store.Options{
		Catalog:         ws.Registry,
		Persister:       ws.Saver,
		HistoryDepth:    cfg.Editor.HistoryDepth,
		HistoryCoalesce: cfg.Editor.HistoryCoalesce(),
		DuplicateOffset: float64(cfg.Editor.DuplicateOffset),
		DefaultGridSize: cfg.Editor.DefaultGridSize,
		NewID:           opts.NewID,
	})
	ws.Crash = &crash.Target{DataDir: dataDir, DB: db, Snapshot: ws.Store.Snapshot}

	snap, boot, err := ws.Repo.LoadOrBootstrap(ctx, cfg.Editor.DefaultGridSize)
	if err != nil && len(snap.Pages) == 0 {
		_ = ws.close()
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err != nil {
		l.Warn("bootstrap document not saved", slog.Any("err", err))
	}
	if err := ws.Store.Load(snap); err != nil {
		_ = ws.close()
		return nil, fmt.Errorf("load document: %w", err)
	}
	ws.Bootstrapped = boot

	src := opts.Source
	if src == nil && cfg.Backend.BaseURL != "" {
		src = dashdata.NewClient(cfg.Backend.BaseURL, opts.Token, cfg.Backend.Timeout(), cfg.Backend.TLSInsecure)
	}
	ws.Hook = dashdata.NewHook(src)
	ws.Surface = canvas.New(ws.Store, ws.Registry, canvas.Options{
		Hook:       ws.Hook,
		Listeners:  opts.Listeners,
		Invalidate: opts.Invalidate,
		Context:    ctx,
	})

	ws.Telemetry = opts.Telemetry
	if ws.Telemetry == nil {
		ws.Telemetry = telemetry.New(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))
		ws.ownTel = true
	}
	ws.unsub = ws.Store.Subscribe(func(c store.Change) {
		if name, ok := telemetry.EditorEvent(c.Op); ok {
			ws.Telemetry.Event(name, nil)
		}
	})
	ws.Telemetry.Event("session_start", map[string]any{"bootstrapped": boot})

	l.Info("workspace opened",
		slog.String("data_dir", dataDir),
		slog.Bool("bootstrapped", boot),
		slog.Int("pages", len(snap.Pages)))
	return ws, nil
}

// Flush writes the current document now, bypassing the autosave delay.
func (ws *Workspace) Flush() {
	ws.Saver.Flush(ws.Store.Revision(), ws.Store.Snapshot())
}

// Close flushes pending writes and releases resources.
func (ws *Workspace) Close(ctx context.Context) error {
	if ws.unsub != nil {
		ws.unsub()
		ws.unsub = nil
	}
	if ws.Surface != nil {
		ws.Surface.Close()
	}
	if ws.Hook != nil {
		ws.Hook.Wait()
	}
	if ws.Telemetry != nil && ws.ownTel {
		fctx, cancel := context.WithTimeout(ctx, time.Second)
		ws.Telemetry.Flush(fctx)
		cancel()
		ws.Telemetry.Close()
	}
	return ws.close()
}

func (ws *Workspace) close() error {
	var errs []error
	if ws.Saver != nil {
		if err := ws.Saver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("flush document: %w", err))
		}
	}
	if ws.DB != nil {
		if err := ws.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
