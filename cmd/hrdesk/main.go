/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hrdesk/internal/canvas"
	"hrdesk/internal/config"
	"hrdesk/internal/crash"
	"hrdesk/internal/document"
	"hrdesk/internal/export"
	applog "hrdesk/internal/log"
	"hrdesk/internal/pagepack"
	"hrdesk/internal/ui"
	"hrdesk/internal/version"
	"hrdesk/internal/workspace"
)

// errUsage marks argument errors; main exits with status 2 for them.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "HR Desk - page builder for the HR admin dashboard")
	_, _ = fmt.Fprintf(w, "Version: %s\n\n", version.String())
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  hrdesk version|-v|--version                 Show version")
	_, _ = fmt.Fprintln(w, "  hrdesk init [<dataDir>]                     Create or open the workspace and write the document")
	_, _ = fmt.Fprintln(w, "  hrdesk show [<dataDir>]                     Print pages and their component trees")
	_, _ = fmt.Fprintln(w, "  hrdesk add-page <dataDir> <name>            Append a page and make it active")
	_, _ = fmt.Fprintln(w, "  hrdesk export <dataDir> <file> [<pageID>]   Export one page; format from the file extension")
	_, _ = fmt.Fprintln(w, "  hrdesk export-all <dataDir> <outDir> [web|print]  Export every page using a preset")
	_, _ = fmt.Fprintln(w, "  hrdesk pack <dataDir> <out.zip>             Write every page into a page pack")
	_, _ = fmt.Fprintln(w, "  hrdesk install-pack <dataDir> <pack.zip>    Append the pages of a page pack")
	_, _ = fmt.Fprintln(w, "  hrdesk ui [<dataDir>]                       Launch desktop UI (build with -tags fyne)")
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, token, cfgErr := config.Load()
	applog.Init(workspace.LogOptions(cfg.Logging))
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", cfgErr))
	}

	var target crash.Target
	defer crash.Recover(&target)

	err := run(context.Background(), os.Args[1:], cfg, token, &target, os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Println("Error:", err)
		usage(os.Stdout)
		os.Exit(2)
	default:
		l.Error("command failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, cfg config.AppConfig, token string, target *crash.Target, out io.Writer) error {
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(out)
		return nil
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	withWorkspace := func(dir string, fn func(ws *workspace.Workspace) error) (err error) {
		if dir != "" {
			dir, _ = filepath.Abs(dir)
		}
		ws, err := workspace.Open(ctx, cfg, workspace.Options{DataDir: dir, Token: token})
		if err != nil {
			return err
		}
		*target = *ws.Crash
		defer func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = errors.Join(err, ws.Close(cctx))
		}()
		return fn(ws)
	}

	switch cmd := args[0]; cmd {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(out, version.String())
		return nil
	case "help", "--help", "-h":
		usage(out)
		return nil
	case "init":
		return withWorkspace(arg(1), func(ws *workspace.Workspace) error {
			ws.Flush()
			if ws.Bootstrapped {
				_, _ = fmt.Fprintln(out, "Created workspace at", ws.DataDir)
			} else {
				_, _ = fmt.Fprintln(out, "Workspace already exists at", ws.DataDir)
			}
			return nil
		})
	case "show":
		return withWorkspace(arg(1), func(ws *workspace.Workspace) error {
			printDocument(out, ws)
			return nil
		})
	case "add-page":
		if len(args) < 3 {
			return fmt.Errorf("%w: add-page requires <dataDir> and <name>", errUsage)
		}
		return withWorkspace(args[1], func(ws *workspace.Workspace) error {
			id := ws.Store.AddPage(strings.TrimSpace(strings.Join(args[2:], " ")))
			ws.Flush()
			_, _ = fmt.Fprintln(out, "Added page", id)
			return nil
		})
	case "export":
		if len(args) < 3 {
			return fmt.Errorf("%w: export requires <dataDir> and <file>", errUsage)
		}
		f, err := export.ParseFormat(args[2])
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return withWorkspace(args[1], func(ws *workspace.Workspace) error {
			pageID := arg(3)
			if pageID == "" {
				pageID = ws.Store.ActivePageID()
			}
			sc, ok := ws.Surface.RenderPage(pageID)
			if !ok {
				return fmt.Errorf("page %q not found", pageID)
			}
			if err := export.File(sc, args[2], f, export.Style{IncludeGrid: true}, 1); err != nil {
				return err
			}
			l.Info("exported page", slog.String("page", pageID), slog.String("path", args[2]))
			_, _ = fmt.Fprintln(out, "Exported", args[2])
			return nil
		})
	case "export-all":
		if len(args) < 3 {
			return fmt.Errorf("%w: export-all requires <dataDir> and <outDir>", errUsage)
		}
		preset := export.PresetName(arg(3))
		switch preset {
		case "", export.PresetWeb, export.PresetPrint:
		default:
			return fmt.Errorf("%w: unknown preset %q", errUsage, preset)
		}
		return withWorkspace(args[1], func(ws *workspace.Workspace) error {
			pages := ws.Store.Pages()
			scenes := make([]canvas.Scene, 0, len(pages))
			for _, p := range pages {
				if sc, ok := ws.Surface.RenderPage(p.ID); ok {
					scenes = append(scenes, sc)
				}
			}
			files, err := export.Batch(scenes, export.BatchOptions{Preset: preset, OutDir: args[2]})
			for _, f := range files {
				_, _ = fmt.Fprintln(out, f)
			}
			return err
		})
	case "pack":
		if len(args) < 3 {
			return fmt.Errorf("%w: pack requires <dataDir> and <out.zip>", errUsage)
		}
		return withWorkspace(args[1], func(ws *workspace.Workspace) error {
			if err := pagepack.Export(ws.Store.Snapshot().Pages, args[2]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "Wrote page pack", args[2])
			return nil
		})
	case "install-pack":
		if len(args) < 3 {
			return fmt.Errorf("%w: install-pack requires <dataDir> and <pack.zip>", errUsage)
		}
		return withWorkspace(args[1], func(ws *workspace.Workspace) error {
			merged, n, err := pagepack.Install(ws.Store.Snapshot().Pages, args[2])
			if err != nil {
				return err
			}
			if n > 0 {
				if err := ws.Store.SetPages(merged); err != nil {
					return err
				}
				ws.Flush()
			}
			_, _ = fmt.Fprintf(out, "Installed %d page(s)\n", n)
			return nil
		})
	case "ui":
		return ui.Run(arg(1))
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func printDocument(out io.Writer, ws *workspace.Workspace) {
	active := ws.Store.ActivePageID()
	ws.Store.Read(func(d *document.Document) {
		for _, p := range d.Pages() {
			mark := " "
			if p.ID == active {
				mark = "*"
			}
			grid := "off"
			if p.GridEnabled {
				grid = fmt.Sprintf("%d", p.GridSize)
			}
			_, _ = fmt.Fprintf(out, "%s %s %q background=%s grid=%s\n", mark, p.ID, p.Name, p.Background, grid)
			var walk func(ids []string, depth int)
			walk = func(ids []string, depth int) {
				for _, id := range ids {
					c, ok := d.Component(id)
					if !ok {
						continue
					}
					_, _ = fmt.Fprintf(out, "%s- %s %s at %g,%g\n", strings.Repeat("  ", depth+1), c.Type, c.ID, c.X, c.Y)
					walk(d.Children(id), depth+1)
				}
			}
			walk(d.Roots(p.ID), 0)
		}
	})
}
