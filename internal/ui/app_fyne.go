//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	board "hrdesk/internal/canvas"
	"hrdesk/internal/config"
	"hrdesk/internal/crash"
	"hrdesk/internal/document"
	"hrdesk/internal/export"
	applog "hrdesk/internal/log"
	"hrdesk/internal/store"
	"hrdesk/internal/version"
	"hrdesk/internal/workspace"
)

// Run opens the workspace under dataDir (or the configured data dir) and shows the
// page builder window until it is closed.
func Run(dataDir string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", err))
	}

	fyneApp := app.NewWithID("hrdesk")
	w := fyneApp.NewWindow("HR Desk")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 820)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	pc := NewPageCanvas()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws, err := workspace.Open(ctx, cfg, workspace.Options{
		DataDir:    dataDir,
		Token:      token,
		Listeners:  pc,
		Invalidate: func() { fyne.Do(pc.Refresh) },
	})
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	defer crash.Recover(ws.Crash)
	pc.Bind(ws.Surface, func() bool { return w.Canvas().Focused() != nil })

	st := ws.Store
	status := widget.NewLabel("Ready")

	// Pages (left)
	var pages []document.Page
	pagesList := widget.NewList(
		func() int { return len(pages) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(pages) {
				o.(*widget.Label).SetText(pages[i].Name)
			}
		},
	)
	syncing := false
	pagesList.OnSelected = func(id widget.ListItemID) {
		if syncing || id < 0 || int(id) >= len(pages) {
			return
		}
		st.SetActivePage(pages[id].ID)
	}
	pageName := widget.NewEntry()
	pageName.SetPlaceHolder("Page name")
	pageName.OnSubmitted = func(name string) {
		if strings.TrimSpace(name) == "" {
			return
		}
		st.RenamePage(st.ActivePageID(), strings.TrimSpace(name))
		w.Canvas().Unfocus()
	}
	bgEntry := widget.NewEntry()
	bgEntry.SetPlaceHolder("#ffffff")
	bgEntry.OnSubmitted = func(v string) {
		v = strings.TrimSpace(v)
		st.UpdatePage(st.ActivePageID(), store.PagePatch{Background: &v})
		w.Canvas().Unfocus()
	}
	gridCheck := widget.NewCheck("Snap to grid", func(on bool) {
		if syncing {
			return
		}
		st.UpdatePage(st.ActivePageID(), store.PagePatch{GridEnabled: &on})
	})
	gridSize := widget.NewEntry()
	gridSize.SetPlaceHolder("Grid size")
	gridSize.OnSubmitted = func(v string) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			dialog.ShowInformation("Grid", "Grid size must be a positive number.", w)
			return
		}
		st.UpdatePage(st.ActivePageID(), store.PagePatch{GridSize: &n})
		w.Canvas().Unfocus()
	}
	addPage := widget.NewButtonWithIcon("Add page", theme.ContentAddIcon(), func() {
		st.AddPage("")
	})
	delPage := widget.NewButtonWithIcon("Delete page", theme.DeleteIcon(), func() {
		deleteActivePage(st, func(msg string, done func(bool)) {
			dialog.ShowConfirm("Delete page", msg, done, w)
		})
	})
	pageSettings := widget.NewForm(
		widget.NewFormItem("Name", pageName),
		widget.NewFormItem("Background", bgEntry),
		widget.NewFormItem("Grid", gridSize),
	)
	left := container.NewBorder(
		container.NewVBox(widget.NewLabel("Pages"), widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), pageSettings, gridCheck, container.NewGridWithColumns(2, addPage, delPage)),
		nil, nil, pagesList)

	// Palette and inspector (right)
	palette := ws.Registry.Palette()
	paletteList := widget.NewList(
		func() int { return len(palette) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(palette[i].Title) },
	)
	paletteList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || int(id) >= len(palette) {
			return
		}
		e := palette[id]
		payload, err := board.EncodePayload(e.Type, e.DefaultProps)
		if err != nil {
			l.Error("encode palette payload", slog.Any("err", err))
			return
		}
		pc.Arm(payload)
		status.SetText(fmt.Sprintf("Click on the canvas to place %s. Right-click cancels.", e.Title))
		l.Info("palette armed", slog.String("type", e.Type))
	}
	pc.OnPlaced = func(id string) {
		paletteList.UnselectAll()
		status.SetText("Component added.")
		l.Info("component placed", slog.String("component", id))
	}

	selLabel := widget.NewLabel("Nothing selected")
	propsEntry := widget.NewMultiLineEntry()
	propsEntry.SetPlaceHolder("{}")
	propsEntry.Wrapping = fyne.TextWrapWord
	applyProps := widget.NewButton("Apply", func() {
		id := st.SelectedID()
		if id == "" {
			return
		}
		var patch map[string]any
		if err := json.Unmarshal([]byte(propsEntry.Text), &patch); err != nil {
			dialog.ShowError(fmt.Errorf("props must be a JSON object: %w", err), w)
			return
		}
		st.UpdateComponent(st.ActivePageID(), id, store.ComponentPatch{Props: patch})
		w.Canvas().Unfocus()
	})
	inspector := container.NewBorder(
		container.NewVBox(widget.NewLabel("Selection"), widget.NewSeparator(), selLabel),
		applyProps, nil, nil, propsEntry)
	right := container.NewVSplit(
		container.NewBorder(container.NewVBox(widget.NewLabel("Palette"), widget.NewSeparator()), nil, nil, nil, paletteList),
		inspector)

	// Store -> chrome
	var lastSel string
	refreshChrome := func() {
		syncing = true
		defer func() { syncing = false }()
		pages = st.Pages()
		pagesList.Refresh()
		active := st.ActivePageID()
		if active == "" {
			pagesList.UnselectAll()
			pageName.SetText("")
			bgEntry.SetText("")
			gridSize.SetText("")
		}
		for i, p := range pages {
			if p.ID == active {
				pagesList.Select(i)
				if w.Canvas().Focused() == nil {
					pageName.SetText(p.Name)
					bgEntry.SetText(p.Background)
					gridSize.SetText(strconv.Itoa(p.GridSize))
				}
				gridCheck.SetChecked(p.GridEnabled)
			}
		}
		if c, ok := st.SelectedComponent(); ok {
			selLabel.SetText(fmt.Sprintf("%s (%s) at %.0f,%.0f", c.ID, c.Type, c.X, c.Y))
			if c.ID != lastSel {
				if data, err := json.MarshalIndent(document.EncodeJSON(c.Props), "", "  "); err == nil {
					propsEntry.SetText(string(data))
				}
			}
			lastSel = c.ID
		} else {
			selLabel.SetText("Nothing selected")
			propsEntry.SetText("")
			lastSel = ""
		}
		state := "Saved"
		if st.Dirty() {
			state = "Unsaved changes"
		}
		w.SetTitle(fmt.Sprintf("HR Desk - %s", state))
	}
	unsub := st.Subscribe(func(store.Change) { fyne.Do(refreshChrome) })
	defer unsub()
	refreshChrome()

	// Toolbar
	undoAct := func() {
		if !st.Undo() {
			status.SetText("Nothing to undo.")
		}
	}
	redoAct := func() {
		if !st.Redo() {
			status.SetText("Nothing to redo.")
		}
	}
	deleteAct := func() {
		if id := st.SelectedID(); id != "" {
			st.DeleteComponent(st.ActivePageID(), id)
		}
	}
	duplicateAct := func() {
		if id := st.SelectedID(); id != "" {
			st.DuplicateComponent(st.ActivePageID(), id)
		}
	}
	exportAct := func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			f, err := export.ParseFormat(path)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			sc, ok := ws.Surface.RenderPage(st.ActivePageID())
			if !ok {
				return
			}
			if err := export.File(sc, path, f, export.Style{IncludeGrid: true}, 1); err != nil {
				l.Error("export failed", slog.Any("err", err))
				dialog.ShowError(err, w)
				return
			}
			l.Info("exported page", slog.String("path", path), slog.String("format", string(f)))
			status.SetText("Exported to " + path)
		}, w)
		fd.SetFileName("page.pdf")
		fd.Show()
	}
	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), undoAct),
		widget.NewToolbarAction(theme.ContentRedoIcon(), redoAct),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), duplicateAct),
		widget.NewToolbarAction(theme.DeleteIcon(), deleteAct),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), ws.Surface.RefreshDashboard),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			ws.Flush()
			status.SetText("Saved.")
		}),
		widget.NewToolbarAction(theme.DownloadIcon(), exportAct),
	)

	mod := fyne.KeyModifierShortcutDefault
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: mod}, func(fyne.Shortcut) { undoAct() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: mod}, func(fyne.Shortcut) { redoAct() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: mod}, func(fyne.Shortcut) { duplicateAct() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: mod}, func(fyne.Shortcut) { ws.Flush() })
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyEscape:
			ws.Surface.Cancel()
			pc.Arm(nil)
			paletteList.UnselectAll()
			pc.Refresh()
		case fyne.KeyDelete, fyne.KeyBackspace:
			deleteAct()
		}
	})

	center := container.NewBorder(toolbar, status, nil, nil, pc)
	split := container.NewHSplit(left, container.NewHSplit(center, right))
	split.SetOffset(0.18)
	w.SetContent(split)

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})
	if ws.Bootstrapped {
		status.SetText("Created a new workspace in " + ws.DataDir)
	}

	w.ShowAndRun()

	cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ccancel()
	if err := ws.Close(cctx); err != nil {
		l.Error("close workspace", slog.Any("err", err))
		return err
	}
	l.Info("UI closed")
	return nil
}

// deleteActivePage removes the active page once confirm accepts. The last page may
// go as well; the canvas then stays empty until a page is added.
func deleteActivePage(st *store.Store, confirm func(msg string, done func(bool))) {
	id := st.ActivePageID()
	if id == "" {
		return
	}
	msg := "Delete the current page and all its components?"
	if len(st.Pages()) == 1 {
		msg = "Delete the last page? The canvas stays empty until you add a page."
	}
	confirm(msg, func(ok bool) {
		if ok {
			st.DeletePage(id)
		}
	})
}
