/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file and a crash snapshot of the open
// document before the process exits.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"hrdesk/internal/document"
	applog "hrdesk/internal/log"
	"hrdesk/internal/storage"
	"hrdesk/internal/telemetry"
	"hrdesk/internal/version"
)

// ReportsDirName is the folder under the data dir holding crash reports.
const ReportsDirName = "crash"

// keepSnapshots bounds the crash_snapshots table.
const keepSnapshots = 5

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target is what Recover can save. Fields may be filled in after the deferred call
// is registered; a nil Target only writes a report to the temp dir.
type Target struct {
	DataDir  string
	DB       *storage.DB
	Snapshot func() document.Snapshot
}

// Recover captures a panic, logs it with the stack, writes a report file, stores a
// crash snapshot of the document when possible and exits with code 2.
//
// Usage: defer crash.Recover(target)
func Recover(t *Target) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(t, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if err := saveSnapshot(t, r); err != nil {
		l.Error("crash snapshot failed", slog.Any("err", err))
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func saveSnapshot(t *Target, reason any) (err error) {
	if t == nil || t.DB == nil || t.Snapshot == nil {
		return nil
	}
	// the document itself may be what panicked
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := t.DB.SaveCrashSnapshot(ctx, fmt.Sprint(reason), t.Snapshot(), time.Now()); err != nil {
		return err
	}
	_, err = t.DB.PruneCrashSnapshots(ctx, keepSnapshots)
	return err
}

func reportDir(t *Target) string {
	if t == nil || t.DataDir == "" {
		return os.TempDir()
	}
	dir := filepath.Join(t.DataDir, ReportsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.TempDir()
	}
	return dir
}

func writeReport(t *Target, panicVal any, stack []byte) (string, error) {
	now := time.Now()
	path := filepath.Join(reportDir(t), fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "HR Desk Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t != nil && t.DB != nil {
		_, _ = fmt.Fprintf(&buf, "Database: %s\n", t.DB.Path())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
