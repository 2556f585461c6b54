/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestMigrations_UpgradeV1ToV2 ensures that an older DB (schema=1) is migrated to schemaVersion (2) and new indexes exist.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	dir := t.TempDir()
	path := DBPath(dir)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE IF NOT EXISTS crash_snapshots (id INTEGER PRIMARY KEY, ts TEXT NOT NULL, reason TEXT, body TEXT NOT NULL);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	mdb, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer mdb.Close()
	schema, err := mdb.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("expected schema %d after migration, got %d", schemaVersion, schema)
	}
	var cnt int
	if err := mdb.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_crash_snapshots_ts'`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected crash snapshot index after migration, got %d", cnt)
	}
}

func TestOpenFreshDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if v, err := db.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("schema version = %d, %v", v, err)
	}
	if err := db.QuickCheck(ctx); err != nil {
		t.Fatalf("QuickCheck: %v", err)
	}
	if _, err := os.Stat(db.Path()); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if err := db.SetMeta(ctx, "last_export", "pdf"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if v, _ := db.Meta(ctx, "last_export"); v != "pdf" {
		t.Fatalf("Meta = %q", v)
	}
	if v, err := db.Meta(ctx, "missing"); err != nil || v != "" {
		t.Fatalf("Meta(missing) = %q, %v", v, err)
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for blank data dir")
	}
}
