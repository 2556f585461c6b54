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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hrdesk/internal/document"
)

// language=SQL
// dialect=SQLite
const insertCrashSnapshotSQL = `INSERT INTO crash_snapshots(ts, reason, body) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestCrashSnapshotSQL = `SELECT ts, reason, body FROM crash_snapshots ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const pruneCrashSnapshotsSQL = `DELETE FROM crash_snapshots WHERE id NOT IN (
	SELECT id FROM crash_snapshots ORDER BY ts DESC, id DESC LIMIT ?
)`

// CrashSnapshot is a document captured while handling a panic.
type CrashSnapshot struct {
	TS       time.Time
	Reason   string
	Document document.Snapshot
}

// SaveCrashSnapshot stores snap with a timestamp and reason.
func (d *DB) SaveCrashSnapshot(ctx context.Context, reason string, snap document.Snapshot, ts time.Time) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal crash snapshot: %w", err)
	}
	_, err = d.sql.ExecContext(ctx, insertCrashSnapshotSQL, ts.UTC().Format(time.RFC3339Nano), reason, string(data))
	return err
}

// LatestCrashSnapshot returns the newest crash snapshot; ok is false when there is none.
func (d *DB) LatestCrashSnapshot(ctx context.Context) (CrashSnapshot, bool, error) {
	var tsStr, body string
	var reason sql.NullString
	err := d.sql.QueryRowContext(ctx, selectLatestCrashSnapshotSQL).Scan(&tsStr, &reason, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return CrashSnapshot{}, false, nil
	}
	if err != nil {
		return CrashSnapshot{}, false, err
	}
	var cs CrashSnapshot
	cs.Reason = reason.String
	if ts, perr := time.Parse(time.RFC3339Nano, tsStr); perr == nil {
		cs.TS = ts
	}
	if err := json.Unmarshal([]byte(body), &cs.Document); err != nil {
		return CrashSnapshot{}, false, fmt.Errorf("parse crash snapshot: %w", err)
	}
	return cs, true, nil
}

// PruneCrashSnapshots keeps at most keepLast snapshots and deletes older ones.
func (d *DB) PruneCrashSnapshots(ctx context.Context, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := d.sql.ExecContext(ctx, pruneCrashSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
