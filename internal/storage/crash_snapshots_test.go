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
	"testing"
	"time"

	"hrdesk/internal/document"
)

func TestCrashSnapshotsCRUD(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, ok, err := db.LatestCrashSnapshot(ctx); err != nil || ok {
		t.Fatalf("expected no crash snapshot, ok=%v err=%v", ok, err)
	}
	t0 := time.Now()
	for i := 0; i < 5; i++ {
		snap := document.Snapshot{Pages: []document.PageData{{ID: "p", Name: string(rune('a' + i)), Components: []document.ComponentData{}}}, ActivePageID: "p"}
		if err := db.SaveCrashSnapshot(ctx, "panic", snap, t0.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatalf("SaveCrashSnapshot %d: %v", i, err)
		}
	}
	cs, ok, err := db.LatestCrashSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestCrashSnapshot: ok=%v err=%v", ok, err)
	}
	if cs.Reason != "panic" || cs.Document.Pages[0].Name != "e" {
		t.Fatalf("unexpected latest snapshot: %+v", cs)
	}
	n, err := db.PruneCrashSnapshots(ctx, 2)
	if err != nil || n != 3 {
		t.Fatalf("PruneCrashSnapshots = %d, %v", n, err)
	}
	if n, _ := db.PruneCrashSnapshots(ctx, 0); n != 0 {
		t.Fatalf("keepLast 0 must not delete")
	}
}
