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
	"log/slog"
	"time"

	"hrdesk/internal/document"
	applog "hrdesk/internal/log"
)

// DocumentKey is the fixed storage key of the page-builder document.
const DocumentKey = "hrdesk.document"

// ErrNoDocument is returned by Load when nothing has been stored yet.
var ErrNoDocument = errors.New("storage: no document stored")

// language=SQL
// dialect=SQLite
const selectDocumentSQL = `SELECT body FROM documents WHERE key = ?`

// language=SQL
// dialect=SQLite
const upsertDocumentSQL = `INSERT INTO documents(key, body, rev, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET body=excluded.body, rev=excluded.rev, updated_at=excluded.updated_at`

// Repository reads and writes the document record.
type Repository struct {
	db  *DB
	key string
	log *slog.Logger
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db, key: DocumentKey, log: applog.WithComponent("storage")}
}

// Load returns the stored document. A missing record yields ErrNoDocument; a record
// that fails to parse or validate yields a wrapped ErrInvalidDocument.
func (r *Repository) Load(ctx context.Context) (document.Snapshot, error) {
	var body string
	err := r.db.sql.QueryRowContext(ctx, selectDocumentSQL, r.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Snapshot{}, ErrNoDocument
	}
	if err != nil {
		return document.Snapshot{}, fmt.Errorf("read document: %w", err)
	}
	if err := ValidateDocument([]byte(body)); err != nil {
		return document.Snapshot{}, err
	}
	var snap document.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return document.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return snap, nil
}

// Save replaces the stored document.
func (r *Repository) Save(ctx context.Context, rev uint64, snap document.Snapshot) error {
	pages := make([]document.PageData, len(snap.Pages))
	for i, p := range snap.Pages {
		if p.Components == nil {
			p.Components = []document.ComponentData{}
		}
		pages[i] = p
	}
	snap.Pages = pages
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := r.db.sql.ExecContext(ctx, upsertDocumentSQL, r.key, string(data), int64(rev), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	r.log.Debug("document saved", slog.Uint64("rev", rev), slog.Int("bytes", len(data)))
	return nil
}

// SaveRaw stores body as-is. It exists for import tooling and tests exercising
// recovery from damaged records.
func (r *Repository) SaveRaw(ctx context.Context, body string) error {
	_, err := r.db.sql.ExecContext(ctx, upsertDocumentSQL, r.key, body, 0, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
