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
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"hrdesk/internal/document"
)

// Bootstrap layout used when no usable document is stored.
const (
	BootstrapPageName = "Main Page"
	BootstrapType     = "dashboard"
	BootstrapX        = 40
	BootstrapY        = 40
	BootstrapWidth    = 600
	BootstrapHeight   = 300
)

// BootstrapSnapshot returns the default document: one page holding one dashboard.
func BootstrapSnapshot(newID func() string, gridSize int) document.Snapshot {
	if newID == nil {
		newID = uuid.NewString
	}
	if gridSize <= 0 {
		gridSize = document.DefaultGridSize
	}
	w, h := float64(BootstrapWidth), float64(BootstrapHeight)
	pageID := newID()
	return document.Snapshot{
		Pages: []document.PageData{{
			ID:          pageID,
			Name:        BootstrapPageName,
			Background:  document.DefaultBackground,
			GridEnabled: true,
			GridSize:    gridSize,
			Components: []document.ComponentData{{
				ID:     newID(),
				Type:   BootstrapType,
				X:      BootstrapX,
				Y:      BootstrapY,
				Width:  &w,
				Height: &h,
				Props:  map[string]any{},
			}},
		}},
		ActivePageID: pageID,
	}
}

// LoadOrBootstrap returns the stored document, or the bootstrap document when nothing
// usable is stored. A bootstrapped document is saved right away; a failed save is
// returned alongside the usable snapshot.
func (r *Repository) LoadOrBootstrap(ctx context.Context, gridSize int) (document.Snapshot, bool, error) {
	snap, err := r.Load(ctx)
	if err == nil {
		_, verr := document.FromSnapshot(snap, nil)
		if verr == nil {
			return snap, false, nil
		}
		err = fmt.Errorf("%w: %v", ErrInvalidDocument, verr)
	}
	if !errors.Is(err, ErrNoDocument) {
		r.log.Warn("stored document unusable, bootstrapping", slog.Any("err", err))
	}
	snap = BootstrapSnapshot(nil, gridSize)
	if serr := r.Save(ctx, 0, snap); serr != nil {
		return snap, true, fmt.Errorf("persist bootstrap: %w", serr)
	}
	return snap, true, nil
}
