/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"errors"
	"log/slog"
)

type ctxKey int

const (
	pageKey ctxKey = iota
	componentKey
)

// ContextWithPage tags ctx so records logged with it carry page=<id>.
func ContextWithPage(ctx context.Context, pageID string) context.Context {
	return context.WithValue(ctx, pageKey, pageID)
}

// ContextWithComponent tags ctx so records logged with it carry component_id=<id>.
func ContextWithComponent(ctx context.Context, componentID string) context.Context {
	return context.WithValue(ctx, componentKey, componentID)
}

// Target returns the page and component ids ctx was tagged with.
func Target(ctx context.Context) (pageID, componentID string) {
	if ctx == nil {
		return "", ""
	}
	pageID, _ = ctx.Value(pageKey).(string)
	componentID, _ = ctx.Value(componentKey).(string)
	return pageID, componentID
}

// editorContext copies the page and component tags of the context onto each record.
type editorContext struct{ next slog.Handler }

func (h editorContext) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h editorContext) Handle(ctx context.Context, r slog.Record) error {
	page, comp := Target(ctx)
	if page != "" {
		r.AddAttrs(slog.String("page", page))
	}
	if comp != "" {
		r.AddAttrs(slog.String("component_id", comp))
	}
	return h.next.Handle(ctx, r)
}

func (h editorContext) WithAttrs(as []slog.Attr) slog.Handler {
	return editorContext{next: h.next.WithAttrs(as)}
}

func (h editorContext) WithGroup(name string) slog.Handler {
	return editorContext{next: h.next.WithGroup(name)}
}

// fanout sends each record to every sink that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
