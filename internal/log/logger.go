/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the slog logger shared by the page builder. Records carry the
// subsystem that wrote them, and the page and component they concern when the
// caller passes a context tagged with ContextWithPage or ContextWithComponent.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"hrdesk/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLevel  = "HRD_LOG_LEVEL"
	EnvFormat = "HRD_LOG_FORMAT"
	EnvSource = "HRD_LOG_SOURCE"
	EnvFile   = "HRD_LOG_FILE"
)

// Options controls Init. Format is "console" (the default) or "json". A non-empty
// File adds a rotated JSON log next to the console output.
type Options struct {
	Level     string
	Format    string
	AddSource bool
	File      string

	// Console receives console output; nil means stderr.
	Console io.Writer
}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the application logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l == nil {
		l = Init(FromEnv())
	}
	return l
}

// Init builds the application logger from opts, installs it as slog.Default and
// returns it.
func Init(opts Options) *slog.Logger {
	lvl := ParseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var sinks []slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		sinks = append(sinks, slog.NewJSONHandler(console, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	default:
		sinks = append(sinks, newConsoleHandler(console, lvl, opts.AddSource))
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		rot := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		sinks = append(sinks, slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}
	var h slog.Handler = editorContext{next: fanout(sinks)}
	if len(sinks) == 1 {
		h = editorContext{next: sinks[0]}
	}
	l := slog.New(h).With(slog.String("app", "hrdesk"), slog.String("ver", version.Version))

	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// FromEnv reads Options from the HRD_LOG_* variables.
func FromEnv() Options {
	o := Options{Level: "info", Format: "console", File: strings.TrimSpace(os.Getenv(EnvFile))}
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		o.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		o.Format = v
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvSource))) {
	case "1", "true", "yes", "on":
		o.AddSource = true
	}
	return o
}

// ParseLevel maps a level name to a slog level. "warning" is accepted for warn and
// anything unrecognized yields info.
func ParseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithComponent returns a logger for one subsystem of the editor.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates l with the store or CLI operation being run.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }
