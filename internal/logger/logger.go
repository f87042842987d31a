// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide slog logger. The level is
// adjustable at runtime through a LevelVar so config and flags can
// raise verbosity after init.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the shared structured logger. It is never nil after
// package init.
var Logger *slog.Logger

var (
	level = new(slog.LevelVar)
	mu    sync.Mutex
)

func init() {
	level.Set(ParseLevel(os.Getenv("CAGED_LOG_LEVEL")))
	Logger = slog.New(newHandler(os.Stderr, false))
}

func newHandler(w io.Writer, useJSON bool) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if useJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel adjusts the shared logger's level at runtime.
func SetLevel(lvl slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level.Set(lvl)
}

// SetOutput rebuilds the shared logger over a new writer, keeping the
// current level. Used by tests and by serve mode for JSON output.
func SetOutput(w io.Writer, useJSON bool) {
	mu.Lock()
	defer mu.Unlock()
	Logger = slog.New(newHandler(w, useJSON))
}

// WithRule returns a child logger scoped to one rule evaluation.
func WithRule(ruleID string) *slog.Logger {
	return Logger.With("rule", ruleID)
}
