// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// EnvDebug enables debug-level logging when set to a non-empty value.
const EnvDebug = "RELGATE_DEBUG"

// NewLogger creates the structured logger for CLI runs. When stderr is
// a terminal it uses slog.TextHandler for human-readable output; when
// stderr is piped or redirected (CI, scripts) it uses slog.JSONHandler
// so log lines stay machine-parseable next to the report JSON.
//
// Log output goes to stderr only. Stdout carries command results: the
// gate summary table, generated manifests, report JSON.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv(EnvDebug) != "" {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
