// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package ctxlog provides a context key for safely passing a slog.Logger
// instance through context.Context, plus the two extra severities the
// resolution engine reports with: trace and fatal.
package ctxlog

import (
	"context"
	"log/slog"
)

const (
	// LevelTrace sits below slog.LevelDebug and is used for per-cell
	// resolution chatter.
	LevelTrace = slog.Level(-8)
	// LevelFatal sits above slog.LevelError. Only ambiguous context lookups
	// and cyclic container chains are reported at this level.
	LevelFatal = slog.Level(12)
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

// loggerKey is the key for the slog.Logger in a context.Context.
var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the slog.Logger from a context. It panics when no
// logger was attached, since every entrypoint is expected to install one.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	panic("ctxlog: logger missing from context")
}

// Trace logs at LevelTrace using the logger stored in ctx.
func Trace(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, LevelTrace, msg, args...)
}

// Fatal logs at LevelFatal using the logger stored in ctx. It does not exit;
// callers decide how far the failure propagates.
func Fatal(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, LevelFatal, msg, args...)
}

// ParseLevel maps a configuration string to a slog level. Unknown values
// fall back to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "fatal":
		return LevelFatal
	default:
		return slog.LevelInfo
	}
}

// ReplaceLevelNames renders the custom levels as TRACE and FATAL instead of
// slog's default "DEBUG-4" / "ERROR+4" spelling. Use it as
// slog.HandlerOptions.ReplaceAttr.
func ReplaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch level {
	case LevelTrace:
		a.Value = slog.StringValue("TRACE")
	case LevelFatal:
		a.Value = slog.StringValue("FATAL")
	}
	return a
}
