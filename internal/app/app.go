// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/ambigrid/internal/builder"
	"github.com/specialistvlad/ambigrid/internal/graph"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	builder *builder.Builder
}

// NewApp creates an App. The exported graph goes to outW unless the config
// names a file; logs always go to logW. Extra builder options, such as a
// value hook, are passed through to every build.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...builder.Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	opts = append([]builder.Option{builder.WithExportOptions(graph.Options{
		FoldTracking: cfg.FoldTracking,
		OmitValues:   cfg.OmitValues,
	})}, opts...)

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		builder: builder.New(opts...),
	}
}
