// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/ambigrid/internal/builder"
	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/model"
)

// Run loads the model, builds it and writes the exported graph.
func (a *App) Run(ctx context.Context) (*builder.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx = diag.WithCollector(ctx, diag.NewCollector())
	a.logger.Debug("App.Run method started.", "paths", a.config.ModelPaths)

	m, err := model.LoadRecursively(ctx, a.config.ModelPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	res, err := a.builder.Build(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	if err := res.Fatal(); err != nil {
		if a.config.FailOnFatal {
			return res, fmt.Errorf("build reported fatal diagnostics: %w", err)
		}
		a.logger.Warn("Exporting despite fatal diagnostics.", "fatal", res.Collector.Count(diag.SeverityFatal))
	}

	if err := a.export(res); err != nil {
		return res, err
	}

	a.logger.Info("Model exported.",
		"nodes", len(res.Graph.Nodes),
		"format", string(a.config.ExportFormat),
		"warnings", res.Collector.Count(diag.SeverityWarn),
		"errors", res.Collector.Count(diag.SeverityError))
	a.logger.Debug("App.Run method finished.")
	return res, nil
}

func (a *App) export(res *builder.Result) error {
	path := a.config.ExportPath
	if path == "" || path == "-" {
		return a.encode(a.outW, res)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := a.encode(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	a.logger.Debug("Export written.", "path", path)
	return nil
}

func (a *App) encode(w io.Writer, res *builder.Result) error {
	if err := res.Graph.Encode(w, a.config.ExportFormat); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}
