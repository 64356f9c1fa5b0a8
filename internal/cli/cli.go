// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/ambigrid/internal/app"
	"github.com/specialistvlad/ambigrid/internal/graph"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
// Values are layered: defaults, then the configuration file, then flags that
// were set explicitly.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("ambigrid", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
ambigrid - resolves ambient properties of a typed instance model and exports
the resulting slice graph.

Usage:
  ambigrid [options] [MODEL_PATH...]

Arguments:
  MODEL_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	modelFlag := flagSet.StringArrayP("model", "m", nil, "Path to a model file or directory. Repeatable.")
	configFlag := flagSet.StringP("config", "c", "", "Path to a TOML configuration file.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Logging level: trace, debug, info, warn, error or fatal.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format: text or json.")
	exportFlag := flagSet.StringP("export", "o", "", "Write the exported graph to this file instead of stdout.")
	exportFormatFlag := flagSet.StringP("export-format", "f", string(defaults.ExportFormat), "Export format: json, yaml or cbor.")
	foldFlag := flagSet.Bool("fold-tracking", defaults.FoldTracking, "Fold tracked property usages into the exported edges.")
	omitFlag := flagSet.Bool("omit-values", defaults.OmitValues, "Leave resolved property values out of the export.")
	failFlag := flagSet.Bool("fail-on-fatal", defaults.FailOnFatal, "Exit with an error and skip the export when the build reports fatal diagnostics.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	if *configFlag != "" {
		if err := app.LoadConfigFile(*configFlag, &cfg); err != nil {
			return nil, false, usageError("%s", err.Error())
		}
		slog.Debug("Configuration file applied.", "path", *configFlag)
	}

	paths := append(append([]string(nil), *modelFlag...), flagSet.Args()...)
	if len(paths) > 0 {
		cfg.ModelPaths = paths
	}
	if len(cfg.ModelPaths) == 0 {
		slog.Debug("No model path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if flagSet.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if flagSet.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}
	if flagSet.Changed("export") {
		cfg.ExportPath = *exportFlag
	}
	if flagSet.Changed("export-format") {
		f, err := graph.ParseFormat(strings.ToLower(*exportFormatFlag))
		if err != nil {
			return nil, false, usageError("invalid export-format: %v", err)
		}
		cfg.ExportFormat = f
	}
	if flagSet.Changed("fold-tracking") {
		cfg.FoldTracking = *foldFlag
	}
	if flagSet.Changed("omit-values") {
		cfg.OmitValues = *omitFlag
	}
	if flagSet.Changed("fail-on-fatal") {
		cfg.FailOnFatal = *failFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return &cfg, false, nil
}
