// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/specialistvlad/ambigrid/internal/graph"
)

// Config holds everything an App run needs.
type Config struct {
	ModelPaths []string // .hcl files or directories

	LogFormat string
	LogLevel  string

	// ExportPath is where the graph is written. Empty or "-" is the App's
	// output writer.
	ExportPath   string
	ExportFormat graph.Format
	FoldTracking bool
	OmitValues   bool

	// FailOnFatal makes Run return an error, without exporting, when the
	// build reported fatal diagnostics.
	FailOnFatal bool
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		LogFormat:    "text",
		LogLevel:     "info",
		ExportFormat: graph.FormatJSON,
		FailOnFatal:  true,
	}
}

// fileConfig mirrors the TOML configuration file.
type fileConfig struct {
	Model        []string `toml:"model"`
	LogFormat    string   `toml:"log_format"`
	LogLevel     string   `toml:"log_level"`
	Export       string   `toml:"export"`
	ExportFormat string   `toml:"export_format"`
	FoldTracking bool     `toml:"fold_tracking"`
	OmitValues   bool     `toml:"omit_values"`
	FailOnFatal  bool     `toml:"fail_on_fatal"`
}

// LoadConfigFile applies the keys defined in a TOML file on top of cfg. Keys
// the file does not define keep their current value.
func LoadConfigFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("load config file: unknown keys: %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("model") {
		cfg.ModelPaths = raw.Model
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(raw.LogFormat))
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("export") {
		cfg.ExportPath = strings.TrimSpace(raw.Export)
	}
	if meta.IsDefined("export_format") {
		f, err := graph.ParseFormat(strings.TrimSpace(raw.ExportFormat))
		if err != nil {
			return fmt.Errorf("parse export_format: %w", err)
		}
		cfg.ExportFormat = f
	}
	if meta.IsDefined("fold_tracking") {
		cfg.FoldTracking = raw.FoldTracking
	}
	if meta.IsDefined("omit_values") {
		cfg.OmitValues = raw.OmitValues
	}
	if meta.IsDefined("fail_on_fatal") {
		cfg.FailOnFatal = raw.FailOnFatal
	}
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if len(c.ModelPaths) == 0 {
		return errors.New("at least one model path is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level %q: must be 'trace', 'debug', 'info', 'warn', 'error' or 'fatal'", c.LogLevel)
	}
	if _, err := graph.ParseFormat(string(c.ExportFormat)); err != nil {
		return err
	}
	return nil
}
