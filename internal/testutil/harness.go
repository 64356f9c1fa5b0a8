// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package testutil holds the helpers shared by package tests: a thread-safe
// log buffer, a context carrying a logger and a diagnostics collector, and a
// way to lay out HCL fixtures on disk.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// TestContext bundles what NewContext sets up.
type TestContext struct {
	Ctx       context.Context
	Collector *diag.Collector
	Logs      *SafeBuffer
}

// NewContext returns a context with a trace-level text logger writing into a
// buffer and a fresh diagnostics collector. Set AMBIGRID_TEST_LOGS=true to
// dump the captured log when the test finishes.
func NewContext(t *testing.T) *TestContext {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{
		Level:       ctxlog.LevelTrace,
		ReplaceAttr: ctxlog.ReplaceLevelNames,
	}))
	collector := diag.NewCollector()
	ctx := diag.WithCollector(ctxlog.WithLogger(context.Background(), logger), collector)

	t.Cleanup(func() {
		if os.Getenv("AMBIGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return &TestContext{Ctx: ctx, Collector: collector, Logs: logs}
}

// Errors returns the diagnostics of a category at error severity or above.
func (tc *TestContext) Errors(cat diag.Category) []diag.Diagnostic {
	return tc.Collector.Filter(cat, diag.SeverityError)
}

// WriteFiles writes the given relative path -> content map under a fresh
// temporary directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return root
}
