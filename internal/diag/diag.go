// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package diag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
)

// Severity is the level a finding is reported at.
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
	SeverityFatal
)

var severityNames = [...]string{"trace", "info", "warn", "error", "fatal"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

func (s Severity) level() slog.Level {
	switch s {
	case SeverityTrace:
		return ctxlog.LevelTrace
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return ctxlog.LevelFatal
	}
}

// Category groups findings by the stage that produced them.
type Category string

const (
	Structural Category = "structural"
	Reference  Category = "reference"
	Resolution Category = "resolution"
	Assignment Category = "assignment"
	Merge      Category = "merge"
	Ambiguity  Category = "ambiguity"
	Cycle      Category = "cycle"
)

// Diagnostic is a single recorded finding.
type Diagnostic struct {
	Severity Severity
	Category Category
	// Subject names what the finding is about, e.g. "Derived.Name" or a slice ID.
	Subject string
	Message string
}

// Error implements the error interface so fatal findings can be returned as errors.
func (d Diagnostic) Error() string {
	if d.Subject == "" {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Category, d.Message)
	}
	return fmt.Sprintf("%s %s (%s): %s", d.Severity, d.Category, d.Subject, d.Message)
}

// Collector accumulates diagnostics for one build session.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// All returns a copy of every recorded diagnostic in report order.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the diagnostics of the given category, optionally limited to
// a minimum severity.
func (c *Collector) Filter(cat Category, min Severity) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, d := range c.items {
		if d.Category == cat && d.Severity >= min {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many diagnostics were reported at or above min.
func (c *Collector) Count(min Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity >= min {
			n++
		}
	}
	return n
}

// HasFatal reports whether any fatal diagnostic was recorded.
func (c *Collector) HasFatal() bool {
	return c.Count(SeverityFatal) > 0
}

// FatalErr joins every fatal diagnostic into a single error, or returns nil.
func (c *Collector) FatalErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, d := range c.items {
		if d.Severity == SeverityFatal {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}

type key struct{}

// WithCollector returns a context carrying c.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, key{}, c)
}

// FromContext returns the collector stored in ctx, or nil.
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(key{}).(*Collector)
	return c
}

// Report logs a finding and records it on the context's collector, if any.
func Report(ctx context.Context, sev Severity, cat Category, subject, msg string) Diagnostic {
	d := Diagnostic{Severity: sev, Category: cat, Subject: subject, Message: msg}
	ctxlog.FromContext(ctx).Log(ctx, sev.level(), msg, "category", string(cat), "subject", subject)
	if c := FromContext(ctx); c != nil {
		c.add(d)
	}
	return d
}

// Warnf reports a warning.
func Warnf(ctx context.Context, cat Category, subject, format string, args ...any) Diagnostic {
	return Report(ctx, SeverityWarn, cat, subject, fmt.Sprintf(format, args...))
}

// Errorf reports a non-fatal error.
func Errorf(ctx context.Context, cat Category, subject, format string, args ...any) Diagnostic {
	return Report(ctx, SeverityError, cat, subject, fmt.Sprintf(format, args...))
}

// Fatalf reports a fatal finding. The caller is responsible for stopping the
// affected build path.
func Fatalf(ctx context.Context, cat Category, subject, format string, args ...any) Diagnostic {
	return Report(ctx, SeverityFatal, cat, subject, fmt.Sprintf(format, args...))
}
