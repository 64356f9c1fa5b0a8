// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package resolve

import (
	"context"
	"fmt"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/slice"
)

// Handle identifies the property a Hook is asked about.
type Handle struct {
	Leaf  *slice.Slice
	Entry *decl.Entry
}

// Name returns the property name.
func (h Handle) Name() string { return h.Entry.Name }

// Subject names the property in diagnostics, e.g. "main.b[0].Button.Text".
func (h Handle) Subject() string { return h.Leaf.ID() + "." + h.Entry.Name }

// Hook supplies values the model does not. It is called at most once per
// cell and reports false when it has nothing to offer.
type Hook func(ctx context.Context, h Handle) (slice.Value, bool)

// Option configures an Engine.
type Option func(*Engine)

// WithHook installs the external value hook.
func WithHook(h Hook) Option {
	return func(e *Engine) { e.hook = h }
}

// Engine resolves cells. It is not safe for concurrent use.
type Engine struct {
	hook  Hook
	stack []*frame
}

type frame struct {
	cell *slice.Cell
	// low is the lowest stack position re-entered by this frame or any
	// frame it called.
	low int
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve returns the resolved cell of a property index as seen from s. It
// returns nil when the index is beyond the cutoff of s. The same *Cell is
// returned whatever slice of the chain the call goes through.
func (e *Engine) Resolve(ctx context.Context, s *slice.Slice, index int) *slice.Cell {
	c := s.Cell(index)
	if c == nil {
		return nil
	}
	e.eval(ctx, s.Leaf(), index)
	return c
}

// ResolveName resolves a property by name.
func (e *Engine) ResolveName(ctx context.Context, s *slice.Slice, name string) (*slice.Cell, error) {
	entry, ok := s.Property(name)
	if !ok {
		return nil, fmt.Errorf("no property %q is visible on %s", name, s.ID())
	}
	return e.Resolve(ctx, s, entry.Index), nil
}

// ResolveAll resolves every property of an instance.
func (e *Engine) ResolveAll(ctx context.Context, inst *slice.Instance) []*slice.Cell {
	leaf := inst.Leaf()
	for i := range inst.Cells() {
		e.eval(ctx, leaf, i)
	}
	return inst.Cells()
}

func (e *Engine) position(c *slice.Cell) int {
	for i, f := range e.stack {
		if f.cell == c {
			return i
		}
	}
	return 0
}

// eval resolves one cell of leaf and returns its value. The value is only
// cached on the cell when no cycle was closed below the cell's own frame.
func (e *Engine) eval(ctx context.Context, leaf *slice.Slice, index int) slice.Value {
	c := leaf.Instance.Cell(index)
	if leaf.Instance.Aborted() {
		ctxlog.Trace(ctx, "Skipping property of aborted instance.", "slice", leaf.ID(), "property", c.Entry.Name)
		return slice.Missing
	}

	switch c.State() {
	case slice.ResolvedValue, slice.ResolvedMissing:
		return c.Value()
	case slice.InProgress:
		pos := e.position(c)
		if n := len(e.stack); n > 0 && pos < e.stack[n-1].low {
			e.stack[n-1].low = pos
		}
		ctxlog.Trace(ctx, "Re-entered property in progress.", "slice", leaf.ID(), "property", c.Entry.Name)
		return slice.Missing
	}

	pos := len(e.stack)
	f := &frame{cell: c, low: pos}
	e.stack = append(e.stack, f)
	c.Enter()

	v := e.compute(ctx, leaf, c)

	e.stack = e.stack[:pos]
	if f.low < pos {
		c.Reset()
		if parent := e.stack[pos-1]; f.low < parent.low {
			parent.low = f.low
		}
		ctxlog.Trace(ctx, "Property is part of a cycle, not caching.", "slice", leaf.ID(), "property", c.Entry.Name)
		return v
	}

	e.track(ctx, leaf, c.Entry, v)
	if v.IsMissing() && !c.Entry.Optional {
		diag.Errorf(ctx, diag.Resolution, leaf.ID()+"."+c.Entry.Name,
			"required property %q of type %s has no value", c.Entry.Name, c.Entry.Type)
	}
	c.Finish(v)
	ctxlog.Trace(ctx, "Resolved property.", "slice", leaf.ID(), "property", c.Entry.Name, "value", v.String())
	return v
}

// track records a tracked-by edge on the target of a reference value.
func (e *Engine) track(ctx context.Context, leaf *slice.Slice, entry *decl.Entry, v slice.Value) {
	if !v.IsRef() {
		return
	}
	target := v.Slice()
	if !target.Descriptor.Tracking.Enabled() {
		return
	}
	target.AddTrackedBy(leaf)
	ctxlog.Trace(ctx, "Tracked property usage.",
		"target", target.ID(), "holder", leaf.ID(), "property", entry.Name, "mode", target.Descriptor.Tracking.String())
}
