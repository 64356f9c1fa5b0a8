// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package resolve

import (
	"context"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/slice"
	"github.com/specialistvlad/ambigrid/internal/typesys"
)

// compute runs the resolution rules for one cell.
func (e *Engine) compute(ctx context.Context, leaf *slice.Slice, c *slice.Cell) slice.Value {
	entry := c.Entry
	st := leaf.Instance.Setting(entry.Index)

	if !st.Final.IsMissing() {
		return e.normalize(entry, st.Final)
	}

	visible := entry.Kind.ContainerVisible()
	if st.Deferred {
		return e.normalize(entry, e.fromContainers(ctx, leaf, entry, -1))
	}

	if entry.Mergeable && visible {
		return e.normalize(entry, e.merge(ctx, leaf, entry, e.fromContainers(ctx, leaf, entry, -1), e.own(ctx, leaf, c, st)))
	}

	if visible && st.Depth < leaf.Depth() {
		if v := e.fromContainers(ctx, leaf, entry, st.Depth); !v.IsMissing() {
			return e.normalize(entry, v)
		}
	}

	return e.normalize(entry, e.own(ctx, leaf, c, st))
}

// own is the instance's own value: the configured one, else a contract
// target, else whatever the hook supplies.
func (e *Engine) own(ctx context.Context, leaf *slice.Slice, c *slice.Cell, st slice.Setting) slice.Value {
	if !st.Value.IsMissing() {
		return st.Value
	}
	if c.Entry.Kind == decl.KindContract {
		if v := e.contract(ctx, leaf, c.Entry); !v.IsMissing() {
			return v
		}
	}
	return e.callHook(ctx, leaf, c)
}

// fromContainers looks the property up on the containers of every level of
// leaf deeper than above, deepest first. An ambiguous container stops the
// search.
func (e *Engine) fromContainers(ctx context.Context, leaf *slice.Slice, entry *decl.Entry, above int) slice.Value {
	for lvl := leaf; lvl != nil && lvl.Depth() > above; lvl = lvl.Generalization {
		if r := lvl.ContainerRef; r != nil && r.Err() != nil {
			return slice.Missing
		}
		container := lvl.LocalContainer()
		if container == nil {
			continue
		}
		if v := e.fromContainer(ctx, leaf, entry, container); !v.IsMissing() {
			ctxlog.Trace(ctx, "Inherited property from container.",
				"slice", leaf.ID(), "property", entry.Name, "container", container.ID(), "level", lvl.TypeName())
			return v
		}
	}
	return slice.Missing
}

// fromContainer reads a same-named ambient property or contract from the
// container's chain.
func (e *Engine) fromContainer(ctx context.Context, leaf *slice.Slice, entry *decl.Entry, container *slice.Slice) slice.Value {
	cleaf := container.Leaf()
	ce, ok := cleaf.Property(entry.Name)
	if !ok || !ce.Kind.ContainerVisible() {
		return slice.Missing
	}
	v := e.eval(ctx, cleaf, ce.Index)
	out, err := slice.Coerce(v, entry.Type)
	if err != nil {
		diag.Warnf(ctx, diag.Assignment, leaf.ID()+"."+entry.Name,
			"value inherited from %s does not fit: %v", cleaf.ID(), err)
		return slice.Missing
	}
	return out
}

// contract finds a value for a contract property: the nearest container in
// the container chain whose type satisfies the declared type, then the
// contract's own target reference.
func (e *Engine) contract(ctx context.Context, leaf *slice.Slice, entry *decl.Entry) slice.Value {
	if entry.Type.IsNamed() {
		seen := map[*slice.Instance]struct{}{leaf.Instance: {}}
		for c := leaf.Container(); c != nil; c = c.Leaf().Container() {
			if _, loop := seen[c.Instance]; loop {
				break
			}
			seen[c.Instance] = struct{}{}
			if up := c.Leaf().As(entry.Type.Name()); up != nil {
				ctxlog.Trace(ctx, "Contract satisfied by container.", "slice", leaf.ID(), "property", entry.Name, "container", up.ID())
				return slice.Ref(up)
			}
		}
	}
	if r := leaf.AmbientTarget(entry.Index); r != nil && r.Slice() != nil {
		return slice.Ref(r.Slice())
	}
	return slice.Missing
}

func (e *Engine) callHook(ctx context.Context, leaf *slice.Slice, c *slice.Cell) slice.Value {
	if e.hook == nil {
		return slice.Missing
	}
	if v, done := c.HookResult(); done {
		return v
	}
	v, ok := e.hook(ctx, Handle{Leaf: leaf, Entry: c.Entry})
	if !ok {
		v = slice.Missing
	}
	out, err := slice.Coerce(v, c.Entry.Type)
	if err != nil {
		diag.Errorf(ctx, diag.Assignment, leaf.ID()+"."+c.Entry.Name, "hook value rejected: %v", err)
		out = slice.Missing
	}
	c.SetHookResult(out)
	return out
}

// merge combines the inherited value with the instance's own.
func (e *Engine) merge(ctx context.Context, leaf *slice.Slice, entry *decl.Entry, inherited, own slice.Value) slice.Value {
	switch {
	case inherited.IsMissing():
		return own
	case own.IsMissing():
		return inherited
	}
	subject := leaf.ID() + "." + entry.Name
	if inherited.IsRef() || own.IsRef() {
		diag.Errorf(ctx, diag.Merge, subject, "references cannot be merged, keeping %s", own)
		return own
	}
	merged, err := typesys.MergeValues(inherited.Data(), own.Data())
	if err == nil {
		merged, err = typesys.ConvertData(merged, entry.Type)
	}
	if err != nil {
		diag.Errorf(ctx, diag.Merge, subject, "cannot merge into inherited value, keeping %s: %v", own, err)
		return own
	}
	ctxlog.Trace(ctx, "Merged property with inherited value.", "slice", leaf.ID(), "property", entry.Name)
	return slice.Data(merged)
}

// normalize moves a reference to the most abstract slice still satisfying
// the declared type.
func (e *Engine) normalize(entry *decl.Entry, v slice.Value) slice.Value {
	if !v.IsRef() {
		return v
	}
	if entry.Type.IsNamed() {
		if up := v.Slice().As(entry.Type.Name()); up != nil {
			return slice.Ref(up)
		}
		return v
	}
	return slice.Ref(v.Slice().Root())
}
