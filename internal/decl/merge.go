// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package decl

import (
	"context"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/typesys"
)

// Merge folds own, the declarations of a type at specialization depth depth,
// into parent, the merged list of its generalization. It always returns a
// usable list; rule violations are reported to diag.
func Merge(ctx context.Context, h typesys.Hierarchy, depth int, own []*Declaration, parent List) List {
	if len(own) == 0 {
		return parent
	}

	out := make(List, len(parent), len(parent)+len(own))
	copy(out, parent)

	byName := make(map[string]int, len(parent)+len(own))
	for i, e := range parent {
		byName[e.Name] = i
	}

	// New entries go after everything inherited so an ancestor's visible
	// prefix never moves.
	split := len(out)
	declaredHere := make(map[string]struct{}, len(own))

	for _, d := range own {
		if d == nil {
			continue
		}
		if _, dup := declaredHere[d.Name]; dup {
			diag.Errorf(ctx, diag.Structural, d.Subject(),
				"property %q is declared more than once on %s; the later declaration is ignored", d.Name, d.Owner)
			continue
		}
		declaredHere[d.Name] = struct{}{}

		i, inherited := byName[d.Name]
		if !inherited {
			e := &Entry{
				Declaration: d.effective(),
				Index:       split,
				Depth:       depth,
			}
			out = append(out, e)
			byName[d.Name] = split
			split++
			ctxlog.Trace(ctx, "Declared new property.", "property", d.Subject(), "index", e.Index)
			continue
		}

		out[i] = override(ctx, h, depth, out[i], d)
		ctxlog.Trace(ctx, "Overrode inherited property.", "property", d.Subject(), "index", i)
	}

	return out
}

// override builds the entry for a redeclaration of base.
func override(ctx context.Context, h typesys.Hierarchy, depth int, base *Entry, d *Declaration) *Entry {
	eff := *d
	subject := d.Subject()

	if eff.Kind != base.Kind {
		diag.Errorf(ctx, diag.Structural, subject,
			"%s redeclares %s %q as %s; keeping %s", d.Owner, base.Kind, d.Name, eff.Kind, base.Kind)
		eff.Kind = base.Kind
	}

	switch {
	case eff.Type.IsZero():
		eff.Type = base.Type
	case !typesys.Assignable(h, base.Type, eff.Type):
		diag.Errorf(ctx, diag.Structural, subject,
			"type %s is not assignable to inherited type %s declared by %s; keeping %s",
			eff.Type, base.Type, base.Owner, base.Type)
		eff.Type = base.Type
	}

	switch {
	case !d.ExplicitOptional:
		eff.Optional = base.Optional
		eff.ExplicitOptional = base.ExplicitOptional
	case d.Optional && !base.Optional && base.ExplicitOptional:
		diag.Errorf(ctx, diag.Structural, subject,
			"%s cannot make property %q optional, %s declares it required", d.Owner, d.Name, base.Owner)
		eff.Optional = false
	}

	eff.Writeable = eff.Writeable || base.Writeable
	eff.Mergeable = eff.Mergeable || base.Mergeable
	if eff.Context == "" {
		eff.Context = base.Context
	}

	return &Entry{
		Declaration:    eff,
		Index:          base.Index,
		Depth:          depth,
		Generalization: base,
	}
}
