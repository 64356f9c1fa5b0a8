// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package builder

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/model"
	"github.com/specialistvlad/ambigrid/internal/slice"
)

// applyValues configures one instance from its block. Rejected assignments
// are reported by the slice and skipped.
func applyValues(ctx context.Context, byID map[string]*slice.Instance, bi builtInstance) {
	leaf := bi.inst.Leaf()
	id := bi.inst.ID()

	for _, level := range bi.decl.Levels {
		target := leaf
		if level.Type != "" {
			target = leaf.As(level.Type)
			if target == nil {
				diag.Errorf(ctx, diag.Assignment, id, "%s has no %s level", leaf.TypeName(), level.Type)
				continue
			}
		}
		for _, a := range level.Values {
			if v, ok := evalAssignment(ctx, byID, bi, a); ok {
				_ = target.Set(ctx, a.Name, v)
			}
		}
	}

	for _, name := range bi.decl.Defer {
		_ = leaf.Defer(ctx, name)
	}

	for _, a := range bi.decl.Final {
		if v, ok := evalAssignment(ctx, byID, bi, a); ok {
			_ = leaf.SetFinal(ctx, a.Name, v)
		}
	}
}

// evalAssignment turns an assignment into a value. A whole-expression
// instance reference becomes a reference to that instance's leaf.
func evalAssignment(ctx context.Context, byID map[string]*slice.Instance, bi builtInstance, a model.Assignment) (slice.Value, bool) {
	subject := bi.inst.Leaf().ID() + "." + a.Name

	ref, isRef, diags := model.ReferenceForExpr(a.Expr)
	if diags.HasErrors() {
		reportDiags(ctx, diag.Assignment, subject, diags)
		return slice.Missing, false
	}
	if isRef {
		target, ok := byID[ref.Address().String()]
		if !ok {
			diag.Errorf(ctx, diag.Reference, subject, "value references unknown instance %s", ref.Address())
			return slice.Missing, false
		}
		return slice.Ref(target.Leaf()), true
	}

	v, diags := model.Evaluate(a.Expr, model.EvalContext(bi.index))
	if diags.HasErrors() {
		reportDiags(ctx, diag.Assignment, subject, diags)
		return slice.Missing, false
	}
	return slice.Data(v), true
}

func reportDiags(ctx context.Context, cat diag.Category, subject string, diags hcl.Diagnostics) {
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			diag.Errorf(ctx, cat, subject, "%s: %s", d.Summary, d.Detail)
		}
	}
}
