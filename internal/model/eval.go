// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/ambigrid/internal/hclutil"
	"github.com/specialistvlad/ambigrid/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Reference is a parsed `instance.<context>.<name>[index]` expression.
type Reference struct {
	Context string
	Name    string
	Index   int
}

// Address returns the address of the referenced instance.
func (r Reference) Address() *nodeid.Address {
	return nodeid.Instance(r.Context, r.Name, r.Index)
}

// ReferenceForExpr reports whether expr is an instance reference and parses
// it. Expressions that do not start with `instance` are not references.
func ReferenceForExpr(expr hcl.Expression) (Reference, bool, hcl.Diagnostics) {
	traversal, travDiags := hcl.AbsTraversalForExpr(expr)
	if travDiags.HasErrors() || traversal.RootName() != "instance" {
		return Reference{}, false, nil
	}

	ref := Reference{Index: -1}
	invalid := func(detail string) (Reference, bool, hcl.Diagnostics) {
		return ref, true, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid instance reference",
			Detail:   fmt.Sprintf("%s: %s", hclutil.TraversalKey(traversal), detail),
			Subject:  expr.Range().Ptr(),
		}}
	}

	rest := traversal[1:]
	if len(rest) < 2 || len(rest) > 3 {
		return invalid("expected instance.<context>.<name> or instance.<context>.<name>[<index>]")
	}
	ctxStep, ok1 := rest[0].(hcl.TraverseAttr)
	nameStep, ok2 := rest[1].(hcl.TraverseAttr)
	if !ok1 || !ok2 {
		return invalid("context and name must be attribute steps")
	}
	ref.Context, ref.Name = ctxStep.Name, nameStep.Name

	if len(rest) == 3 {
		idx, ok := rest[2].(hcl.TraverseIndex)
		if !ok || !idx.Key.Type().Equals(cty.Number) {
			return invalid("the index must be a number")
		}
		bf := idx.Key.AsBigFloat()
		n, acc := bf.Int64()
		if !bf.IsInt() || acc != 0 || n < 0 {
			return invalid("the index must be a non-negative whole number")
		}
		ref.Index = int(n)
	}
	return ref, true, nil
}

// EvalContext returns the evaluation context for instance values: the cty
// standard library functions, plus `count.index` for expanded copies.
func EvalContext(index int) *hcl.EvalContext {
	ctx := &hcl.EvalContext{Functions: functions}
	if index >= 0 {
		ctx.Variables = map[string]cty.Value{
			"count": cty.ObjectVal(map[string]cty.Value{"index": cty.NumberIntVal(int64(index))}),
		}
	}
	return ctx
}

var functions = map[string]function.Function{
	"abs":        stdlib.AbsoluteFunc,
	"ceil":       stdlib.CeilFunc,
	"chomp":      stdlib.ChompFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"concat":     stdlib.ConcatFunc,
	"contains":   stdlib.ContainsFunc,
	"distinct":   stdlib.DistinctFunc,
	"flatten":    stdlib.FlattenFunc,
	"floor":      stdlib.FloorFunc,
	"format":     stdlib.FormatFunc,
	"formatlist": stdlib.FormatListFunc,
	"join":       stdlib.JoinFunc,
	"jsondecode": stdlib.JSONDecodeFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"keys":       stdlib.KeysFunc,
	"length":     stdlib.LengthFunc,
	"lower":      stdlib.LowerFunc,
	"max":        stdlib.MaxFunc,
	"merge":      stdlib.MergeFunc,
	"min":        stdlib.MinFunc,
	"range":      stdlib.RangeFunc,
	"replace":    stdlib.ReplaceFunc,
	"reverse":    stdlib.ReverseListFunc,
	"setunion":   stdlib.SetUnionFunc,
	"sort":       stdlib.SortFunc,
	"split":      stdlib.SplitFunc,
	"substr":     stdlib.SubstrFunc,
	"title":      stdlib.TitleFunc,
	"tolist":     stdlib.MakeToFunc(cty.List(cty.DynamicPseudoType)),
	"tomap":      stdlib.MakeToFunc(cty.Map(cty.DynamicPseudoType)),
	"toset":      stdlib.MakeToFunc(cty.Set(cty.DynamicPseudoType)),
	"trimspace":  stdlib.TrimSpaceFunc,
	"upper":      stdlib.UpperFunc,
	"values":     stdlib.ValuesFunc,
	"zipmap":     stdlib.ZipmapFunc,
}

// Evaluate evaluates a plain value expression. Instance references are only
// allowed as the whole expression and are rejected here.
func Evaluate(expr hcl.Expression, evalCtx *hcl.EvalContext) (cty.Value, hcl.Diagnostics) {
	for _, t := range expr.Variables() {
		if t.RootName() == "instance" {
			return cty.NilVal, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported instance reference",
				Detail:   fmt.Sprintf("%s can only be used as a whole value, not inside an expression.", hclutil.TraversalKey(t)),
				Subject:  t.SourceRange().Ptr(),
			}}
		}
	}
	return expr.Value(evalCtx)
}
