// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/specialistvlad/ambigrid/internal/typesys"
)

// typeKeywords are the identifiers reserved by HCL type expressions. Any
// other bare identifier in a type position names a model type.
var typeKeywords = map[string]struct{}{
	"string": {}, "number": {}, "bool": {}, "any": {},
	"list": {}, "map": {}, "set": {}, "object": {}, "tuple": {},
}

// IsTypeKeyword reports whether name is reserved by the type expression syntax.
func IsTypeKeyword(name string) bool {
	_, ok := typeKeywords[name]
	return ok
}

// ParseType converts a `type = ...` expression into a typesys.Type. A nil
// expression yields typesys.Any.
func ParseType(expr hcl.Expression) (typesys.Type, hcl.Diagnostics) {
	if expr == nil {
		return typesys.Any, nil
	}

	if kw := hcl.ExprAsKeyword(expr); kw != "" && !IsTypeKeyword(kw) {
		return typesys.Named(kw), nil
	}

	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return typesys.Any, diags
	}
	if ty.HasDynamicTypes() && !ty.Equals(typesys.Any.Cty()) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   fmt.Sprintf("Collection types cannot contain 'any' (got %s). Use 'any' for the whole property instead.", ty.FriendlyNameForConstraint()),
			Subject:  expr.Range().Ptr(),
		})
		return typesys.Any, diags
	}
	return typesys.Of(ty), diags
}
