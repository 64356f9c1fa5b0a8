// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file contains the parsing and validation for the `count` attribute.
//
// Why must count be static?
//
// Expansion happens before any instance exists: the expanded copies are the
// nodes references resolve against. A count that depended on another
// instance's value could change the very set of nodes it was computed from.
package model

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// MaxCount is the largest accepted `count`.
const MaxCount = 10000

// parseCount returns the static count of an instance block, or -1 when the
// attribute is absent.
func parseCount(attrs hcl.Attributes) (int, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	countAttr, exists := attrs["count"]
	if !exists {
		return -1, diags
	}

	val, valDiags := countAttr.Expr.Value(EvalContext(-1))
	diags = append(diags, valDiags...)
	if valDiags.HasErrors() {
		return -1, diags
	}

	invalid := func(detail string) (int, hcl.Diagnostics) {
		return -1, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid count value",
			Detail:   detail,
			Subject:  countAttr.Expr.Range().Ptr(),
		})
	}

	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return invalid("The 'count' attribute must be a number.")
	}
	bf := val.AsBigFloat()
	if !bf.IsInt() {
		return invalid("The 'count' attribute must be a whole number.")
	}
	if bf.Sign() < 0 {
		return invalid("The 'count' attribute must not be negative.")
	}
	if bf.Cmp(big.NewFloat(MaxCount)) > 0 {
		return invalid(fmt.Sprintf("The 'count' attribute must not exceed %d.", MaxCount))
	}
	n, _ := bf.Int64()
	return int(n), diags
}
