// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file parses `property` blocks into declarations.
//
// Why is `writeable` true by default?
//
// In metadata files nearly every property is meant to be configurable from an
// instance block, so the common case needs no attribute. Read-only properties
// opt out with `writeable = false` and can then only receive final values or
// inherited ones.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/hclutil"
)

var propertyBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "optional"},
		{Name: "writeable"},
		{Name: "mergeable"},
		{Name: "context"},
		{Name: "kind"},
	},
}

// parseProperties decodes the property blocks of one type, in source order.
func parseProperties(owner string, blocks hcl.Blocks) ([]*decl.Declaration, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var out []*decl.Declaration

	for _, block := range blocks.OfType("property") {
		d, blockDiags := parseProperty(owner, block)
		diags = append(diags, blockDiags...)
		if d != nil {
			out = append(out, d)
		}
	}
	return out, diags
}

func parseProperty(owner string, block *hcl.Block) (*decl.Declaration, hcl.Diagnostics) {
	content, diags := block.Body.Content(propertyBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs := content.Attributes

	d := &decl.Declaration{Name: block.Labels[0], Owner: owner, Writeable: true}

	// Without a type attribute the type stays unset: a redeclaration then
	// keeps the inherited type and a new declaration becomes `any`.
	if attr, ok := attrs["type"]; ok {
		ty, typeDiags := hclutil.ParseType(attr.Expr)
		diags = append(diags, typeDiags...)
		d.Type = ty
	}

	if attr, ok := attrs["optional"]; ok {
		diags = append(diags, decodeBool(attr, &d.Optional)...)
		d.ExplicitOptional = true
	}
	diags = append(diags, decodeBool(attrs["writeable"], &d.Writeable)...)
	diags = append(diags, decodeBool(attrs["mergeable"], &d.Mergeable)...)
	diags = append(diags, decodeString(attrs["context"], &d.Context)...)

	var kind string
	diags = append(diags, decodeString(attrs["kind"], &kind)...)
	k, err := decl.ParseKind(kind)
	if err != nil {
		diags = append(diags, attrError(attrs["kind"], "Invalid property kind", err))
	}
	d.Kind = k

	if d.Kind == decl.KindContract && !d.Type.IsZero() && !d.Type.IsNamed() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid contract type",
			Detail:   fmt.Sprintf("Contract %q must be typed with a model type name, got %s.", d.Name, d.Type),
			Subject:  block.DefRange.Ptr(),
		})
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return d, diags
}
