// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file parses `type` blocks into registry.TypeInfo values.
//
// Why decode straight into the registry's type?
//
// A type block is pure metadata: no expression in it depends on anything
// else in the model, so it can be evaluated at load time with a nil
// evaluation context. Decoding into registry.TypeInfo leaves the build
// session nothing to translate.
package model

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/ambigrid/internal/nodeid"
	"github.com/specialistvlad/ambigrid/internal/registry"
)

type hclType struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

var typeBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "extends"},
		{Name: "item"},
		{Name: "tracking"},
		{Name: "container"},
		{Name: "requires"},
		{Name: "required_by"},
		{Name: "children"},
		{Name: "groups"},
		{Name: "construct"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "property", LabelNames: []string{"name"}},
	},
}

func newTypeFromHCL(parsed *hclType) (*registry.TypeInfo, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	content, contentDiags := parsed.Body.Content(typeBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	info := &registry.TypeInfo{Name: parsed.Name, DefRange: parsed.Body.MissingItemRange()}
	if !nodeid.ValidName(parsed.Name) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type name",
			Detail:   fmt.Sprintf("Type name %q may only contain letters, digits, underscores and dashes.", parsed.Name),
			Subject:  info.DefRange.Ptr(),
		})
		return nil, diags
	}

	attrs := content.Attributes
	diags = append(diags, decodeString(attrs["extends"], &info.Parent)...)

	var item, tracking, container string
	diags = append(diags, decodeString(attrs["item"], &item)...)
	diags = append(diags, decodeString(attrs["tracking"], &tracking)...)
	diags = append(diags, decodeString(attrs["container"], &container)...)

	var err error
	if info.Item, err = registry.ParseItemKind(item); err != nil {
		diags = append(diags, attrError(attrs["item"], "Invalid item kind", err))
	}
	if info.Tracking, err = registry.ParseTrackingMode(tracking); err != nil {
		diags = append(diags, attrError(attrs["tracking"], "Invalid tracking mode", err))
	}
	if container != "" {
		ref, err := ParseTypeRef(container)
		if err != nil {
			diags = append(diags, attrError(attrs["container"], "Invalid container", err))
		} else {
			info.Container = &ref
		}
	}

	lists := []struct {
		name string
		dst  *[]registry.TypeRef
	}{
		{"requires", &info.Requires},
		{"required_by", &info.RequiredBy},
		{"children", &info.Children},
		{"groups", &info.Groups},
		{"construct", &info.Construct},
	}
	for _, l := range lists {
		refs, refDiags := decodeTypeRefs(attrs[l.name])
		diags = append(diags, refDiags...)
		*l.dst = refs
	}

	props, propDiags := parseProperties(parsed.Name, content.Blocks)
	diags = append(diags, propDiags...)
	info.Properties = props

	if diags.HasErrors() {
		return nil, diags
	}
	return info, diags
}

// ParseTypeRef parses "Type" or "context.Type".
func ParseTypeRef(s string) (registry.TypeRef, error) {
	var ref registry.TypeRef
	if ctxName, typeName, ok := strings.Cut(s, "."); ok {
		ref = registry.TypeRef{Type: typeName, Context: ctxName}
		if !nodeid.ValidName(ctxName) {
			return ref, fmt.Errorf("invalid context name %q in %q", ctxName, s)
		}
	} else {
		ref.Type = s
	}
	if !nodeid.ValidName(ref.Type) {
		return ref, fmt.Errorf("invalid type name %q in %q", ref.Type, s)
	}
	return ref, nil
}

func decodeTypeRefs(attr *hcl.Attribute) ([]registry.TypeRef, hcl.Diagnostics) {
	if attr == nil {
		return nil, nil
	}
	var raw []string
	diags := gohcl.DecodeExpression(attr.Expr, nil, &raw)
	if diags.HasErrors() {
		return nil, diags
	}
	refs := make([]registry.TypeRef, 0, len(raw))
	for _, s := range raw {
		ref, err := ParseTypeRef(s)
		if err != nil {
			diags = append(diags, attrError(attr, "Invalid type reference", err))
			continue
		}
		refs = append(refs, ref)
	}
	return refs, diags
}

func decodeString(attr *hcl.Attribute, dst *string) hcl.Diagnostics {
	if attr == nil {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, dst)
}

func decodeBool(attr *hcl.Attribute, dst *bool) hcl.Diagnostics {
	if attr == nil {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, dst)
}

func attrError(attr *hcl.Attribute, summary string, err error) *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
	}
	if attr != nil {
		d.Subject = attr.Expr.Range().Ptr()
	}
	return d
}
