// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Instance, one `instance` block. Its values stay
// expressions: `count.index` differs per expanded copy.
package model

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/ambigrid/internal/hclutil"
	"github.com/specialistvlad/ambigrid/internal/nodeid"
)

// DefaultContext is the context of instances that do not name one.
const DefaultContext = "default"

// Assignment is one `name = expression` line of a values block.
type Assignment struct {
	Name string
	Expr hcl.Expression
}

// Level holds the values configured on one level of the chain. An empty Type
// means the leaf.
type Level struct {
	Type   string
	Values []Assignment
}

// Instance is the format-agnostic representation of an `instance` block.
type Instance struct {
	Type    string
	Name    string
	Context string
	// Count is the number of expanded copies, or -1 for a single unindexed
	// instance.
	Count int

	Levels []Level
	Final  []Assignment
	Defer  []string

	FSInformation *FSInfo
	DefRange      hcl.Range
}

// Addresses returns the address of every expanded copy, in index order.
func (i *Instance) Addresses() []*nodeid.Address {
	if i.Count < 0 {
		return []*nodeid.Address{nodeid.Instance(i.Context, i.Name, -1)}
	}
	out := make([]*nodeid.Address, i.Count)
	for idx := range out {
		out[idx] = nodeid.Instance(i.Context, i.Name, idx)
	}
	return out
}

type hclInstance struct {
	Type string   `hcl:"type,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

var instanceBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "context"},
		{Name: "count"},
		{Name: "defer"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "values"},
		{Type: "level", LabelNames: []string{"type"}},
		{Type: "final"},
	},
}

func newInstanceFromHCL(parsed *hclInstance, filePath string) (*Instance, hcl.Diagnostics) {
	inst := &Instance{
		Type:          parsed.Type,
		Name:          parsed.Name,
		Context:       DefaultContext,
		Count:         -1,
		FSInformation: NewFSInfo(filePath),
		DefRange:      parsed.Body.MissingItemRange(),
	}

	content, diags := parsed.Body.Content(instanceBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs := content.Attributes

	for _, name := range []string{parsed.Type, parsed.Name} {
		if !nodeid.ValidName(name) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid instance label",
				Detail:   fmt.Sprintf("%q may only contain letters, digits, underscores and dashes.", name),
				Subject:  inst.DefRange.Ptr(),
			})
		}
	}

	diags = append(diags, decodeString(attrs["context"], &inst.Context)...)
	if !nodeid.ValidName(inst.Context) {
		diags = append(diags, attrError(attrs["context"], "Invalid context", fmt.Errorf("context %q is not a valid name", inst.Context)))
	}

	count, countDiags := parseCount(attrs)
	diags = append(diags, countDiags...)
	inst.Count = count

	if attr, ok := attrs["defer"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &inst.Defer)...)
	}

	valuesBlock, blockDiags := hclutil.FindUniqueBlock(content.Blocks, "values")
	diags = append(diags, blockDiags...)
	if valuesBlock != nil {
		values, valueDiags := parseAssignments(valuesBlock)
		diags = append(diags, valueDiags...)
		inst.Levels = append(inst.Levels, Level{Values: values})
	}

	seenLevels := make(map[string]struct{})
	for _, block := range content.Blocks.OfType("level") {
		levelType := block.Labels[0]
		if _, dup := seenLevels[levelType]; dup {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate level block",
				Detail:   fmt.Sprintf("Values for level %q are already configured.", levelType),
				Subject:  block.DefRange.Ptr(),
			})
			continue
		}
		seenLevels[levelType] = struct{}{}
		values, valueDiags := parseAssignments(block)
		diags = append(diags, valueDiags...)
		inst.Levels = append(inst.Levels, Level{Type: levelType, Values: values})
	}

	finalBlock, blockDiags := hclutil.FindUniqueBlock(content.Blocks, "final")
	diags = append(diags, blockDiags...)
	if finalBlock != nil {
		values, valueDiags := parseAssignments(finalBlock)
		diags = append(diags, valueDiags...)
		inst.Final = values
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return inst, diags
}

// parseAssignments reads the attributes of a block, in source order.
func parseAssignments(block *hcl.Block) ([]Assignment, hcl.Diagnostics) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		sorted = append(sorted, a)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Byte < sorted[j].Range.Start.Byte
	})

	out := make([]Assignment, len(sorted))
	for i, a := range sorted {
		out[i] = Assignment{Name: a.Name, Expr: a.Expr}
	}
	return out, diags
}
