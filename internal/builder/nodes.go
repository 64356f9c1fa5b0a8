// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package builder

import (
	"context"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/model"
	"github.com/specialistvlad/ambigrid/internal/registry"
	"github.com/specialistvlad/ambigrid/internal/slice"
)

// builtInstance is one expanded copy of an instance block.
type builtInstance struct {
	decl  *model.Instance
	index int
	inst  *slice.Instance
}

// declareTypes declares every type, then computes every descriptor so merge
// findings are reported once, in declaration order.
func declareTypes(ctx context.Context, reg *registry.Registry, types []*registry.TypeInfo) {
	logger := ctxlog.FromContext(ctx)
	for _, t := range types {
		if err := reg.Declare(t); err != nil {
			diag.Errorf(ctx, diag.Structural, t.Name, "type not declared: %v", err)
			continue
		}
		logger.Debug("Declared type.", "type", t.Name, "extends", t.Parent)
	}
	for _, name := range reg.Names() {
		if _, err := reg.Descriptor(ctx, name); err != nil {
			diag.Errorf(ctx, diag.Structural, name, "type cannot be described: %v", err)
		}
	}
}

// createInstances expands every instance block and registers a slice chain
// per copy. Copies whose type cannot be described, or whose address is taken,
// are skipped.
func createInstances(ctx context.Context, res *Result, instances []*model.Instance) []builtInstance {
	logger := ctxlog.FromContext(ctx)
	var out []builtInstance
	seen := make(map[string]struct{})

	for _, mi := range instances {
		addrs := mi.Addresses()
		d, err := res.Registry.Descriptor(ctx, mi.Type)
		if err != nil {
			for _, addr := range addrs {
				diag.Errorf(ctx, diag.Structural, addr.String(), "instance of %s skipped: %v", mi.Type, err)
				res.Skipped = append(res.Skipped, addr.String())
			}
			continue
		}

		for i, addr := range addrs {
			id := addr.String()
			if _, dup := seen[id]; dup {
				diag.Errorf(ctx, diag.Structural, id, "duplicate instance declared in %s", mi.FSInformation.FilePath)
				res.Skipped = append(res.Skipped, id)
				continue
			}
			seen[id] = struct{}{}

			index := -1
			if mi.Count >= 0 {
				index = i
			}
			inst := slice.NewChain(addr, mi.Context, d)
			res.Index.Add(inst)
			out = append(out, builtInstance{decl: mi, index: index, inst: inst})
			logger.Debug("Created instance.", "instance", id, "type", mi.Type, "levels", len(inst.Slices()))
		}
	}
	return out
}
