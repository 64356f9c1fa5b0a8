// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package builder

import (
	"context"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/graph"
	"github.com/specialistvlad/ambigrid/internal/model"
	"github.com/specialistvlad/ambigrid/internal/registry"
	"github.com/specialistvlad/ambigrid/internal/slice"
)

// Build runs one session over m. Findings are reported to the collector
// carried by ctx, or to a new one when ctx has none. The only errors returned
// are context cancellations.
func (b *Builder) Build(ctx context.Context, m *model.Model) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting session.", "types", len(m.Types), "instances", len(m.Instances))

	collector := diag.FromContext(ctx)
	if collector == nil {
		collector = diag.NewCollector()
		ctx = diag.WithCollector(ctx, collector)
	}
	res := &Result{
		Registry:  registry.New(),
		Index:     slice.NewIndex(),
		Collector: collector,
	}

	// First pass: types and their descriptors.
	declareTypes(ctx, res.Registry, m.Types)
	logger.Debug("Build: Type declaration complete.", "types", len(res.Registry.Names()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Second pass: slice chains.
	built := createInstances(ctx, res, m.Instances)
	logger.Debug("Build: Instance creation complete.", "instances", len(built), "skipped", len(res.Skipped))

	// Third pass: references. Ambiguities are already on the collector.
	if err := res.Index.ResolveReferences(ctx); err != nil {
		logger.Debug("Build: Reference resolution found ambiguities.", "error", err)
	}
	links := containerGraph(ctx, res.Index)
	seeds := checkContainerCycles(ctx, links)
	for id := range ambiguousInstances(res.Index) {
		seeds[id] = struct{}{}
	}
	aborted := abortSubtrees(ctx, res.Index, links, seeds)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fourth pass: configured values.
	byID := make(map[string]*slice.Instance, len(built))
	for _, bi := range built {
		byID[bi.inst.ID()] = bi.inst
	}
	for _, bi := range built {
		applyValues(ctx, byID, bi)
	}
	logger.Debug("Build: Value application complete.")

	// Final pass: resolution and export. Aborted instances are left
	// unresolved.
	engine := b.engine()
	for _, bi := range built {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, skip := aborted[bi.inst.ID()]; skip {
			res.Unresolved = append(res.Unresolved, bi.inst.ID())
			continue
		}
		engine.ResolveAll(ctx, bi.inst)
	}
	res.Graph = graph.Export(ctx, res.Index, b.export)

	logger.Info("Build: Session complete.",
		"instances", len(built),
		"nodes", len(res.Graph.Nodes),
		"errors", collector.Count(diag.SeverityError),
		"fatal", collector.Count(diag.SeverityFatal))
	return res, nil
}
