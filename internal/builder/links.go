// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package builder

import (
	"context"
	"sort"
	"strings"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/dag"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/slice"
)

// containerGraph links every instance to the instances its levels resolved
// as containers.
func containerGraph(ctx context.Context, ix *slice.Index) *dag.Graph {
	logger := ctxlog.FromContext(ctx)
	g := dag.New()

	instances := ix.Instances()
	for _, inst := range instances {
		g.AddNode(inst.ID())
	}
	for _, inst := range instances {
		for _, s := range inst.Slices() {
			c := s.LocalContainer()
			if c == nil || c.Instance == inst {
				continue
			}
			if err := g.AddEdge(inst.ID(), c.Instance.ID()); err != nil {
				logger.Warn("Cannot record container link.", "slice", s.ID(), "error", err)
			}
		}
	}
	return g
}

// checkContainerCycles reports every cycle of g as fatal and returns the IDs
// of the instances on a cycle.
func checkContainerCycles(ctx context.Context, g *dag.Graph) map[string]struct{} {
	logger := ctxlog.FromContext(ctx)
	onCycle := make(map[string]struct{})
	if err := g.DetectCycles(); err == nil {
		logger.Debug("Container cycle check complete.", "cycles", 0)
		return onCycle
	}

	cycles := g.Cycles()
	for _, cyc := range cycles {
		path := append(append([]string(nil), cyc...), cyc[0])
		diag.Fatalf(ctx, diag.Cycle, cyc[0], "container cycle: %s", strings.Join(path, " -> "))
		for _, id := range cyc {
			onCycle[id] = struct{}{}
		}
	}
	logger.Debug("Container cycle check complete.", "cycles", len(cycles))
	return onCycle
}

// ambiguousInstances returns the IDs of the instances owning an ambiguous
// reference. The ambiguity itself is already reported.
func ambiguousInstances(ix *slice.Index) map[string]struct{} {
	out := make(map[string]struct{})
	for _, inst := range ix.Instances() {
		if inst.Ambiguous() != nil {
			out[inst.ID()] = struct{}{}
		}
	}
	return out
}

// abortSubtrees aborts every seed instance and every instance whose container
// chain reaches one. It returns the set of aborted IDs.
func abortSubtrees(ctx context.Context, ix *slice.Index, g *dag.Graph, seeds map[string]struct{}) map[string]struct{} {
	logger := ctxlog.FromContext(ctx)
	aborted := make(map[string]struct{}, len(seeds))
	queue := make([]string, 0, len(seeds))
	for id := range seeds {
		aborted[id] = struct{}{}
		queue = append(queue, id)
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		held, err := g.Dependencies(id)
		if err != nil {
			logger.Warn("Cannot follow container links.", "instance", id, "error", err)
			continue
		}
		for _, dep := range held {
			if _, done := aborted[dep]; done {
				continue
			}
			aborted[dep] = struct{}{}
			queue = append(queue, dep)
			reportAbortedContainer(ctx, g, dep, aborted)
		}
	}

	for _, inst := range ix.Instances() {
		if _, ok := aborted[inst.ID()]; ok {
			inst.Abort()
		}
	}
	logger.Debug("Aborted instances.", "count", len(aborted))
	return aborted
}

func reportAbortedContainer(ctx context.Context, g *dag.Graph, id string, aborted map[string]struct{}) {
	containers, err := g.Dependents(id)
	if err != nil {
		return
	}
	var names []string
	for _, c := range containers {
		if _, ok := aborted[c]; ok {
			names = append(names, c)
		}
	}
	diag.Warnf(ctx, diag.Resolution, id, "left unresolved: container %s is unresolved", strings.Join(names, ", "))
}
