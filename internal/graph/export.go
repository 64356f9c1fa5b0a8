// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package graph

import (
	"context"
	"encoding/json"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/registry"
	"github.com/specialistvlad/ambigrid/internal/slice"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Export builds the exported graph of every instance registered in ix.
func Export(ctx context.Context, ix *slice.Index, opts Options) *Graph {
	logger := ctxlog.FromContext(ctx)
	g := &Graph{
		Contexts: make(map[string]map[string][]string),
		byID:     make(map[string]*Node),
	}

	for _, inst := range ix.Instances() {
		for _, s := range inst.Slices() {
			n := newNode(s)
			addEdges(&n.Requires, s, s.Requires)
			addEdges(&n.RequiredBy, s, s.RequiredBy)
			addEdges(&n.Children, s, s.Children)
			addEdges(&n.Groups, s, s.Groups)
			if s.IsLeaf() && !opts.OmitValues {
				n.Properties = exportProperties(ctx, inst)
			}
			g.Nodes = append(g.Nodes, n)
			g.byID[n.ID] = n
		}
	}

	if opts.FoldTracking {
		for _, inst := range ix.Instances() {
			for _, s := range inst.Slices() {
				foldTracking(g, s)
			}
		}
	}

	for _, c := range ix.Contexts() {
		types := make(map[string][]string)
		for _, t := range ix.TypeNames(c) {
			for _, s := range ix.Find(c, t) {
				types[t] = append(types[t], s.ID())
			}
		}
		g.Contexts[c] = types
	}

	logger.Debug("Exported graph.", "nodes", len(g.Nodes), "contexts", len(g.Contexts))
	return g
}

func newNode(s *slice.Slice) *Node {
	n := &Node{
		ID:       s.ID(),
		Instance: s.Instance.ID(),
		Type:     s.TypeName(),
		Context:  s.Context(),
		Depth:    s.Depth(),
		Item:     s.Descriptor.Item.String(),
		Tracking: s.Descriptor.Tracking.String(),
	}
	if c := s.Container(); c != nil {
		n.Container = c.ID()
	}
	if s.Generalization != nil {
		n.Generalization = s.Generalization.ID()
	}
	return n
}

// implied reports whether an edge from s to target repeats a structural link.
func implied(s, target *slice.Slice) bool {
	return target == s || target == s.Generalization || target == s.Container()
}

func addEdges(dst *[]Edge, s *slice.Slice, refs []*slice.Reference) {
	for _, r := range refs {
		if target := r.Slice(); target != nil {
			addEdge(dst, s, target)
			continue
		}
		*dst = append(*dst, Edge{Placeholder: &Placeholder{
			Type:    r.Want.Type,
			Context: r.Want.Context,
			Policy:  r.Policy.String(),
		}})
	}
}

func addEdge(dst *[]Edge, s, target *slice.Slice) {
	if implied(s, target) {
		return
	}
	id := target.ID()
	for _, e := range *dst {
		if e.Node == id {
			return
		}
	}
	*dst = append(*dst, Edge{Node: id})
}

func foldTracking(g *Graph, target *slice.Slice) {
	holders := target.TrackedBy()
	if len(holders) == 0 {
		return
	}
	tn := g.byID[target.ID()]
	for _, h := range holders {
		hn := g.byID[h.ID()]
		if tn == nil || hn == nil {
			continue
		}
		switch target.Descriptor.Tracking {
		case registry.TrackingAddHolderAsChildren:
			addEdge(&tn.Children, target, h)
		case registry.TrackingAddToHolderItems:
			addEdge(&tn.Groups, target, h)
		case registry.TrackingHolderRequires:
			addEdge(&hn.Requires, h, target)
		case registry.TrackingHolderRequiredBy:
			addEdge(&hn.RequiredBy, h, target)
		}
	}
}

func exportProperties(ctx context.Context, inst *slice.Instance) []Property {
	cells := inst.Cells()
	out := make([]Property, len(cells))
	for i, c := range cells {
		p := Property{
			Name:       c.Entry.Name,
			Type:       c.Entry.Type.String(),
			State:      c.State().String(),
			DeclaredBy: c.Entry.Root().Owner,
		}
		v := c.Value()
		switch {
		case v.IsRef():
			p.Ref = v.Slice().ID()
		case !v.IsMissing():
			data, err := plainValue(v)
			if err != nil {
				ctxlog.FromContext(ctx).Warn("Cannot export property value.",
					"instance", inst.ID(), "property", c.Entry.Name, "error", err)
			}
			p.Value = data
		}
		out[i] = p
	}
	return out
}

// plainValue turns cty data into plain Go values.
func plainValue(v slice.Value) (any, error) {
	d := v.Data()
	b, err := ctyjson.Marshal(d, d.Type())
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
