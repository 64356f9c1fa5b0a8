// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package builder

import (
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/graph"
	"github.com/specialistvlad/ambigrid/internal/registry"
	"github.com/specialistvlad/ambigrid/internal/slice"
)

// Result is everything a build session produced.
type Result struct {
	Registry  *registry.Registry
	Index     *slice.Index
	Graph     *graph.Graph
	Collector *diag.Collector

	// Skipped lists the instance IDs that could not be created.
	Skipped []string
	// Unresolved lists the instance IDs left unresolved: those on a
	// container cycle, those owning an ambiguous reference, and those whose
	// container chain reaches either.
	Unresolved []string
}

// Fatal returns the joined fatal diagnostics of the session, or nil.
func (r *Result) Fatal() error {
	return r.Collector.FatalErr()
}

// Instance returns the built instance with the given ID.
func (r *Result) Instance(id string) (*slice.Instance, bool) {
	for _, inst := range r.Index.Instances() {
		if inst.ID() == id {
			return inst, true
		}
	}
	return nil, false
}
