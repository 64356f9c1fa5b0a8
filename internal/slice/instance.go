// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"github.com/specialistvlad/ambigrid/internal/nodeid"
	"github.com/specialistvlad/ambigrid/internal/registry"
)

// Setting is what instance configuration supplied for one property.
type Setting struct {
	// Value is the configured value and Depth the specialization depth of
	// the level it was configured on. Depth is -1 when nothing is configured.
	Value Value
	Depth int
	// Deferred asks for the value to be taken from the container.
	Deferred bool
	// Final wins over everything else.
	Final Value
}

// Instance is the record shared by every slice of one chain.
type Instance struct {
	Address *nodeid.Address
	Context string

	slices   []*Slice
	cells    []*Cell
	settings []Setting
	aborted  bool
}

// NewChain creates the slices of one instance, root to leaf, for the type
// described by leaf. Cells are materialized once for the leaf's visible
// properties and shared by every slice.
func NewChain(addr *nodeid.Address, context string, leaf *registry.Descriptor) *Instance {
	inst := &Instance{Address: addr, Context: context}

	for _, d := range leaf.Chain() {
		s := &Slice{Descriptor: d, Instance: inst}
		if n := len(inst.slices); n > 0 {
			s.Generalization = inst.slices[n-1]
			s.Generalization.Specialization = s
		}
		inst.slices = append(inst.slices, s)
		s.createReferences()
	}

	inst.cells = make([]*Cell, len(leaf.Properties))
	inst.settings = make([]Setting, len(leaf.Properties))
	for i, e := range leaf.Properties {
		inst.cells[i] = &Cell{Entry: e}
		inst.settings[i].Depth = -1
	}
	return inst
}

// ID returns the instance address, e.g. "main.button[2]".
func (i *Instance) ID() string {
	return i.Address.String()
}

// Leaf returns the most specialized slice.
func (i *Instance) Leaf() *Slice {
	return i.slices[len(i.slices)-1]
}

// Root returns the most general slice.
func (i *Instance) Root() *Slice {
	return i.slices[0]
}

// Slices returns the chain, root first.
func (i *Instance) Slices() []*Slice {
	return i.slices
}

// Cells returns every property cell, indexed like the leaf's property list.
func (i *Instance) Cells() []*Cell {
	return i.cells
}

// Cell returns the cell of a property index, or nil when out of range.
func (i *Instance) Cell(index int) *Cell {
	if index < 0 || index >= len(i.cells) {
		return nil
	}
	return i.cells[index]
}

// Setting returns the configuration of a property index.
func (i *Instance) Setting(index int) Setting {
	if index < 0 || index >= len(i.settings) {
		return Setting{Depth: -1}
	}
	return i.settings[index]
}

// Abort marks the instance as excluded from value resolution. Its cells stay
// unresolved.
func (i *Instance) Abort() { i.aborted = true }

// Aborted reports whether Abort was called.
func (i *Instance) Aborted() bool { return i.aborted }

// Ambiguous returns the first ambiguous reference owned by any slice of the
// chain, or nil.
func (i *Instance) Ambiguous() *Reference {
	for _, s := range i.slices {
		for _, r := range s.References() {
			if r.Err() != nil {
				return r
			}
		}
	}
	return nil
}
