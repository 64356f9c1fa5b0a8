// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"github.com/specialistvlad/ambigrid/internal/decl"
)

// Descriptor is the computed view of one type at its specialization level.
type Descriptor struct {
	Info   *TypeInfo
	Parent *Descriptor
	// Depth is 0 for a root type.
	Depth int

	// Properties is the merged list visible at this level. Its length is the
	// visible-property cutoff for slices of this type.
	Properties decl.List

	// Effective structural metadata: the local value, else the nearest
	// ancestor's.
	Container *TypeRef
	Item      ItemKind
	Tracking  TrackingMode
}

// Name returns the type name.
func (d *Descriptor) Name() string {
	return d.Info.Name
}

// Chain returns the descriptors from the root down to d.
func (d *Descriptor) Chain() []*Descriptor {
	out := make([]*Descriptor, d.Depth+1)
	for cur := d; cur != nil; cur = cur.Parent {
		out[cur.Depth] = cur
	}
	return out
}

// Property finds a visible property by name.
func (d *Descriptor) Property(name string) (*decl.Entry, bool) {
	return d.Properties.Lookup(name)
}
