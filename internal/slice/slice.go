// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"sort"

	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/registry"
)

// Slice is one specialization level of one instance.
type Slice struct {
	Descriptor *registry.Descriptor
	Instance   *Instance

	Generalization *Slice
	Specialization *Slice

	// References declared locally by this level's type.
	ContainerRef *Reference
	Requires     []*Reference
	RequiredBy   []*Reference
	Children     []*Reference
	Groups       []*Reference
	Construct    []*Reference
	// AmbientTargets holds one reference per contract property declared at
	// this level, keyed by property index.
	AmbientTargets map[int]*Reference

	trackedBy []*Slice
}

// ID returns the stable full name of the slice, e.g. "main.button[2].Control".
func (s *Slice) ID() string {
	return s.Instance.Address.Child(s.TypeName()).String()
}

func (s *Slice) String() string { return s.ID() }

// TypeName returns the name of this level's type.
func (s *Slice) TypeName() string {
	return s.Descriptor.Name()
}

// Context returns the instance context.
func (s *Slice) Context() string {
	return s.Instance.Context
}

// Depth returns the specialization depth of this level.
func (s *Slice) Depth() int {
	return s.Descriptor.Depth
}

func (s *Slice) Leaf() *Slice { return s.Instance.Leaf() }
func (s *Slice) Root() *Slice { return s.Instance.Root() }
func (s *Slice) IsLeaf() bool { return s.Specialization == nil }

// Visible returns the number of properties this level sees.
func (s *Slice) Visible() int {
	return len(s.Descriptor.Properties)
}

// Property finds a property visible at this level.
func (s *Slice) Property(name string) (*decl.Entry, bool) {
	return s.Descriptor.Property(name)
}

// Cell returns the shared cell of a property index, or nil when the index is
// beyond this level's cutoff.
func (s *Slice) Cell(index int) *Cell {
	if index < 0 || index >= s.Visible() {
		return nil
	}
	return s.Instance.Cell(index)
}

// As returns the slice of this chain at type name, searching s and its
// generalizations. It returns nil when s is not a name.
func (s *Slice) As(name string) *Slice {
	for cur := s; cur != nil; cur = cur.Generalization {
		if cur.TypeName() == name {
			return cur
		}
	}
	return nil
}

// LocalContainer returns the container resolved by this level's own
// container reference.
func (s *Slice) LocalContainer() *Slice {
	if s.ContainerRef == nil {
		return nil
	}
	return s.ContainerRef.Slice()
}

// Container returns this level's resolved container, else the nearest
// generalization's. An ambiguous container reference stops the walk.
func (s *Slice) Container() *Slice {
	for cur := s; cur != nil; cur = cur.Generalization {
		if r := cur.ContainerRef; r != nil && r.Err() != nil {
			return nil
		}
		if c := cur.LocalContainer(); c != nil {
			return c
		}
	}
	return nil
}

// TrackedBy returns the leaves holding a reference to this slice through a
// tracked property, sorted by ID.
func (s *Slice) TrackedBy() []*Slice {
	return s.trackedBy
}

// AddTrackedBy records that holder references s through a property.
func (s *Slice) AddTrackedBy(holder *Slice) {
	for _, h := range s.trackedBy {
		if h == holder {
			return
		}
	}
	s.trackedBy = append(s.trackedBy, holder)
	sort.Slice(s.trackedBy, func(i, j int) bool { return s.trackedBy[i].ID() < s.trackedBy[j].ID() })
}

// References returns every reference owned by this level.
func (s *Slice) References() []*Reference {
	var out []*Reference
	if s.ContainerRef != nil {
		out = append(out, s.ContainerRef)
	}
	out = append(out, s.Requires...)
	out = append(out, s.RequiredBy...)
	out = append(out, s.Children...)
	out = append(out, s.Groups...)
	out = append(out, s.Construct...)
	idx := make([]int, 0, len(s.AmbientTargets))
	for i := range s.AmbientTargets {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		out = append(out, s.AmbientTargets[i])
	}
	return out
}

func (s *Slice) createReferences() {
	info := s.Descriptor.Info
	if info.Container != nil {
		s.ContainerRef = newReference(s, RoleContainer, *info.Container, PolicyError)
	}
	s.Requires = newReferences(s, RoleRequires, info.Requires, PolicyError)
	s.RequiredBy = newReferences(s, RoleRequiredBy, info.RequiredBy, PolicyIgnore)
	s.Children = newReferences(s, RoleChildren, info.Children, PolicyIgnore)
	s.Groups = newReferences(s, RoleGroups, info.Groups, PolicyIgnore)
	s.Construct = newReferences(s, RoleConstruct, info.Construct, PolicyWarn)

	for _, e := range s.Descriptor.Properties {
		if e.Kind != decl.KindContract || e.Owner != info.Name || !e.Type.IsNamed() {
			continue
		}
		if s.AmbientTargets == nil {
			s.AmbientTargets = make(map[int]*Reference)
		}
		r := newReference(s, RoleAmbientTarget, registry.TypeRef{Type: e.Type.Name(), Context: e.Context}, PolicyIgnore)
		r.Property = e
		s.AmbientTargets[e.Index] = r
	}
}

// AmbientTarget returns the contract target reference for a property index
// declared nearest to s.
func (s *Slice) AmbientTarget(index int) *Reference {
	for cur := s; cur != nil; cur = cur.Generalization {
		if r, ok := cur.AmbientTargets[index]; ok {
			return r
		}
	}
	return nil
}
