// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/nodeid"
	"github.com/specialistvlad/ambigrid/internal/typesys"
)

var (
	ErrUnknownType      = errors.New("unknown type")
	ErrInheritanceCycle = errors.New("inheritance cycle")
	ErrDuplicateType    = errors.New("duplicate type")
)

// Registry stores declared types and their memoized descriptors.
type Registry struct {
	typesMu sync.RWMutex
	types   map[string]*TypeInfo
	order   []string

	// cacheMu serializes descriptor computation. It is never taken while
	// typesMu is held, so merge code may call Parent freely.
	cacheMu     sync.Mutex
	descriptors map[string]*Descriptor
}

var _ typesys.Hierarchy = (*Registry)(nil)

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		types:       make(map[string]*TypeInfo),
		descriptors: make(map[string]*Descriptor),
	}
}

// Declare adds a type.
func (r *Registry) Declare(info *TypeInfo) error {
	if !nodeid.ValidName(info.Name) {
		return fmt.Errorf("invalid type name %q", info.Name)
	}
	if info.Parent == info.Name {
		return fmt.Errorf("type %q extends itself: %w", info.Name, ErrInheritanceCycle)
	}

	r.typesMu.Lock()
	defer r.typesMu.Unlock()
	if prev, exists := r.types[info.Name]; exists {
		return fmt.Errorf("type %q already declared at %s: %w", info.Name, prev.DefRange, ErrDuplicateType)
	}
	r.types[info.Name] = info
	r.order = append(r.order, info.Name)
	return nil
}

// Lookup returns the local metadata of a type.
func (r *Registry) Lookup(name string) (*TypeInfo, bool) {
	r.typesMu.RLock()
	defer r.typesMu.RUnlock()
	ti, ok := r.types[name]
	return ti, ok
}

// Names returns the declared type names in declaration order.
func (r *Registry) Names() []string {
	r.typesMu.RLock()
	defer r.typesMu.RUnlock()
	return append([]string(nil), r.order...)
}

// Parent implements typesys.Hierarchy.
func (r *Registry) Parent(name string) (string, bool) {
	ti, ok := r.Lookup(name)
	if !ok || ti.Parent == "" {
		return "", false
	}
	return ti.Parent, true
}

// IsA reports whether name is ancestor or one of its specializations.
func (r *Registry) IsA(name, ancestor string) bool {
	return typesys.IsA(r, name, ancestor)
}

// Reset drops every memoized descriptor. Declared types are kept.
func (r *Registry) Reset() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.descriptors = make(map[string]*Descriptor)
}

// Descriptor returns the memoized descriptor of a type, computing it and its
// ancestors root-first on first use.
func (r *Registry) Descriptor(ctx context.Context, name string) (*Descriptor, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	return r.descriptor(ctx, name, nil)
}

func (r *Registry) descriptor(ctx context.Context, name string, visiting []string) (*Descriptor, error) {
	if d, ok := r.descriptors[name]; ok {
		return d, nil
	}
	for _, v := range visiting {
		if v == name {
			return nil, fmt.Errorf("%s -> %s: %w", strings.Join(visiting, " -> "), name, ErrInheritanceCycle)
		}
	}

	info, ok := r.Lookup(name)
	if !ok {
		if len(visiting) > 0 {
			return nil, fmt.Errorf("type %q extends %q: %w", visiting[len(visiting)-1], name, ErrUnknownType)
		}
		return nil, fmt.Errorf("type %q: %w", name, ErrUnknownType)
	}

	d := &Descriptor{Info: info, Item: info.Item, Tracking: info.Tracking, Container: info.Container}

	var inherited decl.List
	if info.Parent != "" {
		parent, err := r.descriptor(ctx, info.Parent, append(visiting, name))
		if err != nil {
			return nil, err
		}
		d.Parent = parent
		d.Depth = parent.Depth + 1
		inherited = parent.Properties
		if d.Container == nil {
			d.Container = parent.Container
		}
		if d.Item == ItemUnknown {
			d.Item = parent.Item
		}
		if d.Tracking == TrackingUnknown {
			d.Tracking = parent.Tracking
		}
	}

	d.Properties = decl.Merge(ctx, r, d.Depth, info.Properties, inherited)
	r.descriptors[name] = d

	ctxlog.Trace(ctx, "Computed type descriptor.",
		"type", name, "depth", d.Depth, "properties", len(d.Properties))
	return d, nil
}
