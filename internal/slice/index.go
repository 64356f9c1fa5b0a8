// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Index maps context -> type name -> slices. Every slice is registered under
// the name of its own level's type, so a lookup for T finds the T-level slice
// of every instance whose chain includes T.
type Index struct {
	mu        sync.RWMutex
	contexts  map[string]map[string][]*Slice
	instances []*Instance
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{contexts: make(map[string]map[string][]*Slice)}
}

// Add registers every slice of an instance.
func (ix *Index) Add(inst *Instance) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	types, ok := ix.contexts[inst.Context]
	if !ok {
		types = make(map[string][]*Slice)
		ix.contexts[inst.Context] = types
	}
	for _, s := range inst.Slices() {
		types[s.TypeName()] = append(types[s.TypeName()], s)
	}
	ix.instances = append(ix.instances, inst)
}

// Find returns the slices of a type in a context, in registration order.
func (ix *Index) Find(contextName, typeName string) []*Slice {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]*Slice(nil), ix.contexts[contextName][typeName]...)
}

// Contexts returns every context name, sorted.
func (ix *Index) Contexts() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.contexts))
	for c := range ix.contexts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// TypeNames returns the type names registered in a context, sorted.
func (ix *Index) TypeNames(contextName string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.contexts[contextName]))
	for t := range ix.contexts[contextName] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Instances returns the registered instances in registration order.
func (ix *Index) Instances() []*Instance {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]*Instance(nil), ix.instances...)
}

// ResolveReferences resolves every reference of every registered instance.
// It returns the joined ambiguity errors; other failures are only reported.
func (ix *Index) ResolveReferences(ctx context.Context) error {
	var errs []error
	for _, inst := range ix.Instances() {
		for _, s := range inst.Slices() {
			for _, r := range s.References() {
				if _, err := r.Resolve(ctx, ix); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}
