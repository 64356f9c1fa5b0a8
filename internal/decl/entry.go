// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package decl

// Entry is one property in a type's merged list.
type Entry struct {
	// Declaration holds the effective values after merge corrections
	// (inferred optionality, widened types restored, inherited flags).
	Declaration

	// Index is the entry's stable position. It never changes across
	// specializations and addresses the instance's resolution cell.
	Index int

	// Depth is the specialization depth of the most specialized
	// (re)declaration.
	Depth int

	// Generalization is the entry this one overrides. It is a lookup link,
	// the overridden entry still belongs to the ancestor's list.
	Generalization *Entry
}

// List is an ordered merged property list.
type List []*Entry

// Lookup finds an entry by name.
func (l List) Lookup(name string) (*Entry, bool) {
	for _, e := range l {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Names returns the entry names in order.
func (l List) Names() []string {
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Name
	}
	return out
}

// Root walks the Generalization links back to the first declaration.
func (e *Entry) Root() *Entry {
	cur := e
	for cur.Generalization != nil {
		cur = cur.Generalization
	}
	return cur
}
