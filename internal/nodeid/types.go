// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package nodeid

// PathSegment represents a single component of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (ps PathSegment) HasIndex() bool {
	return ps.Index != -1
}

// Address is the structured representation of a unique identifier.
type Address struct {
	Path []PathSegment
}

// New builds an address from segments.
func New(segments ...PathSegment) *Address {
	path := make([]PathSegment, len(segments))
	copy(path, segments)
	return &Address{Path: path}
}

// Instance returns the address of an instance in a context. A negative index
// means the instance was not expanded.
func Instance(context, name string, index int) *Address {
	return New(NewPathSegment(context), PathSegment{Name: name, Index: normalizeIndex(index)})
}

// Child returns a copy of a with one more unindexed segment appended.
func (a *Address) Child(name string) *Address {
	if a == nil {
		return New(NewPathSegment(name))
	}
	return New(append(append([]PathSegment(nil), a.Path...), NewPathSegment(name))...)
}

// Last returns the final segment, or a zero segment for an empty address.
func (a *Address) Last() PathSegment {
	if a == nil || len(a.Path) == 0 {
		return PathSegment{Index: -1}
	}
	return a.Path[len(a.Path)-1]
}

func normalizeIndex(i int) int {
	if i < 0 {
		return -1
	}
	return i
}
