// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package typesys

import (
	"github.com/zclconf/go-cty/cty"
)

// Hierarchy gives access to the single-inheritance chain of named types.
type Hierarchy interface {
	// Parent returns the name of the immediate generalization of name.
	Parent(name string) (string, bool)
}

// IsA reports whether name is ancestor or one of its specializations.
func IsA(h Hierarchy, name, ancestor string) bool {
	seen := make(map[string]struct{})
	for cur := name; cur != ""; {
		if cur == ancestor {
			return true
		}
		if _, loop := seen[cur]; loop {
			return false
		}
		seen[cur] = struct{}{}
		if h == nil {
			return false
		}
		parent, ok := h.Parent(cur)
		if !ok {
			return false
		}
		cur = parent
	}
	return false
}

// Assignable reports whether a value of type from can be stored in a
// property declared as to. A redeclaration is covariant when the child's type
// is assignable to the parent's.
func Assignable(h Hierarchy, to, from Type) bool {
	if to.IsAny() {
		return true
	}
	if to.IsNamed() || from.IsNamed() {
		if !to.IsNamed() || !from.IsNamed() {
			return false
		}
		return IsA(h, from.name, to.name)
	}
	return assignableCty(to.ty, from.ty)
}

// assignableCty implements structural subtyping over cty types: element
// covariance for collections and width subtyping for objects.
func assignableCty(to, from cty.Type) bool {
	if to.Equals(cty.DynamicPseudoType) {
		return true
	}
	if from.Equals(cty.DynamicPseudoType) {
		return false
	}
	if to.Equals(from) {
		return true
	}

	switch {
	case to.IsListType() && from.IsListType(),
		to.IsSetType() && from.IsSetType(),
		to.IsMapType() && from.IsMapType():
		return assignableCty(to.ElementType(), from.ElementType())

	case to.IsObjectType() && from.IsObjectType():
		fromAttrs := from.AttributeTypes()
		for name, want := range to.AttributeTypes() {
			got, ok := fromAttrs[name]
			if !ok {
				if to.AttributeOptional(name) {
					continue
				}
				return false
			}
			if !assignableCty(want, got) {
				return false
			}
		}
		return true

	case to.IsTupleType() && from.IsTupleType():
		want, got := to.TupleElementTypes(), from.TupleElementTypes()
		if len(want) != len(got) {
			return false
		}
		for i := range want {
			if !assignableCty(want[i], got[i]) {
				return false
			}
		}
		return true
	}
	return false
}
