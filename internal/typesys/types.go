// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package typesys

import (
	"github.com/zclconf/go-cty/cty"
)

// Type is the declared value type of a property.
type Type struct {
	ty   cty.Type
	name string
}

// Any accepts every value, including references.
var Any = Type{ty: cty.DynamicPseudoType}

// Of wraps a cty type.
func Of(t cty.Type) Type {
	return Type{ty: t}
}

// Named returns the type of a reference to an instance of the named model type.
func Named(name string) Type {
	return Type{name: name}
}

// IsNamed reports whether t is a model type reference.
func (t Type) IsNamed() bool { return t.name != "" }

// Name returns the model type name for named types, or "".
func (t Type) Name() string { return t.name }

// Cty returns the underlying cty type. Named types report cty.NilType.
func (t Type) Cty() cty.Type {
	if t.IsNamed() {
		return cty.NilType
	}
	return t.ty
}

// IsAny reports whether t is the dynamic pseudo-type.
func (t Type) IsAny() bool {
	return !t.IsNamed() && t.ty.Equals(cty.DynamicPseudoType)
}

// IsZero reports whether t was never set.
func (t Type) IsZero() bool {
	return !t.IsNamed() && t.ty.Equals(cty.NilType)
}

// ImplicitlyOptional reports whether a property of this type is optional
// when the declaration does not say otherwise.
func (t Type) ImplicitlyOptional() bool {
	return t.IsNamed() || t.IsAny()
}

// Equals reports exact type identity.
func (t Type) Equals(other Type) bool {
	if t.IsNamed() || other.IsNamed() {
		return t.name == other.name
	}
	return t.ty.Equals(other.ty)
}

// String renders t the way it would be written in a declaration.
func (t Type) String() string {
	switch {
	case t.IsNamed():
		return t.name
	case t.IsZero():
		return "<unset>"
	default:
		return t.ty.FriendlyNameForConstraint()
	}
}
