// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Value is the value of a property: missing, plain data, or a reference to
// another slice.
type Value struct {
	set  bool
	data cty.Value
	ref  *Slice
}

// Missing is the zero Value.
var Missing = Value{}

// Data wraps a cty value. A cty.NilVal is treated as missing.
func Data(v cty.Value) Value {
	if v == cty.NilVal {
		return Missing
	}
	return Value{set: true, data: v}
}

// Ref wraps a slice reference. A nil slice is treated as missing.
func Ref(s *Slice) Value {
	if s == nil {
		return Missing
	}
	return Value{set: true, ref: s}
}

func (v Value) IsMissing() bool { return !v.set }
func (v Value) IsRef() bool     { return v.ref != nil }

// Data returns the cty value, or cty.NilVal for references and missing values.
func (v Value) Data() cty.Value {
	if !v.set || v.ref != nil {
		return cty.NilVal
	}
	return v.data
}

// Slice returns the referenced slice, or nil.
func (v Value) Slice() *Slice {
	return v.ref
}

// Equal reports whether two values are identical: the same slice, or equal
// data of the same type.
func (v Value) Equal(o Value) bool {
	switch {
	case v.set != o.set:
		return false
	case !v.set:
		return true
	case v.ref != nil || o.ref != nil:
		return v.ref == o.ref
	}
	if !v.data.Type().Equals(o.data.Type()) {
		return false
	}
	return v.data.RawEquals(o.data)
}

func (v Value) String() string {
	switch {
	case !v.set:
		return "<missing>"
	case v.ref != nil:
		return "&" + v.ref.ID()
	}
	if !v.data.IsWhollyKnown() {
		return v.data.GoString()
	}
	b, err := ctyjson.Marshal(v.data, v.data.Type())
	if err != nil {
		return v.data.GoString()
	}
	return string(b)
}
