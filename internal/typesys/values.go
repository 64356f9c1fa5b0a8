// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package typesys

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ConvertData converts a plain data value to the declared type of a property.
// Named types never accept plain data.
func ConvertData(v cty.Value, to Type) (cty.Value, error) {
	if to.IsNamed() {
		return cty.NilVal, fmt.Errorf("type %s expects a reference to an instance, got %s", to.name, v.Type().FriendlyName())
	}
	if to.IsZero() || to.IsAny() {
		return v, nil
	}
	out, err := convert.Convert(v, to.ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot use %s as %s: %w", v.Type().FriendlyName(), to.String(), err)
	}
	return out, nil
}

// MergeValues merges incoming into existing. Maps and objects are merged key
// by key, recursing into nested maps; for any other key the incoming element
// replaces the existing one. Lists and tuples are concatenated and sets are
// unioned. Null on either side yields the other side. Top-level primitives
// merge only when equal.
func MergeValues(existing, incoming cty.Value) (cty.Value, error) {
	if existing.IsNull() {
		return incoming, nil
	}
	if incoming.IsNull() {
		return existing, nil
	}
	if !existing.IsWhollyKnown() || !incoming.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("cannot merge unknown values")
	}

	et, it := existing.Type(), incoming.Type()
	switch {
	case isKeyed(et) && isKeyed(it):
		return mergeKeyed(existing, incoming)
	case isSequence(et) && isSequence(it):
		return mergeSequence(existing, incoming)
	case et.IsSetType() && it.IsSetType():
		return mergeSet(existing, incoming)
	case et.IsPrimitiveType() && it.IsPrimitiveType() && et.Equals(it):
		if existing.Equals(incoming).True() {
			return existing, nil
		}
		return cty.NilVal, fmt.Errorf("conflicting %s values %s and %s", et.FriendlyName(), render(existing), render(incoming))
	}
	return cty.NilVal, fmt.Errorf("cannot merge %s into %s", it.FriendlyName(), et.FriendlyName())
}

func isKeyed(t cty.Type) bool    { return t.IsMapType() || t.IsObjectType() }
func isSequence(t cty.Type) bool { return t.IsListType() || t.IsTupleType() }

func mergeKeyed(existing, incoming cty.Value) (cty.Value, error) {
	out := make(map[string]cty.Value)
	for k, v := range existing.AsValueMap() {
		out[k] = v
	}
	for k, v := range incoming.AsValueMap() {
		prev, ok := out[k]
		if ok && isKeyed(prev.Type()) && isKeyed(v.Type()) {
			merged, err := MergeValues(prev, v)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			v = merged
		}
		out[k] = v
	}

	if existing.Type().IsMapType() && incoming.Type().IsMapType() {
		if len(out) == 0 {
			return existing, nil
		}
		if ety, convs := convert.Unify(mapTypes(out)); ety != cty.NilType {
			i := 0
			for _, k := range sortedKeys(out) {
				if convs[i] != nil {
					cv, err := convs[i](out[k])
					if err != nil {
						return cty.NilVal, err
					}
					out[k] = cv
				}
				i++
			}
			return cty.MapVal(out), nil
		}
	}
	return cty.ObjectVal(out), nil
}

func mergeSequence(existing, incoming cty.Value) (cty.Value, error) {
	elems := append(existing.AsValueSlice(), incoming.AsValueSlice()...)
	if len(elems) == 0 {
		return existing, nil
	}
	if existing.Type().IsListType() && incoming.Type().IsListType() {
		types := make([]cty.Type, len(elems))
		for i, e := range elems {
			types[i] = e.Type()
		}
		ety, convs := convert.Unify(types)
		if ety == cty.NilType {
			return cty.NilVal, fmt.Errorf("list element types %s and %s do not unify",
				existing.Type().ElementType().FriendlyName(), incoming.Type().ElementType().FriendlyName())
		}
		for i, c := range convs {
			if c == nil {
				continue
			}
			cv, err := c(elems[i])
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = cv
		}
		return cty.ListVal(elems), nil
	}
	return cty.TupleVal(elems), nil
}

func mergeSet(existing, incoming cty.Value) (cty.Value, error) {
	if !existing.Type().ElementType().Equals(incoming.Type().ElementType()) {
		return cty.NilVal, fmt.Errorf("set element types %s and %s differ",
			existing.Type().ElementType().FriendlyName(), incoming.Type().ElementType().FriendlyName())
	}
	elems := append(existing.AsValueSlice(), incoming.AsValueSlice()...)
	if len(elems) == 0 {
		return existing, nil
	}
	return cty.SetVal(elems), nil
}

func mapTypes(m map[string]cty.Value) []cty.Type {
	keys := sortedKeys(m)
	out := make([]cty.Type, len(keys))
	for i, k := range keys {
		out[i] = m[k].Type()
	}
	return out
}

func render(v cty.Value) string {
	if v.Type().Equals(cty.String) {
		return fmt.Sprintf("%q", v.AsString())
	}
	if v.Type().Equals(cty.Number) {
		return v.AsBigFloat().Text('f', -1)
	}
	if v.Type().Equals(cty.Bool) {
		return fmt.Sprintf("%t", v.True())
	}
	return v.GoString()
}
