// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"context"
	"fmt"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/typesys"
)

// Set configures a property value on this level. The deepest configured
// level wins. A value that does not fit the property, or a property that is
// not writeable, is reported and the assignment is skipped.
func (s *Slice) Set(ctx context.Context, name string, v Value) error {
	e, err := s.assignable(ctx, name)
	if err != nil {
		return err
	}
	if !e.Writeable {
		return s.reject(ctx, name, fmt.Errorf("property %q is not writeable", name))
	}
	v, err = Coerce(v, e.Type)
	if err != nil {
		return s.reject(ctx, name, err)
	}

	st := &s.Instance.settings[e.Index]
	if st.Depth > s.Depth() {
		ctxlog.Trace(ctx, "Keeping value configured on a more specialized level.",
			"slice", s.ID(), "property", name, "configured_depth", st.Depth)
		return nil
	}
	st.Value = v
	st.Depth = s.Depth()
	ctxlog.Trace(ctx, "Configured property value.", "slice", s.ID(), "property", name, "value", v.String())
	return nil
}

// Defer marks a property to be taken from the container.
func (s *Slice) Defer(ctx context.Context, name string) error {
	e, err := s.assignable(ctx, name)
	if err != nil {
		return err
	}
	if !e.Kind.ContainerVisible() {
		return s.reject(ctx, name, fmt.Errorf("%s property %q cannot be deferred to a container", e.Kind, name))
	}
	s.Instance.settings[e.Index].Deferred = true
	ctxlog.Trace(ctx, "Deferred property to container.", "slice", s.ID(), "property", name)
	return nil
}

// SetFinal sets a value that wins over inheritance and configuration. Final
// values ignore writeability.
func (s *Slice) SetFinal(ctx context.Context, name string, v Value) error {
	e, err := s.assignable(ctx, name)
	if err != nil {
		return err
	}
	v, err = Coerce(v, e.Type)
	if err != nil {
		return s.reject(ctx, name, err)
	}
	s.Instance.settings[e.Index].Final = v
	ctxlog.Trace(ctx, "Set final property value.", "slice", s.ID(), "property", name, "value", v.String())
	return nil
}

// assignable returns the leaf entry of a property visible at this level.
func (s *Slice) assignable(ctx context.Context, name string) (*decl.Entry, error) {
	e, ok := s.Property(name)
	if !ok {
		return nil, s.reject(ctx, name, fmt.Errorf("no property %q is visible on %s", name, s.TypeName()))
	}
	return s.Instance.cells[e.Index].Entry, nil
}

func (s *Slice) reject(ctx context.Context, name string, err error) error {
	d := diag.Errorf(ctx, diag.Assignment, s.ID()+"."+name, "assignment skipped: %v", err)
	return d
}

// Coerce fits a value to a declared type: data is converted, references are
// moved up to the slice of the declared type.
func Coerce(v Value, t typesys.Type) (Value, error) {
	switch {
	case v.IsMissing():
		return v, nil
	case v.IsRef():
		if t.IsAny() || t.IsZero() {
			return v, nil
		}
		if !t.IsNamed() {
			return Missing, fmt.Errorf("reference to %s cannot be used as %s", v.Slice().ID(), t)
		}
		up := v.Slice().As(t.Name())
		if up == nil {
			return Missing, fmt.Errorf("%s is not a %s", v.Slice().ID(), t.Name())
		}
		return Ref(up), nil
	}
	out, err := typesys.ConvertData(v.Data(), t)
	if err != nil {
		return Missing, err
	}
	return Data(out), nil
}
