// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package slice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/ambigrid/internal/ctxlog"
	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/registry"
)

// ErrAmbiguous is returned when a reference matches more than one slice.
var ErrAmbiguous = errors.New("ambiguous reference")

// Policy decides how loudly an unresolved reference is reported.
type Policy int

const (
	PolicyIgnore Policy = iota
	PolicyWarn
	PolicyError
)

func (p Policy) String() string {
	switch p {
	case PolicyIgnore:
		return "ignore"
	case PolicyWarn:
		return "warn"
	case PolicyError:
		return "error"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Role says which relationship a reference describes.
type Role int

const (
	RoleContainer Role = iota
	RoleRequires
	RoleRequiredBy
	RoleChildren
	RoleGroups
	RoleConstruct
	RoleAmbientTarget
)

var roleNames = [...]string{"container", "requires", "required_by", "children", "groups", "construct", "ambient_target"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Reference is a typed link from one slice to an instance of another type.
// It starts unresolved and is resolved at most once.
type Reference struct {
	Owner  *Slice
	Role   Role
	Want   registry.TypeRef
	Policy Policy
	// Property is the contract property of an ambient target reference.
	Property *decl.Entry

	done   bool
	target *Slice
	err    error
}

func newReference(owner *Slice, role Role, want registry.TypeRef, policy Policy) *Reference {
	return &Reference{Owner: owner, Role: role, Want: want, Policy: policy}
}

func newReferences(owner *Slice, role Role, wants []registry.TypeRef, policy Policy) []*Reference {
	if len(wants) == 0 {
		return nil
	}
	out := make([]*Reference, len(wants))
	for i, w := range wants {
		out[i] = newReference(owner, role, w, policy)
	}
	return out
}

// Resolved reports whether Resolve already ran.
func (r *Reference) Resolved() bool { return r.done }

// Slice returns the resolved target, nil when unresolved or not found.
func (r *Reference) Slice() *Slice { return r.target }

// Err returns the resolution error, if any.
func (r *Reference) Err() error { return r.err }

// Resolve looks the target up in ix and memoizes the outcome. With a context
// tag only that context is searched; otherwise the owner's context is
// searched first, then every context. No match is reported according to the
// policy and yields nil. More than one match is always a fatal ambiguity.
func (r *Reference) Resolve(ctx context.Context, ix *Index) (*Slice, error) {
	if r.done {
		return r.target, r.err
	}
	r.done = true

	subject := r.Owner.ID()
	var matches []*Slice
	if r.Want.Context != "" {
		matches = r.candidates(ix, r.Want.Context)
	} else {
		matches = r.candidates(ix, r.Owner.Context())
		if len(matches) == 0 {
			for _, c := range ix.Contexts() {
				matches = append(matches, r.candidates(ix, c)...)
			}
		}
	}

	switch len(matches) {
	case 0:
		msg := fmt.Sprintf("%s reference to %s is unresolved", r.Role, r.Want)
		switch r.Policy {
		case PolicyError:
			diag.Errorf(ctx, diag.Reference, subject, "%s", msg)
		case PolicyWarn:
			diag.Warnf(ctx, diag.Reference, subject, "%s", msg)
		default:
			ctxlog.Trace(ctx, "Ignoring unresolved reference.", "slice", subject, "role", r.Role.String(), "want", r.Want.String())
		}
		return nil, nil
	case 1:
		r.target = matches[0]
		ctxlog.Trace(ctx, "Resolved reference.", "slice", subject, "role", r.Role.String(), "target", r.target.ID())
		return r.target, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID()
	}
	r.err = fmt.Errorf("%s reference from %s to %s matches %s: %w",
		r.Role, subject, r.Want, strings.Join(ids, ", "), ErrAmbiguous)
	diag.Fatalf(ctx, diag.Ambiguity, subject, "%s reference to %s matches %d instances: %s",
		r.Role, r.Want, len(matches), strings.Join(ids, ", "))
	return nil, r.err
}

// candidates returns the slices of the wanted type in one context, minus the
// owner's own chain.
func (r *Reference) candidates(ix *Index, contextName string) []*Slice {
	var out []*Slice
	for _, s := range ix.Find(contextName, r.Want.Type) {
		if s.Instance != r.Owner.Instance {
			out = append(out, s)
		}
	}
	return out
}
