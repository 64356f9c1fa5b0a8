// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package decl

import (
	"fmt"

	"github.com/specialistvlad/ambigrid/internal/typesys"
)

// Kind distinguishes the three sorts of declarations a type can carry. They
// share every field and differ only in how their values are resolved.
type Kind int

const (
	// KindAmbient is an ambient property: its value may come from the
	// instance, from the container chain or from the external resolver hook.
	KindAmbient Kind = iota
	// KindContract is an ambient contract: its value is a reference to an
	// instance satisfying the declared type, typically supplied by a container.
	KindContract
	// KindInherited is a plain property inherited along the generalization
	// chain only. Container lookups never see it.
	KindInherited
)

var kindNames = map[Kind]string{
	KindAmbient:   "ambient",
	KindContract:  "contract",
	KindInherited: "inherited",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps the textual form used in metadata files to a Kind. The
// empty string means KindAmbient.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindAmbient, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindAmbient, fmt.Errorf("unknown property kind %q (expected ambient, contract or inherited)", s)
}

// ContainerVisible reports whether values of this kind can be inherited
// through a container.
func (k Kind) ContainerVisible() bool {
	return k != KindInherited
}

// Declaration is one property as declared by one type. It is immutable once
// handed to Merge.
type Declaration struct {
	Name string
	Type typesys.Type
	// Optional is only meaningful when ExplicitOptional is set. Otherwise the
	// optionality is inferred from Type.
	Optional         bool
	ExplicitOptional bool
	Writeable        bool
	Mergeable        bool
	// Owner is the name of the declaring type.
	Owner string
	// Context restricts reference lookups for this property to one context.
	Context string
	Kind    Kind
}

// Subject names the declaration in diagnostics.
func (d *Declaration) Subject() string {
	return d.Owner + "." + d.Name
}

// effective returns a copy with the inferred fields filled in.
func (d *Declaration) effective() Declaration {
	out := *d
	if out.Type.IsZero() {
		out.Type = typesys.Any
	}
	if !out.ExplicitOptional {
		out.Optional = out.Type.ImplicitlyOptional()
	}
	return out
}
