// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/ambigrid/internal/decl"
)

// ItemKind classifies how a type participates in grouping.
type ItemKind int

const (
	ItemUnknown ItemKind = iota
	ItemSimple
	ItemGroup
	ItemContainer
)

var itemKindNames = map[ItemKind]string{
	ItemUnknown:   "unknown",
	ItemSimple:    "simple_item",
	ItemGroup:     "group",
	ItemContainer: "container",
}

func (k ItemKind) String() string {
	if s, ok := itemKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("item(%d)", int(k))
}

// ParseItemKind parses the metadata spelling of an item kind. The empty
// string is ItemUnknown.
func ParseItemKind(s string) (ItemKind, error) {
	if s == "" {
		return ItemUnknown, nil
	}
	for k, name := range itemKindNames {
		if name == s {
			return k, nil
		}
	}
	return ItemUnknown, fmt.Errorf("unknown item kind %q", s)
}

// TrackingMode says what to record when an instance of a type is used as the
// value of another instance's property, and how that usage is folded into
// the exported graph.
type TrackingMode int

const (
	TrackingUnknown TrackingMode = iota
	TrackingNone
	// TrackingAddHolderAsChildren makes the holder a child of the target.
	TrackingAddHolderAsChildren
	// TrackingAddToHolderItems makes the holder a group of the target.
	TrackingAddToHolderItems
	// TrackingHolderRequires makes the holder require the target.
	TrackingHolderRequires
	// TrackingHolderRequiredBy makes the holder required by the target.
	TrackingHolderRequiredBy
)

var trackingNames = map[TrackingMode]string{
	TrackingUnknown:             "unknown",
	TrackingNone:                "none",
	TrackingAddHolderAsChildren: "add_property_holder_as_children",
	TrackingAddToHolderItems:    "add_this_to_property_holder_items",
	TrackingHolderRequires:      "property_holder_requires_this",
	TrackingHolderRequiredBy:    "property_holder_required_by_this",
}

func (m TrackingMode) String() string {
	if s, ok := trackingNames[m]; ok {
		return s
	}
	return fmt.Sprintf("tracking(%d)", int(m))
}

// Enabled reports whether usages must be recorded.
func (m TrackingMode) Enabled() bool {
	return m != TrackingUnknown && m != TrackingNone
}

// ParseTrackingMode parses the metadata spelling of a tracking mode. The
// empty string is TrackingUnknown, which inherits the parent's mode.
func ParseTrackingMode(s string) (TrackingMode, error) {
	if s == "" {
		return TrackingUnknown, nil
	}
	for m, name := range trackingNames {
		if name == s {
			return m, nil
		}
	}
	return TrackingUnknown, fmt.Errorf("unknown tracking mode %q", s)
}

// TypeRef is a typed reference target: an instance of Type, optionally
// restricted to one context.
type TypeRef struct {
	Type    string
	Context string
}

func (r TypeRef) String() string {
	if r.Context == "" {
		return r.Type
	}
	return r.Context + ":" + r.Type
}

// TypeInfo is the metadata one type declares locally.
type TypeInfo struct {
	Name   string
	Parent string

	Item     ItemKind
	Tracking TrackingMode

	Container  *TypeRef
	Requires   []TypeRef
	RequiredBy []TypeRef
	Children   []TypeRef
	Groups     []TypeRef
	Construct  []TypeRef

	Properties []*decl.Declaration

	DefRange hcl.Range
}
