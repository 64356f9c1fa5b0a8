// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package slice implements the instance slice graph and its reference
// resolver.
//
// One model instance of type T is represented by a chain of slices, one per
// level of T's generalization chain, root first. The slices are cheap views
// over a single Instance record that owns everything shared by the chain:
// the identity, the configured values and the array of property resolution
// cells (one per property visible on the leaf). A slice at depth d sees the
// cells below its own visible-property cutoff only.
//
// Each level also owns unresolved typed references (container, requires,
// required-by, children, groups, construct parameters, contract targets).
// They are resolved against an Index of all registered slices, keyed by
// context and type name, before value resolution starts.
package slice
