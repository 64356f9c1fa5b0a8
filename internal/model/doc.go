// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of the ambigrid HCL metadata.
// Its purpose is to turn the user's `type` and `instance` blocks into
// strongly-typed values the build session can consume.
//
// # Core Concepts
//
//   - Model: everything loaded from one or more .hcl files.
//
//   - Type: a `type` block, decoded straight into a registry.TypeInfo. It names
//     its generalization (`extends`), its structural metadata (container,
//     item kind, reference lists, tracking mode) and its `property` blocks.
//
//   - Instance: an `instance` block. It names the leaf type, the context the
//     instance lives in, an optional static `count`, and the values configured
//     on its levels.
//
//   - FSInfo: links every definition back to its source file for error
//     reporting.
//
// Why keep instance values as expressions?
//
// A value may reference another instance (`instance.main.window`). Such a
// reference can only be resolved once every instance exists, so the loader
// captures the expressions and the build session evaluates them after all
// slice chains are created. Plain values are evaluated with the cty standard
// library functions available.
package model
