// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package decl is the declaration merge engine.
//
// Every type contributes an ordered list of property declarations. Merge
// folds a type's own declarations into its parent's already-merged list and
// yields the list of properties visible at that specialization level. The
// result is the foundation for everything downstream: the index of an entry
// is the index of its resolution cell on every instance, and an ancestor
// slice sees exactly the prefix of its descendant's list that it merged
// itself.
//
// # Rules
//
//   - Inherited entries keep their index and are shared by pointer unless the
//     type redeclares them.
//   - New declarations are appended after every inherited entry, in source order.
//   - A redeclaration must be covariant: its type must be assignable to the
//     inherited one. Otherwise one structural error is reported and the
//     inherited type is kept.
//   - Optional to required is always allowed. Required to optional is an
//     error unless the inherited requirement was only implicit.
//   - A contract cannot be redeclared as a plain property or vice versa.
//
// Violations are reported through package diag and never abort the merge.
package decl
