// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package resolve computes the value of every property cell of every
// instance: lazily, at most once per cell, and safely in the presence of
// cycles through container or reference chains.
//
// A cell is resolved by the first rule that yields a value:
//
//  1. a final value set by an initializer;
//  2. a property deferred to the container takes the container's value;
//  3. a value configured on a level shallower than the leaf is overridden by
//     the container of any deeper level, deepest first;
//  4. the configured value; for contracts, the nearest container satisfying
//     the declared type, then the contract's target reference; then the
//     external Hook.
//
// Reference results are moved to the most abstract slice still satisfying
// the declared type, where a tracked-by edge is recorded when the target
// type tracks usages. Mergeable properties combine the container's value
// with the configured one. A required property left missing is reported.
//
// Cycles: re-entering a cell that is in progress yields a transient missing
// value. Every cell that observed such a re-entry below its own frame is put
// back to Unresolved instead of being cached; only the cell where the cycle
// was entered caches its result.
package resolve
