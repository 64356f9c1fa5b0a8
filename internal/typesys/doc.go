// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package typesys describes the value types a property can be declared with
// and the assignability rules the merge and resolution stages rely on.
//
// A property type is either a cty type (string, list(number), object({...}),
// any, ...) for plain data, or a named model type for properties whose value
// is a reference to another instance. Named types form single-inheritance
// chains; the chain itself lives in the registry and is reached through the
// Hierarchy interface so this package stays free of registry state.
package typesys
