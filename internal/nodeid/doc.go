// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

/*
Package nodeid provides a structured, type-safe representation for the
identities of instances and slices, based on the canonical format `path`.

The format is a dot-separated sequence of segments. An instance is addressed
as `context.name` or `context.name[index]` when it was expanded with `count`;
each slice of the instance appends its level's type name, e.g.
`main.window[0].Control`. These strings are the stable node identities handed
to the graph exporter.
*/
package nodeid
