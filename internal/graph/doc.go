// Package graph exports a resolved slice graph as plain nodes and edges.
//
// # Why Graph Package Exists
//
// The construction-order sorter that consumes a built model knows nothing
// about slices, cells or references. It needs, per slice, a stable identity,
// the two structural links (container and generalization) and four edge
// lists. The graph package is that boundary: it reads the slice graph once
// and produces a value the sorter, a file or a test can consume.
//
// # Edges
//
// Every slice becomes one Node. Its Requires, RequiredBy, Children and Groups
// lists come from the references declared at that level. A resolved reference
// becomes an edge to the target node; an unresolved one becomes a Placeholder
// carrying the wanted type, context and failure policy.
//
// Edges pointing at the node itself, at its container or at its
// generalization are dropped. Those relationships already travel in the
// Container and Generalization fields, and repeating them as edges would show
// up as false cycles in the sorter.
//
// # Tracking
//
// With Options.FoldTracking set, every tracked-by link recorded during value
// resolution is folded into the edge lists according to the target type's
// tracking mode:
//
//	add_property_holder_as_children    target.Children   += holder
//	add_this_to_property_holder_items  target.Groups     += holder
//	property_holder_requires_this      holder.Requires   += target
//	property_holder_required_by_this   holder.RequiredBy += target
//
// # Encoding
//
// Graph.Encode writes JSON, YAML or deterministic CBOR.
package graph
