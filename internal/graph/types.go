// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package graph

// Placeholder stands in for a reference that did not resolve.
type Placeholder struct {
	Type    string `json:"type" yaml:"type" cbor:"type"`
	Context string `json:"context,omitempty" yaml:"context,omitempty" cbor:"context,omitempty"`
	Policy  string `json:"policy" yaml:"policy" cbor:"policy"`
}

// Edge points at a node or, when unresolved, carries a placeholder.
type Edge struct {
	Node        string       `json:"node,omitempty" yaml:"node,omitempty" cbor:"node,omitempty"`
	Placeholder *Placeholder `json:"placeholder,omitempty" yaml:"placeholder,omitempty" cbor:"placeholder,omitempty"`
}

// Property is the exported state of one resolved cell.
type Property struct {
	Name  string `json:"name" yaml:"name" cbor:"name"`
	Type  string `json:"type" yaml:"type" cbor:"type"`
	State string `json:"state" yaml:"state" cbor:"state"`
	// DeclaredBy names the type that first declared the property.
	DeclaredBy string `json:"declared_by" yaml:"declared_by" cbor:"declared_by"`
	// Value holds plain data, decoded into JSON-compatible Go values.
	Value any `json:"value,omitempty" yaml:"value,omitempty" cbor:"value,omitempty"`
	// Ref holds the node ID of a reference value.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty" cbor:"ref,omitempty"`
}

// Node is one exported slice.
type Node struct {
	ID       string `json:"id" yaml:"id" cbor:"id"`
	Instance string `json:"instance" yaml:"instance" cbor:"instance"`
	Type     string `json:"type" yaml:"type" cbor:"type"`
	Context  string `json:"context" yaml:"context" cbor:"context"`
	Depth    int    `json:"depth" yaml:"depth" cbor:"depth"`
	Item     string `json:"item" yaml:"item" cbor:"item"`
	Tracking string `json:"tracking" yaml:"tracking" cbor:"tracking"`

	Container      string `json:"container,omitempty" yaml:"container,omitempty" cbor:"container,omitempty"`
	Generalization string `json:"generalization,omitempty" yaml:"generalization,omitempty" cbor:"generalization,omitempty"`

	Requires   []Edge `json:"requires,omitempty" yaml:"requires,omitempty" cbor:"requires,omitempty"`
	RequiredBy []Edge `json:"required_by,omitempty" yaml:"required_by,omitempty" cbor:"required_by,omitempty"`
	Children   []Edge `json:"children,omitempty" yaml:"children,omitempty" cbor:"children,omitempty"`
	Groups     []Edge `json:"groups,omitempty" yaml:"groups,omitempty" cbor:"groups,omitempty"`

	// Properties is only filled on leaf nodes, which own the cells.
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty" cbor:"properties,omitempty"`
}

// Graph is the exported model.
type Graph struct {
	Nodes []*Node `json:"nodes" yaml:"nodes" cbor:"nodes"`
	// Contexts maps context -> type name -> IDs of the nodes of that type.
	Contexts map[string]map[string][]string `json:"contexts" yaml:"contexts" cbor:"contexts"`

	byID map[string]*Node
}

// Node finds a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Options tunes Export.
type Options struct {
	// FoldTracking folds tracked-by links into the edge lists.
	FoldTracking bool
	// OmitValues leaves Properties empty.
	OmitValues bool
}
