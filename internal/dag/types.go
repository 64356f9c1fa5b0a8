package dag

import "sync"

// Graph is a collection of nodes and their dependencies.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order keeps insertion order so traversals are deterministic.
	order []string
}

// node is un-exported to enforce interaction with the graph via string IDs.
type node struct {
	id string
	// deps holds the nodes this node points away from (predecessors).
	deps map[string]*node
	// dependents holds the nodes this node points to (successors).
	dependents map[string]*node
}
