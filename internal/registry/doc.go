// Package registry holds the type metadata of one model and computes, once
// per type, its Descriptor: the merged property list plus the structural
// metadata (container, item classification, reference lists, tracking mode)
// inherited from ancestors when not declared locally.
//
// Descriptors are memoized. Every caller asking for the same type gets the
// same *Descriptor, which matters because slices and cells compare entries by
// identity. Reset drops the cache so a long-lived process can rebuild a model
// from scratch.
package registry
