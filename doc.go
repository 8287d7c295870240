// Package phamt implements the core of a persistent Hash Array Mapped
// Trie (HAMT): an immutable, structurally-shared associative map from
// comparable keys to arbitrary values. Every write returns a new Tree
// sharing whatever subtrees the write did not touch; no operation on a
// Tree mutates state observable to any other holder of it.
//
// The package exposes exactly the core described by this project's
// specification: bitmap branching nodes, collision nodes for keys whose
// hashes genuinely collide, and the Tree handle that wraps them. A
// user-facing convenience container, bulk construction from arbitrary
// iterables, and benchmarking are left to callers.
package phamt
