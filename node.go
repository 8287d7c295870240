package phamt

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// hashWord is the unsigned integer width slice/popcount are parameterized
// over. In normal operation this core always carries a hash as a uint64
// (low HashWidth bits meaningful, the rest zero-extended); the generic
// constraint also admits uint32, though nothing in this package
// instantiates slice over it. This is the one place this core
// actually exercises golang.org/x/exp/constraints — the teacher's go.mod
// already declares golang.org/x/exp, but its shipped source never imports
// it (see DESIGN.md).
type hashWord interface {
	constraints.Unsigned
}

// defaultBranchBits is the number of bits a single trie level consumes
// from a hash: 5, i.e. 32-way branching.
const defaultBranchBits = 5

// maxBranchBits bounds Config.BranchBits: the bitmap node's occupancy
// word is a 32-bit unsigned integer, so a trie level can never fan out
// past 32 branches.
const maxBranchBits = 5

// slice returns the branchBits-wide index selected by level from hash,
// consuming the hash least-significant-slice-first starting at level 0:
// (hash >> (branchBits * level)) & ((1 << branchBits) - 1).
func slice[H hashWord](hash H, level, branchBits int) int {
	shift := uint(branchBits) * uint(level)
	mask := H(1)<<uint(branchBits) - 1
	return int((hash >> shift) & mask)
}

// maxLevel is the deepest level at which slicing can still produce a
// distinct index: ceil(width/branchBits) - 1. Beyond it, colliding keys
// must be resolved by a collision node.
func maxLevel(width, branchBits int) int {
	levels := (width + branchBits - 1) / branchBits
	return levels - 1
}

// popcount counts the set bits below bit i (exclusive) is computed by the
// caller as popcount(bitmap & (bit-1)); this just wraps the hardware
// popcount for a bitmap node's 32-bit occupancy word.
func popcount(bitmap uint32) int {
	return bits.OnesCount32(bitmap)
}

// node is the tagged-variant interface shared by every non-empty subtree:
// a *bitmapNode[K,V], a *collisionNode[K,V], or a bare *entry[K,V]
// promoted to root by the collapse rule. Dispatch is a type switch at
// each descent step, favoring a flat, inline discriminant over
// virtual-table indirection on this hot path; the teacher's own Node[T]
// interface dispatches the same way across its handful of concrete node
// kinds (Node4, Node16, Node48, Node128, Node256, NodeLeaf).
type node[K comparable, V any] interface {
	isNode()
}
