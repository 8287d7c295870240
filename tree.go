package phamt

import "reflect"

// Tree is the outward-facing persistent map: it owns a root — the empty
// sentinel (nil), a bare *entry, a *bitmapNode, or a *collisionNode —
// plus a cached size. Every method that would mutate a conventional map
// instead returns a new *Tree sharing whatever subtrees did not change;
// no method observably mutates the receiver.
//
// Tree mirrors the teacher's RadixTree[T] handle: a thin struct around a
// root pointer and a size counter, with Insert/Delete delegating to an
// internal transaction-shaped recursive descent (txn.go) and the handle
// itself staying immutable.
type Tree[K comparable, V any] struct {
	root node[K, V]
	size int

	cfg    Config
	maxLvl int
	hash   func(K) uint64
}

// Pair is one (key, value) input to From.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Empty returns a new, empty Tree using DefaultConfig and the given
// Hasher, the host hashing capability every Tree requires.
func Empty[K comparable, V any](hasher Hasher[K]) *Tree[K, V] {
	t, err := New[K, V](hasher, DefaultConfig())
	if err != nil {
		// DefaultConfig is always valid; a failure here is a bug in
		// this package, not a caller error.
		panic(err)
	}
	return t
}

// New returns a new, empty Tree using cfg, validated via NewConfig.
func New[K comparable, V any](hasher Hasher[K], cfg Config) (*Tree[K, V], error) {
	cfg, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	h := maskedHasher(hasher, cfg.HashWidth)
	if cfg.HashCacheSize > 0 {
		cached := newCachedHasher(h, cfg.HashCacheSize)
		h = cached.Hash
	}

	return &Tree[K, V]{
		cfg:    cfg,
		maxLvl: maxLevel(cfg.HashWidth, cfg.BranchBits),
		hash:   h,
	}, nil
}

// From builds a Tree from a finite slice of pairs. Duplicate keys
// produce a single entry holding the last value seen. It is a thin
// convenience built from repeated Set calls, not a general bulk
// constructor from arbitrary iterables — that stays a caller's concern.
func From[K comparable, V any](hasher Hasher[K], cfg Config, pairs []Pair[K, V]) (*Tree[K, V], error) {
	t, err := New[K, V](hasher, cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		t = t.Set(p.Key, p.Value)
	}
	return t, nil
}

// maskedHasher wraps hasher so its result never carries bits above width
// — so a host Hasher written for 64-bit use still behaves correctly under
// a 32-bit Config.
func maskedHasher[K comparable](hasher Hasher[K], width int) func(K) uint64 {
	if width >= 64 {
		return func(k K) uint64 { return hasher(k) }
	}
	mask := uint64(1)<<uint(width) - 1
	return func(k K) uint64 { return hasher(k) & mask }
}

// Get looks up key, descending without allocating.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	return lookupNode[K, V](t.root, key, t.hash(key), 0, t.cfg.BranchBits)
}

// Contains delegates to Get; neither ever signals an error for a missing
// key.
func (t *Tree[K, V]) Contains(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// Set returns a new Tree with key mapped to value, sharing every subtree
// of t that the write did not touch.
func (t *Tree[K, V]) Set(key K, value V) *Tree[K, V] {
	hash := t.hash(key)
	newRoot, delta := insertNode[K, V](t.root, key, value, hash, 0, t.cfg.BranchBits, t.maxLvl, t.rehash())
	return t.withRoot(newRoot, t.size+delta)
}

// Delete returns a new Tree with key absent. If key was already absent,
// Delete returns t itself unchanged, preserving handle identity rather
// than allocating a no-op copy.
func (t *Tree[K, V]) Delete(key K) *Tree[K, V] {
	hash := t.hash(key)
	newRoot, _, removed := deleteNode[K, V](t.root, key, hash, 0, t.cfg.BranchBits)
	if !removed {
		return t
	}
	return t.withRoot(newRoot, t.size-1)
}

// Size returns the cached entry count in O(1).
func (t *Tree[K, V]) Size() int {
	return t.size
}

// Equals reports whether t and other hold the same set of (key, value)
// pairs. It checks size, then — unless the two share a root outright,
// which structural sharing makes a cheap and common case — walks t and
// looks each key up in other, rather than comparing node graphs
// structurally: two trees can hold the same content while differing in
// shape depending on their build history. Values are compared with
// reflect.DeepEqual; no library in the retrieved pack offers a generic
// deep-equality primitive, so this is one of the few places this module
// reaches for the standard library (see DESIGN.md).
func (t *Tree[K, V]) Equals(other *Tree[K, V]) bool {
	if other == nil {
		return t.size == 0
	}
	if t.size != other.size {
		return false
	}
	if sameNode[K, V](t.root, other.root) {
		return true
	}
	equal := true
	t.Each(func(k K, v V) bool {
		ov, ok := other.Get(k)
		if !ok || !reflect.DeepEqual(v, ov) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

func sameNode[K comparable, V any](a, b node[K, V]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// rehash returns the Hasher this Tree's Set path re-derives an existing
// leaf's hash with when splitting — the same width-masked function Get
// uses, so a leaf re-hashed mid-insert is indistinguishable from one
// hashed fresh.
func (t *Tree[K, V]) rehash() Hasher[K] {
	return t.hash
}

func (t *Tree[K, V]) withRoot(root node[K, V], size int) *Tree[K, V] {
	return &Tree[K, V]{
		root:   root,
		size:   size,
		cfg:    t.cfg,
		maxLvl: t.maxLvl,
		hash:   t.hash,
	}
}
