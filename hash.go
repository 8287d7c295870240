package phamt

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Hasher is the host-provided hashing capability every Tree needs: a
// deterministic hash function on keys, consistent with equality (two
// keys equal under == must hash identically). Only the low
// Config.HashWidth bits of the returned value are consumed; a Tree masks
// off any higher bits before use.
type Hasher[K comparable] func(key K) uint64

// StringHasher returns a Hasher for string keys built on
// github.com/cespare/xxhash/v2, a dependency drawn from the rest of the
// retrieved pack (inngest-inngest's go.mod lists cespare/xxhash/v2 as its
// general-purpose non-cryptographic hash). It gives Tree[string, V] a
// usable default without requiring every caller to supply their own
// Hasher.
func StringHasher() Hasher[string] {
	return func(key string) uint64 {
		return xxhash.Sum64String(key)
	}
}

// IntHasher returns a Hasher for any fixed-width signed or unsigned
// integer key type, hashing its big-endian byte representation with
// xxhash so that small keys still spread across the full hash width
// (unlike the identity function, which would leave high trie levels
// starved for small integer keys).
func IntHasher[K ~int | ~int8 | ~int16 | ~int32 | ~int64 |
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64]() Hasher[K] {
	return func(key K) uint64 {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(key))
		return xxhash.Sum64(buf[:])
	}
}

// cachedHasher wraps a Hasher in a bounded LRU memoization cache keyed by
// the key itself, using github.com/hashicorp/golang-lru/v2 — a dependency
// the teacher already declares in its go.mod but never imports from
// shipped source (see DESIGN.md). Config.HashCacheSize enables this when
// the host's Hasher is expensive (e.g. a cryptographic hash) and the same
// keys are looked up repeatedly; it is a memoization of a pure function,
// never a batch construction shortcut.
type cachedHasher[K comparable] struct {
	hash  Hasher[K]
	cache *lru.Cache[K, uint64]
}

func newCachedHasher[K comparable](hash Hasher[K], size int) *cachedHasher[K] {
	cache, err := lru.New[K, uint64](size)
	if err != nil {
		// Config validation rejects a negative size and New only builds
		// a cache for a positive one, so the only way lru.New fails here
		// is a programmer error.
		panic(fmt.Sprintf("phamt: invalid hash cache size %d: %v", size, err))
	}
	return &cachedHasher[K]{hash: hash, cache: cache}
}

func (c *cachedHasher[K]) Hash(key K) uint64 {
	if h, ok := c.cache.Get(key); ok {
		return h
	}
	h := c.hash(key)
	c.cache.Add(key, h)
	return h
}
