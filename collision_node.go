package phamt

// collisionNode is a flat list of key/value pairs sharing one full hash
// value. It is only ever produced once descent has consumed every
// slicing level a Config's HashWidth allows — two distinct keys whose
// hashes are genuinely equal.
type collisionNode[K comparable, V any] struct {
	hash    uint64
	entries []*entry[K, V]
}

func (*collisionNode[K, V]) isNode() {}

// indexOf returns the position of key within n.entries, or -1.
func (n *collisionNode[K, V]) indexOf(key K) int {
	for i, e := range n.entries {
		if e.key == key {
			return i
		}
	}
	return -1
}

func (n *collisionNode[K, V]) get(key K) (V, bool) {
	if i := n.indexOf(key); i >= 0 {
		return n.entries[i].value, true
	}
	var zero V
	return zero, false
}

// insert returns a new collisionNode (or, via the caller, a split) and a
// delta of 1 if key was new or 0 if it replaced an existing entry.
// Inserting a key whose hash differs from n.hash is a caller error: the
// split step must have wrapped this node under a fresh bitmap node
// instead of calling insert on it directly.
func (n *collisionNode[K, V]) insert(key K, value V, hash uint64) (*collisionNode[K, V], int) {
	if hash != n.hash {
		corruptf("insert into collision node for hash %#x with mismatched hash %#x", n.hash, hash)
	}
	if i := n.indexOf(key); i >= 0 {
		entries := make([]*entry[K, V], len(n.entries))
		copy(entries, n.entries)
		entries[i] = newEntry(key, value)
		return &collisionNode[K, V]{hash: n.hash, entries: entries}, 0
	}
	entries := make([]*entry[K, V], len(n.entries)+1)
	copy(entries, n.entries)
	entries[len(n.entries)] = newEntry(key, value)
	return &collisionNode[K, V]{hash: n.hash, entries: entries}, 1
}

// delete removes key from n. It returns (newCollisionNode, true) when at
// least two entries remain, (survivor, true) with survivor the sole
// remaining *entry when exactly one would remain (to be hoisted by the
// caller), or (nil, false) if key was absent.
func (n *collisionNode[K, V]) delete(key K) (node[K, V], bool) {
	i := n.indexOf(key)
	if i < 0 {
		return nil, false
	}
	if len(n.entries) == 2 {
		survivor := n.entries[1-i]
		return survivor, true
	}
	entries := make([]*entry[K, V], len(n.entries)-1)
	copy(entries, n.entries[:i])
	copy(entries[i:], n.entries[i+1:])
	return &collisionNode[K, V]{hash: n.hash, entries: entries}, true
}
