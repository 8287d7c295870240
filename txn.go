package phamt

// This file holds the single-pass, path-copying recursive descent that
// backs Tree.Get/Set/Delete: lookupNode, insertNode and deleteNode each
// walk from a subtree root to the relevant leaf exactly once, and
// insertNode/deleteNode allocate new nodes only along that path — the
// path-copying technique, grounded in the teacher's
// Txn.recursiveInsert/recursiveDelete (txn.go in
// absolutelightning-go-immutable-adaptive-radix). Unlike the teacher's
// Txn, there is no cross-call node-id bookkeeping here: every Set or
// Delete is an independent, fully-persistent operation from whatever root
// it started at, with no transient/batch-build optimization across calls.

// lookupNode implements point lookup, including collision-node lookup,
// uniformly over whatever kind of subtree n is — including the case where
// n is the whole tree's root, which may be nil (empty), a bare *entry
// (collapsed single-key tree), or a *bitmapNode/*collisionNode.
func lookupNode[K comparable, V any](n node[K, V], key K, hash uint64, level, branchBits int) (V, bool) {
	var zero V
	switch cur := n.(type) {
	case nil:
		return zero, false
	case *entry[K, V]:
		if cur.key == key {
			return cur.value, true
		}
		return zero, false
	case *bitmapNode[K, V]:
		branch := slice(hash, level, branchBits)
		if !cur.occupied(branch) {
			return zero, false
		}
		s := cur.slots[cur.position(branch)]
		if s.leaf != nil {
			if s.leaf.key == key {
				return s.leaf.value, true
			}
			return zero, false
		}
		return lookupNode[K, V](s.child, key, hash, level+1, branchBits)
	case *collisionNode[K, V]:
		return cur.get(key)
	default:
		corruptf("lookup reached unknown node kind %T", n)
		panic("unreachable")
	}
}

// splitLeaves builds the subtree combining two leaves that land in the
// same slot. leafA/hashA is the leaf already in the tree, leafB/hashB the
// one being inserted.
func splitLeaves[K comparable, V any](leafA, leafB *entry[K, V], hashA, hashB uint64, level, branchBits, maxLvl int) node[K, V] {
	if level > maxLvl {
		if hashA != hashB {
			corruptf("keys %v and %v have distinct hashes %#x/%#x but exhausted all %d trie levels", leafA.key, leafB.key, hashA, hashB, maxLvl+1)
		}
		return &collisionNode[K, V]{hash: hashA, entries: []*entry[K, V]{leafA, leafB}}
	}

	branchA := slice(hashA, level, branchBits)
	branchB := slice(hashB, level, branchBits)

	if branchA == branchB {
		child := splitLeaves(leafA, leafB, hashA, hashB, level+1, branchBits, maxLvl)
		return newBitmapNode1[K, V](branchA, childSlot[K, V](child))
	}
	if branchA < branchB {
		return newBitmapNode2[K, V](branchA, branchB, leafSlot(leafA), leafSlot(leafB))
	}
	return newBitmapNode2[K, V](branchB, branchA, leafSlot(leafB), leafSlot(leafA))
}

// insertNode implements point insertion, including collision-node
// insert, returning the replacement subtree and a delta of 1 if key was
// new, 0 if it replaced an existing key's value.
func insertNode[K comparable, V any](n node[K, V], key K, value V, hash uint64, level, branchBits, maxLvl int, hasher Hasher[K]) (node[K, V], int) {
	switch cur := n.(type) {
	case nil:
		return newEntry(key, value), 1

	case *entry[K, V]:
		if cur.key == key {
			return newEntry(key, value), 0
		}
		otherHash := hasher(cur.key)
		return splitLeaves(cur, newEntry(key, value), otherHash, hash, level, branchBits, maxLvl), 1

	case *bitmapNode[K, V]:
		branch := slice(hash, level, branchBits)
		if !cur.occupied(branch) {
			pos := cur.position(branch)
			return cur.withSlotInserted(branch, pos, leafSlot(newEntry(key, value))), 1
		}
		pos := cur.position(branch)
		s := cur.slots[pos]
		if s.leaf != nil {
			if s.leaf.key == key {
				return cur.withSlotReplaced(pos, leafSlot(newEntry(key, value))), 0
			}
			otherHash := hasher(s.leaf.key)
			child := splitLeaves(s.leaf, newEntry(key, value), otherHash, hash, level+1, branchBits, maxLvl)
			return cur.withSlotReplaced(pos, childSlot[K, V](child)), 1
		}
		newChild, delta := insertNode[K, V](s.child, key, value, hash, level+1, branchBits, maxLvl, hasher)
		return cur.withSlotReplaced(pos, childSlot[K, V](newChild)), delta

	case *collisionNode[K, V]:
		if hash != cur.hash {
			corruptf("insert reached collision node for hash %#x with key hashing to %#x", cur.hash, hash)
		}
		newColl, delta := cur.insert(key, value, hash)
		return newColl, delta

	default:
		corruptf("insert reached unknown node kind %T", n)
		panic("unreachable")
	}
}

// collapseAfterRemoval applies the collapse rule once the slot at
// (branch, pos) is known to be removed from n: drop it outright when
// three or more slots remain, hoist the sole surviving slot's leaf when
// exactly two remain, or reduce to the empty subtree when n only had the
// one slot being removed.
//
// A surviving child must never be hoisted this way: it was built one
// level deeper than n (splitLeaves built it to be descended into at
// level+1), so promoting it to replace n leaves it queried one level too
// shallow by every later caller, misreading its hash's 5-bit window and
// corrupting unrelated lookups. Leaves carry no level dependency, so
// hoisting a surviving leaf is safe; a surviving child instead keeps a
// legitimate single-bit bitmapNode in place, same as the >=3-slot case.
// The teacher's recursiveDelete and the Python ground truth's
// BitmapNode.without both only collapse a node to nothing when it has no
// children left, never compressing a lone remaining child across a depth
// boundary.
func collapseAfterRemoval[K comparable, V any](n *bitmapNode[K, V], branch, pos int) node[K, V] {
	switch len(n.slots) {
	case 1:
		return nil
	case 2:
		if other := n.slots[1-pos]; other.leaf != nil {
			return other.leaf
		}
		return n.withSlotRemoved(branch, pos)
	default:
		return n.withSlotRemoved(branch, pos)
	}
}

// deleteNode implements point deletion, including collision-node delete.
// It returns (nil, value, true) when the subtree becomes empty,
// (replacement, value, true) when key was removed, or (n, zero, false)
// when key was absent — the caller keeps n unchanged in that last case,
// preserving handle identity.
func deleteNode[K comparable, V any](n node[K, V], key K, hash uint64, level, branchBits int) (node[K, V], V, bool) {
	var zero V
	switch cur := n.(type) {
	case nil:
		return nil, zero, false

	case *entry[K, V]:
		if cur.key != key {
			return n, zero, false
		}
		return nil, cur.value, true

	case *bitmapNode[K, V]:
		branch := slice(hash, level, branchBits)
		if !cur.occupied(branch) {
			return n, zero, false
		}
		pos := cur.position(branch)
		s := cur.slots[pos]

		if s.leaf != nil {
			if s.leaf.key != key {
				return n, zero, false
			}
			return collapseAfterRemoval(cur, branch, pos), s.leaf.value, true
		}

		newChild, val, removed := deleteNode[K, V](s.child, key, hash, level+1, branchBits)
		if !removed {
			return n, zero, false
		}
		if newChild == nil {
			return collapseAfterRemoval(cur, branch, pos), val, true
		}
		if leaf, ok := newChild.(*entry[K, V]); ok {
			if len(cur.slots) == 1 {
				return leaf, val, true
			}
			return cur.withSlotReplaced(pos, leafSlot(leaf)), val, true
		}
		return cur.withSlotReplaced(pos, childSlot[K, V](newChild)), val, true

	case *collisionNode[K, V]:
		val, ok := cur.get(key)
		if !ok {
			return n, zero, false
		}
		newColl, _ := cur.delete(key)
		return newColl, val, true

	default:
		corruptf("delete reached unknown node kind %T", n)
		panic("unreachable")
	}
}
