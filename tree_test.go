package phamt

import (
	"testing"

	"github.com/hashicorp/go-uuid"
	"github.com/stretchr/testify/require"
)

func newStringTree() *Tree[string, int] {
	return Empty[string, int](StringHasher())
}

// Inserting several distinct keys grows size and makes every key
// retrievable, including through iteration.
func TestTree_BasicInsertLookup(t *testing.T) {
	t.Parallel()

	tr := newStringTree()
	tr = tr.Set("a", 1)
	tr = tr.Set("b", 2)
	tr = tr.Set("c", 3)

	require.Equal(t, 3, tr.Size())
	v, ok := tr.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	seen := map[string]int{}
	tr.Each(func(k string, v int) bool {
		seen[k] = v
		return true
	})
	require.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, seen)
}

// Setting an existing key again replaces its value without growing size.
func TestTree_SetOverridesValue(t *testing.T) {
	t.Parallel()

	tr := newStringTree().Set("x", 1).Set("x", 2)
	require.Equal(t, 1, tr.Size())
	v, ok := tr.Get("x")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

// Building from a slice of pairs and then deleting one key leaves the
// rest intact.
func TestTree_FromAndDelete(t *testing.T) {
	t.Parallel()

	tr, err := From[string, int](StringHasher(), DefaultConfig(), []Pair[string, int]{
		{"a", 1}, {"b", 2}, {"c", 3},
	})
	require.NoError(t, err)

	tr = tr.Delete("b")
	require.Equal(t, 2, tr.Size())
	require.False(t, tr.Contains("b"))
	require.True(t, tr.Contains("a"))
	v, ok := tr.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestTree_DeleteAbsentIsIdentity(t *testing.T) {
	t.Parallel()

	tr := newStringTree().Set("a", 1)
	after := tr.Delete("missing")
	require.Same(t, tr, after)
}

func TestTree_DeleteRemovesKey(t *testing.T) {
	t.Parallel()

	tr := newStringTree().Set("a", 1)
	tr = tr.Delete("a")
	require.False(t, tr.Contains("a"))
	require.Equal(t, 0, tr.Size())
}

func TestTree_SizeLaw(t *testing.T) {
	t.Parallel()

	tr := newStringTree().Set("a", 1).Set("b", 2)

	withExisting := tr.Set("a", 99)
	require.Equal(t, tr.Size(), withExisting.Size())

	withNew := tr.Set("c", 3)
	require.Equal(t, tr.Size()+1, withNew.Size())

	afterDeleteExisting := tr.Delete("a")
	require.Equal(t, tr.Size()-1, afterDeleteExisting.Size())

	afterDeleteAbsent := tr.Delete("zzz")
	require.Equal(t, tr.Size(), afterDeleteAbsent.Size())
}

// Persistence: writes to a derived tree never affect the tree they were
// derived from.
func TestTree_Persistence(t *testing.T) {
	t.Parallel()

	base := newStringTree().Set("a", 1)
	derived := base.Set("a", 2).Set("b", 3)

	v, ok := base.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.False(t, base.Contains("b"))

	derived = derived.Delete("a")
	v, ok = base.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

// Canonicality: two trees built via different operation sequences but
// holding the same (key, value) set compare equal.
func TestTree_Canonicality(t *testing.T) {
	t.Parallel()

	a := newStringTree().Set("a", 1).Set("b", 2).Set("c", 3)
	b := newStringTree().Set("c", 3).Set("a", 1).Set("b", 2).Set("z", 9).Delete("z")

	require.True(t, a.Equals(b))
}

func TestTree_IterationCompleteness(t *testing.T) {
	t.Parallel()

	inserted := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
	tr := newStringTree()
	for k, v := range inserted {
		tr = tr.Set(k, v)
	}
	tr = tr.Delete("c")
	delete(inserted, "c")

	count := 0
	tr.Each(func(k string, v int) bool {
		want, ok := inserted[k]
		require.True(t, ok, "unexpected key %q", k)
		require.Equal(t, want, v)
		count++
		return true
	})
	require.Equal(t, tr.Size(), count)
	require.Equal(t, len(inserted), count)
}

// A degenerate hash that returns 0 for every key collapses the whole
// tree to a linear associative list under all operations.
func TestTree_CollisionCorrectness(t *testing.T) {
	t.Parallel()

	constant := Hasher[int](func(int) uint64 { return 0 })
	tr := Empty[int, string](constant)

	const n = 16
	for i := 0; i < n; i++ {
		tr = tr.Set(i, "v")
	}
	require.Equal(t, n, tr.Size())
	root, ok := tr.root.(*collisionNode[int, string])
	require.True(t, ok, "expected a single collision node, got %T", tr.root)
	require.Len(t, root.entries, n)

	for i := 0; i < n-1; i++ {
		tr = tr.Delete(i)
	}
	require.Equal(t, 1, tr.Size())
	_, isLeaf := tr.root.(*entry[int, string])
	require.True(t, isLeaf, "collision node should collapse to a bare leaf, got %T", tr.root)

	tr = tr.Delete(n - 1)
	require.Equal(t, 0, tr.Size())
	require.Nil(t, tr.root)
}

// A base tree of many keys stays untouched by variants built from it.
func TestTree_StructuralSharingAcrossVariants(t *testing.T) {
	t.Parallel()

	const baseSize = 2000
	const variants = 50

	base := newStringTree()
	keys := make([]string, baseSize)
	for i := range keys {
		k, err := uuid.GenerateUUID()
		require.NoError(t, err)
		keys[i] = k
		base = base.Set(k, i)
	}
	require.Equal(t, baseSize, base.Size())

	for i := 0; i < variants; i++ {
		extra, err := uuid.GenerateUUID()
		require.NoError(t, err)
		variant := base.Set(extra, -1)
		require.Equal(t, baseSize+1, variant.Size())
		require.Equal(t, baseSize, base.Size())
		require.False(t, base.Contains(extra))
		require.True(t, variant.Contains(extra))
	}

	for i, k := range keys {
		v, ok := base.Get(k)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

// Keys whose hashes share a prefix at level 0 but diverge at level 1
// collapse correctly on delete, matching a tree built directly from the
// surviving keys.
func TestTree_CollapseMatchesDirectBuild(t *testing.T) {
	t.Parallel()

	// branch 3 at level 0 for all three; branch differs at level 1.
	hash := func(k int) uint64 {
		branch0 := uint64(3)
		branch1 := uint64(k)
		return branch0 | (branch1 << 5)
	}

	withThree := Empty[int, string](hash).Set(1, "one").Set(2, "two").Set(3, "three")
	withThree = withThree.Delete(2)

	direct := Empty[int, string](hash).Set(1, "one").Set(3, "three")

	require.True(t, withThree.Equals(direct))
	require.Equal(t, 2, withThree.Size())
}

// Regression test for a collapse bug: deleting the leaf out of a 2-slot
// bitmapNode whose surviving slot is a *child* (not a leaf) must not hoist
// that child up a trie level — the child was built to be descended into
// one level deeper than the node holding it, so hoisting it would leave
// every later lookup reading the wrong 5-bit window of the hash and make
// unrelated keys vanish.
func TestTree_DeleteLeafSiblingOfChildDoesNotMisplaceChild(t *testing.T) {
	t.Parallel()

	// keys 1 and 2 share branch 7 at level 0 and diverge at level 1, so
	// they live under a nested child node; key 3 lands at a distinct
	// level-0 branch, giving the root exactly two slots: a child and a
	// leaf.
	hash := func(k int) uint64 {
		switch k {
		case 1:
			return 7
		case 2:
			return 7 | (1 << 5)
		case 3:
			return 20
		default:
			panic("unexpected key")
		}
	}

	tr := Empty[int, string](hash).Set(1, "one").Set(2, "two").Set(3, "three")
	root, ok := tr.root.(*bitmapNode[int, string])
	require.True(t, ok)
	require.Len(t, root.slots, 2)

	tr = tr.Delete(3)
	require.Equal(t, 2, tr.Size())

	v, ok := tr.Get(1)
	require.True(t, ok, "key 1 must survive deleting an unrelated sibling key")
	require.Equal(t, "one", v)

	v, ok = tr.Get(2)
	require.True(t, ok, "key 2 must survive deleting an unrelated sibling key")
	require.Equal(t, "two", v)

	direct := Empty[int, string](hash).Set(1, "one").Set(2, "two")
	require.True(t, tr.Equals(direct))
}

func TestTree_GetWithDefaultNeverErrors(t *testing.T) {
	t.Parallel()

	tr := newStringTree()
	_, ok := tr.Get("missing")
	require.False(t, ok)
	require.False(t, tr.Contains("missing"))
}

func TestTree_NewConfigRejectsInvalidCombinations(t *testing.T) {
	t.Parallel()

	_, err := New[string, int](StringHasher(), Config{HashWidth: 40, BranchBits: 5})
	require.Error(t, err)

	_, err = New[string, int](StringHasher(), Config{HashWidth: 64, BranchBits: 7})
	require.Error(t, err)

	_, err = New[string, int](StringHasher(), Config{HashWidth: 64, BranchBits: 0})
	require.Error(t, err)

	_, err = New[string, int](StringHasher(), Config{HashWidth: 32, BranchBits: 5, HashCacheSize: -1})
	require.Error(t, err)

	tr, err := New[string, int](StringHasher(), Config{HashWidth: 32, BranchBits: 5})
	require.NoError(t, err)
	require.NotNil(t, tr)
}

func TestTree_HashCacheDoesNotChangeBehavior(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.HashCacheSize = 64

	tr, err := New[string, int](StringHasher(), cfg)
	require.NoError(t, err)

	tr = tr.Set("a", 1).Set("b", 2)
	v, ok := tr.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	// Looking a key up repeatedly must keep returning the same answer
	// whether or not the hash was served from cache.
	for i := 0; i < 5; i++ {
		v, ok := tr.Get("a")
		require.True(t, ok)
		require.Equal(t, 1, v)
	}
}
