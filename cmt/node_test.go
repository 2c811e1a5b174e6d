package cmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyNodeCachedAgrees(t *testing.T) {
	cache := make([]Node, 20)
	for level := uint32(0); level <= 20; level++ {
		assert.Equal(t, EmptyNode(level), EmptyNodeCached(level, cache), "level %d", level)
	}
	// the memo must hold the same values it returned
	for level := uint32(1); level <= 20; level++ {
		assert.Equal(t, EmptyNode(level), cache[level-1])
	}
}

func TestEmptyNodeCachedShortCache(t *testing.T) {
	// a cache shorter than the requested level still yields the right
	// value, it just cannot memoise the upper levels
	assert.Equal(t, EmptyNode(8), EmptyNodeCached(8, make([]Node, 3)))
	assert.Equal(t, EmptyNode(8), EmptyNodeCached(8, nil))
}

func TestHashToParentOperandOrder(t *testing.T) {
	a := Node{1}
	b := Node{2}

	left := a
	HashToParent(&left, b, true)
	right := a
	HashToParent(&right, b, false)
	require.NotEqual(t, left, right)

	// hashing (a,b) with a on the left equals hashing (b,a) with b on
	// the right
	swapped := b
	HashToParent(&swapped, a, false)
	require.Equal(t, left, swapped)
}

func TestRecomputeSingleLeaf(t *testing.T) {
	// a depth 3 tree holding one leaf at index 5: every sibling on the
	// way up is an empty subtree root
	leaf := Node{0xaa}
	proof := []Node{EmptyNode(0), EmptyNode(1), EmptyNode(2)}

	want := leaf
	HashToParent(&want, EmptyNode(0), false) // 5 is a right child at level 0
	HashToParent(&want, EmptyNode(1), true)  // left at level 1
	HashToParent(&want, EmptyNode(2), false) // right at level 2

	require.Equal(t, want, Recompute(leaf, proof, 5))
}

func TestFillInProofPadsUpperLevels(t *testing.T) {
	src := []Node{{1}, {2}}
	out := make([]Node, 5)
	FillInProof(src, out)

	assert.Equal(t, src[0], out[0])
	assert.Equal(t, src[1], out[1])
	for level := 2; level < 5; level++ {
		assert.Equal(t, EmptyNode(uint32(level)), out[level], "level %d", level)
	}

	// a full length proof passes through untouched
	full := []Node{{9}, {8}, {7}}
	out3 := make([]Node, 3)
	FillInProof(full, out3)
	assert.Equal(t, full, out3)
}
