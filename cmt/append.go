package cmt

import "math/bits"

// Append writes leaf into the next free slot and returns the new root.
//
// No caller supplied proof is needed. The index of the new leaf is the
// rightmost index, and trailing_zeros(rightmost index) gives the level at
// which the new leaf's path joins the previous rightmost leaf's path -
// the classic complete-binary-tree append. Below that intersection the
// new leaf starts a fresh subtree whose siblings are all canonical empty
// nodes; at the intersection the old rightmost subtree's root becomes the
// new leaf's sibling; above it the two paths are identical. The rightmost
// proof is updated level by level along the way, so the whole operation
// is O(maxDepth) with no stored state beyond the single rightmost path.
func (t *ConcurrentMerkleTree) Append(leaf Node) (Node, error) {
	if !t.IsInitialized() {
		return Node{}, ErrTreeNotInitialized
	}
	if leaf == Empty {
		return Node{}, ErrCannotAppendEmptyNode
	}
	if uint64(t.rightmostProof.Index) >= uint64(1)<<uint(t.maxDepth) {
		return Node{}, ErrTreeFull
	}
	if t.rightmostProof.Index == 0 {
		return t.initializeFromAppend(leaf)
	}

	node := leaf
	rmpIndex := t.rightmostProof.Index
	intersection := bits.TrailingZeros32(rmpIndex)
	changeList := make([]Node, t.maxDepth)
	intersectionNode := t.rightmostProof.Leaf
	cache := make([]Node, t.maxDepth)

	for i := 0; i < t.maxDepth; i++ {
		changeList[i] = node
		switch {
		case i < intersection:
			// The new leaf pairs with empty siblings while the old
			// rightmost subtree root is carried up towards the
			// intersection.
			sibling := EmptyNodeCached(uint32(i), cache)
			HashToParent(&intersectionNode, t.rightmostProof.Proof[i], ((rmpIndex-1)>>uint(i))&1 == 0)
			HashToParent(&node, sibling, true)
			t.rightmostProof.Proof[i] = sibling
		case i == intersection:
			// The two paths merge: the old rightmost subtree becomes the
			// new node's left sibling.
			HashToParent(&node, intersectionNode, false)
			t.rightmostProof.Proof[intersection] = intersectionNode
		default:
			// Above the intersection the path is unchanged from the old
			// rightmost proof.
			HashToParent(&node, t.rightmostProof.Proof[i], ((rmpIndex-1)>>uint(i))&1 == 0)
		}
	}

	t.advanceBuffer()
	cl := &t.changeLogs[t.activeIndex]
	cl.Root = node
	copy(cl.Path, changeList)
	cl.Index = rmpIndex
	t.rightmostProof.Index = rmpIndex + 1
	t.rightmostProof.Leaf = leaf
	return node, nil
}

// initializeFromAppend handles the first append after Initialize: the
// rightmost proof still holds the all-empty proof, so the append is
// applied as a fill of leaf index zero verified against the canonical
// empty root.
func (t *ConcurrentMerkleTree) initializeFromAppend(leaf Node) (Node, error) {
	proof := append([]Node(nil), t.rightmostProof.Proof...)
	oldRoot := Recompute(Empty, proof, 0)
	if oldRoot != EmptyNode(uint32(t.maxDepth)) {
		return Node{}, ErrTreeAlreadyInitialized
	}
	return t.tryApplyProof(oldRoot, Empty, leaf, proof, 0, false)
}
