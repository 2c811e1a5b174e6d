package cmt

// Initialize sets the tree to a single entry buffer rooted at the
// canonical all-empty tree and returns that root. This is the trustless
// initialization and should be used in almost all cases.
func (t *ConcurrentMerkleTree) Initialize() (Node, error) {
	if t.IsInitialized() {
		return Node{}, ErrTreeAlreadyInitialized
	}
	cache := make([]Node, t.maxDepth)
	for level := range t.rightmostProof.Proof {
		t.rightmostProof.Proof[level] = EmptyNodeCached(uint32(level), cache)
	}
	cl := &t.changeLogs[0]
	for level := range cl.Path {
		cl.Path[level] = EmptyNodeCached(uint32(level), cache)
	}
	cl.Root = EmptyNodeCached(uint32(t.maxDepth), cache)
	cl.Index = 0
	t.sequenceNumber = 0
	t.activeIndex = 0
	t.bufferSize = 1
	return cl.Root, nil
}

// InitializeWithRoot bootstraps the tree from a caller asserted state:
// root is claimed to commit the tree contents and (rightmostLeaf, proof,
// index) must prove the newest leaf against it. Only that single proof is
// verifiable here; nothing checks the asserted historical leaves, so a
// tree bootstrapped this way cannot be independently indexed until some
// out-of-band mechanism vouches for its contents. Prefer Initialize.
//
// Verification happens before any state is touched, so a failed call
// leaves the tree uninitialized.
func (t *ConcurrentMerkleTree) InitializeWithRoot(root, rightmostLeaf Node, proof []Node, index uint32) (Node, error) {
	if err := t.checkLeafIndex(index); err != nil {
		return Node{}, err
	}
	if t.IsInitialized() {
		return Node{}, ErrTreeAlreadyInitialized
	}
	filled := make([]Node, t.maxDepth)
	FillInProof(proof, filled)
	if Recompute(rightmostLeaf, filled, index) != root {
		return Node{}, ErrInvalidProof
	}
	copy(t.rightmostProof.Proof, filled)
	t.rightmostProof.Index = index + 1
	t.rightmostProof.Leaf = rightmostLeaf
	t.changeLogs[0].Root = root
	t.sequenceNumber = 1
	t.activeIndex = 0
	t.bufferSize = 1
	return root, nil
}

// ProveTreeIsEmpty errors with ErrTreeNonEmpty unless every leaf of the
// tree is still Empty.
func (t *ConcurrentMerkleTree) ProveTreeIsEmpty() error {
	if !t.IsInitialized() {
		return ErrTreeNotInitialized
	}
	cache := make([]Node, t.maxDepth)
	if t.Root() != EmptyNodeCached(uint32(t.maxDepth), cache) {
		return ErrTreeNonEmpty
	}
	return nil
}
