package cmt

// ProveLeaf checks that leaf exists at index in the current tree,
// fast-forwarding the supplied proof when currentRoot is stale. Inference
// is enabled: when the claimed root is absent from the buffer the whole
// live buffer is replayed before verification, which spares callers from
// tracking exact root lineage at the cost of a full buffer pass.
//
// This is not the same as checking that (leaf, proof, index) is valid for
// the current root as-is; that is CheckValidProof. The tree is never
// modified.
func (t *ConcurrentMerkleTree) ProveLeaf(currentRoot, leaf Node, proof []Node, index uint32) error {
	if err := t.checkLeafIndex(index); err != nil {
		return err
	}
	if !t.IsInitialized() {
		return ErrTreeNotInitialized
	}
	if index > t.rightmostProof.Index {
		return ErrLeafIndexOutOfBounds
	}
	filled := make([]Node, t.maxDepth)
	FillInProof(proof, filled)
	valid, err := t.checkValidLeaf(currentRoot, leaf, filled, index, true)
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidProof
	}
	return nil
}

// CheckValidProof reports whether (leaf, proof, index) recomputes to the
// current root, with no fast-forwarding. It is the relaxed final
// verification step used internally by the mutating operations: it never
// errors, returning false for an uninitialized tree or an out of range
// index, and never modifies the tree.
func (t *ConcurrentMerkleTree) CheckValidProof(leaf Node, proof []Node, index uint32) bool {
	if !t.IsInitialized() {
		return false
	}
	if t.checkLeafIndex(index) != nil {
		return false
	}
	return Recompute(leaf, proof, index) == t.Root()
}

// checkValidLeaf fast-forwards (a copy of) the caller's claim to the
// current root and reports whether it verifies. The claimed leaf value
// having been overwritten by a replayed change is reported as
// ErrLeafContentsModified; a claimed root that cannot be located is
// ErrRootNotFound unless inference is allowed, in which case the replay
// starts from the oldest live entry and makes exactly one full pass.
func (t *ConcurrentMerkleTree) checkValidLeaf(currentRoot, leaf Node, proof []Node, leafIndex uint32, allowInferredProof bool) (bool, error) {
	var changelogIndex uint64
	useFullBuffer := false
	if i, ok := t.findRootInChangelog(currentRoot); ok {
		changelogIndex = i
	} else {
		if !allowInferredProof {
			return false, ErrRootNotFound
		}
		changelogIndex = (t.activeIndex - (t.bufferSize - 1)) & t.mask()
		useFullBuffer = true
	}
	updatedLeaf := leaf
	t.fastForwardProof(&updatedLeaf, proof, leafIndex, changelogIndex, useFullBuffer)
	if updatedLeaf != leaf {
		return false, ErrLeafContentsModified
	}
	return t.CheckValidProof(updatedLeaf, proof, leafIndex), nil
}

// fastForwardProof replays the change logs recorded after
// changelogBufferIndex onto (leaf, proof), in chronological order, up to
// and including the entry at activeIndex. With useFullBuffer the replay
// instead makes exactly one full pass starting at changelogBufferIndex.
func (t *ConcurrentMerkleTree) fastForwardProof(leaf *Node, proof []Node, leafIndex uint32, changelogBufferIndex uint64, useFullBuffer bool) {
	for {
		if !useFullBuffer && changelogBufferIndex == t.activeIndex {
			break
		}
		changelogBufferIndex = (changelogBufferIndex + 1) & t.mask()
		t.changeLogs[changelogBufferIndex].UpdateProofOrLeaf(leafIndex, proof, leaf)
		if useFullBuffer && changelogBufferIndex == t.activeIndex {
			break
		}
	}
}

// findRootInChangelog searches the live buffer newest-first for the entry
// that produced root.
func (t *ConcurrentMerkleTree) findRootInChangelog(root Node) (uint64, bool) {
	for i := uint64(0); i < t.bufferSize; i++ {
		j := (t.activeIndex - i) & t.mask()
		if t.changeLogs[j].Root == root {
			return j, true
		}
	}
	return 0, false
}
