package cmt

import "errors"

// SetLeaf replaces the leaf at index with newLeaf, where previousLeaf and
// proof were valid against currentRoot. currentRoot may be stale by up to
// MaxBufferSize mutations: the proof is fast-forwarded through the change
// logs recorded since. Inference is disabled - if the claimed root is not
// found in the live buffer the call fails with ErrRootNotFound and the
// caller must recompute against a fresher root.
//
// An index beyond the rightmost appended leaf cannot be updated this way
// (use Append or FillEmptyOrAppend) and fails with
// ErrLeafIndexOutOfBounds.
func (t *ConcurrentMerkleTree) SetLeaf(currentRoot, previousLeaf, newLeaf Node, proof []Node, index uint32) (Node, error) {
	if err := t.checkLeafIndex(index); err != nil {
		return Node{}, err
	}
	if !t.IsInitialized() {
		return Node{}, ErrTreeNotInitialized
	}
	if index > t.rightmostProof.Index {
		return Node{}, ErrLeafIndexOutOfBounds
	}
	filled := make([]Node, t.maxDepth)
	FillInProof(proof, filled)
	return t.tryApplyProof(currentRoot, previousLeaf, newLeaf, filled, index, false)
}

// FillEmptyOrAppend writes leaf at index provided that slot is still
// Empty. If fast-forwarding reveals an intervening mutation already took
// the slot, the operation transparently converts to an Append, so racing
// 'claim the next empty slot' submissions all succeed without any caller
// coordination. Inference is enabled: a claimed root that has aged out of
// the buffer triggers a full buffer replay instead of a failure.
//
// An index beyond the rightmost appended leaf fails with
// ErrLeafIndexOutOfBounds even when the slot provably holds Empty:
// filling it would leave a gap of never-appended slots behind the
// rightmost proof, breaking the invariant that the rightmost index
// counts the leaves ever appended.
func (t *ConcurrentMerkleTree) FillEmptyOrAppend(currentRoot, leaf Node, proof []Node, index uint32) (Node, error) {
	if err := t.checkLeafIndex(index); err != nil {
		return Node{}, err
	}
	if !t.IsInitialized() {
		return Node{}, ErrTreeNotInitialized
	}
	if index > t.rightmostProof.Index {
		return Node{}, ErrLeafIndexOutOfBounds
	}
	filled := make([]Node, t.maxDepth)
	FillInProof(proof, filled)
	root, err := t.tryApplyProof(currentRoot, Empty, leaf, filled, index, true)
	if errors.Is(err, ErrLeafContentsModified) {
		return t.Append(leaf)
	}
	return root, err
}

// tryApplyProof fast-forwards and verifies the caller's claim and, only
// once every check has passed, applies the mutation. A failure at any
// point leaves the tree untouched.
func (t *ConcurrentMerkleTree) tryApplyProof(currentRoot, leaf, newLeaf Node, proof []Node, leafIndex uint32, allowInferredProof bool) (Node, error) {
	valid, err := t.checkValidLeaf(currentRoot, leaf, proof, leafIndex, allowInferredProof)
	if err != nil {
		return Node{}, err
	}
	if !valid {
		return Node{}, ErrInvalidProof
	}
	t.advanceBuffer()
	return t.updateBuffersFromProof(newLeaf, proof, leafIndex), nil
}

// updateBuffersFromProof writes the change log for setting leafIndex to
// start, using a proof already fast-forwarded to the previous root, and
// maintains the rightmost proof. A change strictly left of the rightmost
// leaf can perturb at most one entry of the rightmost proof (or, if it
// wrote the rightmost leaf itself, its leaf value); a change at exactly
// the rightmost index is an append arriving through the set-leaf path and
// installs a whole new rightmost proof.
func (t *ConcurrentMerkleTree) updateBuffersFromProof(start Node, proof []Node, index uint32) Node {
	cl := &t.changeLogs[t.activeIndex]
	root := cl.ReplaceAndRecomputePath(index, start, proof)
	if uint64(t.rightmostProof.Index) < uint64(1)<<uint(t.maxDepth) {
		if index < t.rightmostProof.Index {
			cl.UpdateProofOrLeaf(t.rightmostProof.Index-1, t.rightmostProof.Proof, &t.rightmostProof.Leaf)
		} else {
			// index == rightmost index, guaranteed by the bounds checks
			// on every route here.
			copy(t.rightmostProof.Proof, proof)
			t.rightmostProof.Index = index + 1
			t.rightmostProof.Leaf = cl.Leaf()
		}
	}
	return root
}
