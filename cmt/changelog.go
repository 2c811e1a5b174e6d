package cmt

import "math/bits"

// ChangeLog records one successful mutation: the root it produced, the
// nodes along the written leaf's path (leaf first, root excluded), and
// the index of the leaf it touched. Entries are written once and never
// modified, only eventually overwritten when the ring buffer wraps.
//
// A ChangeLog is the unit of proof fast-forwarding: UpdateProofOrLeaf
// applies the effect of the recorded change to any other leaf's proof.
type ChangeLog struct {
	Root Node
	// Path[l] is the node written at level l on the way from the leaf to
	// the root. Path[0] is the leaf value itself.
	Path  []Node
	Index uint32
}

func newChangeLog(maxDepth int) ChangeLog {
	return ChangeLog{Path: make([]Node, maxDepth)}
}

// Leaf returns the value this change wrote at its leaf index.
func (cl *ChangeLog) Leaf() Node {
	return cl.Path[0]
}

// UpdateProofOrLeaf replays this change onto another leaf's (proof, leaf)
// pair, in place.
//
// If the change wrote exactly the target leaf index, the target's leaf
// value is replaced with the recorded one and the proof is untouched:
// the caller's view of the leaf contents is stale.
//
// Otherwise the change can only have perturbed the target's proof at a
// single level: the highest bit at which the two indices differ. Above
// that level the two paths coincide, and below it the change touches
// none of the target's ancestors. Exactly that sibling is patched from
// the recorded path.
func (cl *ChangeLog) UpdateProofOrLeaf(leafIndex uint32, proof []Node, leaf *Node) {
	if leafIndex == cl.Index {
		*leaf = cl.Path[0]
		return
	}
	critbit := bits.Len32(leafIndex^cl.Index) - 1
	proof[critbit] = cl.Path[critbit]
}

// ReplaceAndRecomputePath overwrites this entry with the change that
// results from writing start at index against the sibling hashes in
// proof, recording the whole written path, and returns the new root.
func (cl *ChangeLog) ReplaceAndRecomputePath(index uint32, start Node, proof []Node) Node {
	cl.Index = index
	node := start
	for level := range cl.Path {
		cl.Path[level] = node
		HashToParent(&node, proof[level], (index>>uint(level))&1 == 0)
	}
	cl.Root = node
	return node
}
