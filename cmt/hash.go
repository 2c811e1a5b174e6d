package cmt

// Recompute derives the root committed to by (leaf, proof, index). It
// walks from level 0 upward, combining the running node with proof[level]
// at each step. Bit level of index selects the operand order: an even
// index at a level means the running node is the left child there.
//
// Recompute is a pure function of its arguments; it is the final
// verification step behind every proof carrying operation.
func Recompute(leaf Node, proof []Node, index uint32) Node {
	node := leaf
	for level, sibling := range proof {
		HashToParent(&node, sibling, (index>>uint(level))&1 == 0)
	}
	return node
}

// FillInProof copies src into the fixed length proof out, padding any
// missing high levels with the canonical empty subtree values. Callers
// whose path reaches permanently empty subtrees may omit the trailing
// proof entries; the padding reconstructs them.
func FillInProof(src []Node, out []Node) {
	n := copy(out, src)
	if n == len(out) {
		return
	}
	cache := make([]Node, len(out))
	for level := n; level < len(out); level++ {
		out[level] = EmptyNodeCached(uint32(level), cache)
	}
}
