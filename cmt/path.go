package cmt

// Path is a proof for a single leaf: Proof[i] is the sibling hash
// required at level i when walking from Leaf at Index up to the root.
//
// The tree maintains one Path of its own, the rightmost proof, which
// always describes the most recently appended leaf against the current
// root. Maintaining it incrementally is what makes proof-free appends
// possible; see Append.
type Path struct {
	Proof []Node
	Leaf  Node
	Index uint32
}

func newPath(maxDepth int) Path {
	return Path{Proof: make([]Node, maxDepth)}
}

// clonePath deep-copies p so accessors can hand paths out without
// aliasing the tree's internal state.
func clonePath(p Path) Path {
	return Path{
		Proof: append([]Node(nil), p.Proof...),
		Leaf:  p.Leaf,
		Index: p.Index,
	}
}
