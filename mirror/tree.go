// Package mirror maintains a fully materialised copy of a concurrent
// merkle tree outside the hosting ledger. The concurrent tree itself
// stores no leaf data and no interior nodes beyond its recent change
// logs, so every proof a caller submits has to come from somewhere with
// the whole tree in view: this package is that somewhere. It also
// persists leaf snapshots through a pluggable object store so indexers
// can rebuild the mirror without replaying history.
package mirror

import (
	"github.com/merkleroll/go-merkleroll/cmt"
)

// Tree is a complete binary merkle tree over 1<<depth leaves with every
// interior node materialised, so the proof for any leaf is a simple
// gather of siblings. All unwritten leaves hold cmt.Empty and the zero
// tree's root is the canonical all-empty root, matching a freshly
// initialized concurrent tree.
type Tree struct {
	depth int
	// levels[0] is the leaf level; levels[depth] holds the single root.
	levels [][]cmt.Node
}

// New builds an all-empty mirror of the given depth.
func New(depth int) *Tree {
	t := &Tree{
		depth:  depth,
		levels: make([][]cmt.Node, depth+1),
	}
	cache := make([]cmt.Node, depth)
	for l := 0; l <= depth; l++ {
		t.levels[l] = make([]cmt.Node, 1<<uint(depth-l))
		empty := cmt.EmptyNodeCached(uint32(l), cache)
		for i := range t.levels[l] {
			t.levels[l][i] = empty
		}
	}
	return t
}

// Depth returns the tree height fixed at construction.
func (t *Tree) Depth() int { return t.depth }

// Root returns the root over all current leaves.
func (t *Tree) Root() cmt.Node { return t.levels[t.depth][0] }

// Leaf returns the current value at index i.
func (t *Tree) Leaf(i uint32) cmt.Node { return t.levels[0][i] }

// Node returns the materialised node at index i of the given level; level
// 0 is the leaf level. Subtree roots read this way seed a canopy for a
// tree adopted from a mirrored state.
func (t *Tree) Node(level int, i uint32) cmt.Node { return t.levels[level][i] }

// SetLeaf writes leaf at index i and recomputes its ancestors up to the
// root. Appends are just SetLeaf at the next unwritten index.
func (t *Tree) SetLeaf(i uint32, leaf cmt.Node) {
	t.levels[0][i] = leaf
	idx := i
	for l := 1; l <= t.depth; l++ {
		idx >>= 1
		node := t.levels[l-1][2*idx]
		cmt.HashToParent(&node, t.levels[l-1][2*idx+1], true)
		t.levels[l][idx] = node
	}
}

// ProofOfLeaf returns the sibling hashes proving leaf i, leaf level
// first. The result is exactly what the concurrent tree's proof carrying
// operations expect.
func (t *Tree) ProofOfLeaf(i uint32) []cmt.Node {
	proof := make([]cmt.Node, t.depth)
	idx := i
	for l := 0; l < t.depth; l++ {
		proof[l] = t.levels[l][idx^1]
		idx >>= 1
	}
	return proof
}
