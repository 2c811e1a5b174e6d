// Package canopy caches the upper levels of a concurrent merkle tree in
// a flat byte region appended to the tree's backing buffer.
//
// A proof normally carries one sibling per tree level. With the top N
// levels cached, callers only submit the lowest depth-N siblings and the
// rest are filled in from the cache, shrinking submissions enough to
// make deep trees practical within transaction size limits. The canopy
// is refreshed from the newest change log after every mutation; a tree
// adopted from an externally asserted root seeds its canopy once with
// SetLeafNodes instead.
//
// The region stores a full binary tree without its root, laid out
// breadth first: the node with (root=1) heap index i lives at slot i-2.
// A region caching N levels therefore holds 2^(N+1)-2 nodes, and a
// region length is valid exactly when length/32 + 2 is a power of two.
package canopy

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/merkleroll/go-merkleroll/cmt"
)

var (
	ErrLengthMismatch   = errors.New("canopy length is not consistent with caching whole tree levels")
	ErrTooLarge         = errors.New("canopy caches more levels than the tree has")
	ErrRangeOutOfBounds = errors.New("canopy node range exceeds the cached level")
)

// Size returns the byte length of a canopy region caching the top
// cachedLevels levels of a tree.
func Size(cachedLevels int) int {
	return ((1 << uint(cachedLevels+1)) - 2) * cmt.NodeSize
}

// Check verifies that canopyBytes holds a whole number of nodes.
func Check(canopyBytes []byte) error {
	if len(canopyBytes)%cmt.NodeSize != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of %d",
			ErrLengthMismatch, len(canopyBytes), cmt.NodeSize)
	}
	return nil
}

func nodeAt(canopyBytes []byte, slot uint32) cmt.Node {
	var n cmt.Node
	copy(n[:], canopyBytes[int(slot)*cmt.NodeSize:])
	return n
}

func setNodeAt(canopyBytes []byte, slot uint32, n cmt.Node) {
	copy(canopyBytes[int(slot)*cmt.NodeSize:], n[:])
}

// cachedPathLength returns how many levels the region caches. The node
// count plus 2 must be a power of two (a full binary tree without its
// root) no larger than the node count of the whole tree.
func cachedPathLength(canopyBytes []byte, maxDepth int) (int, error) {
	if err := Check(canopyBytes); err != nil {
		return 0, err
	}
	closestPow2 := uint32(len(canopyBytes)/cmt.NodeSize) + 2
	if !isPow2(closestPow2) {
		return 0, fmt.Errorf("%w: node count %d is not 2 less than a power of 2",
			ErrLengthMismatch, closestPow2-2)
	}
	if uint64(closestPow2) > uint64(1)<<uint(maxDepth+1) {
		return 0, fmt.Errorf("%w: %d nodes cached, the whole tree has %d",
			ErrTooLarge, closestPow2-2, uint64(1)<<uint(maxDepth+1)-2)
	}
	// the root is not stored, so one less than the region's own height
	return bits.TrailingZeros32(closestPow2) - 1, nil
}

func isPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// Update refreshes the cached levels from the change log written by the
// latest mutation. The change's path covers every level, so only the
// slots on the written leaf's own path can have changed.
func Update(canopyBytes []byte, maxDepth int, cl cmt.ChangeLog) error {
	pathLen, err := cachedPathLength(canopyBytes, maxDepth)
	if err != nil {
		return err
	}
	for level := maxDepth - pathLen; level < maxDepth; level++ {
		// the heap index of the path node at this level, root = 1
		idx := ((uint32(1) << uint(maxDepth)) + cl.Index) >> uint(level)
		setNodeAt(canopyBytes, idx-2, cl.Path[level])
	}
	return nil
}

// SetLeafNodes writes the subtree roots at the canopy's lowest cached
// level, starting at the 0-based startIndex within that level, and
// recomputes the cached levels above them. This bootstraps a canopy for a
// tree adopted through InitializeWithRoot, whose change logs cannot be
// replayed to populate the cache. Parents of a written node whose other
// child was never written hash against the canonical empty subtree value
// for that level.
func SetLeafNodes(canopyBytes []byte, maxDepth int, startIndex uint32, nodes []cmt.Node) error {
	pathLen, err := cachedPathLength(canopyBytes, maxDepth)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	width := uint32(1) << uint(pathLen)
	if uint64(startIndex)+uint64(len(nodes)) > uint64(width) {
		return fmt.Errorf("%w: [%d, %d) of %d",
			ErrRangeOutOfBounds, startIndex, uint64(startIndex)+uint64(len(nodes)), width)
	}

	// heap index of the first written node, root = 1
	startNode := width + startIndex
	for i := range nodes {
		setNodeAt(canopyBytes, startNode-2+uint32(i), nodes[i])
	}

	cache := make([]cmt.Node, maxDepth)
	start := startNode
	end := startNode + uint32(len(nodes)) - 1
	leafLevel := maxDepth - pathLen
	for level := leafLevel + 1; level < maxDepth; level++ {
		start >>= 1
		end >>= 1
		for node := start; node <= end; node++ {
			parent := childValue(canopyBytes, node<<1, level-1, cache)
			right := childValue(canopyBytes, node<<1|1, level-1, cache)
			cmt.HashToParent(&parent, right, true)
			setNodeAt(canopyBytes, node-2, parent)
		}
	}
	return nil
}

// childValue reads the cached node, substituting the canonical empty
// subtree value when the slot was never written.
func childValue(canopyBytes []byte, nodeIdx uint32, level int, cache []cmt.Node) cmt.Node {
	if n := nodeAt(canopyBytes, nodeIdx-2); n != cmt.Empty {
		return n
	}
	return cmt.EmptyNodeCached(uint32(level), cache)
}

// FillInProof extends a truncated proof to full depth using the cached
// upper nodes. proof carries the siblings for the lowest depth-N levels;
// the rest are gathered from the canopy, substituting the canonical
// empty node wherever a cached slot is still zero because no leaf under
// it has ever been written. The extended proof is returned; proof itself
// is not modified.
//
// A proof already carrying entries for some of the cached levels is
// extended only up to maxDepth: the overlapping inferred nodes are
// dropped, so a full length proof passes through unchanged.
func FillInProof(canopyBytes []byte, maxDepth int, index uint32, proof []cmt.Node) ([]cmt.Node, error) {
	pathLen, err := cachedPathLength(canopyBytes, maxDepth)
	if err != nil {
		return nil, err
	}
	cache := make([]cmt.Node, maxDepth)

	// walk up from where the leaf's path enters the canopy, collecting
	// the sibling of each path node
	inferred := make([]cmt.Node, 0, pathLen)
	nodeIdx := ((uint32(1) << uint(maxDepth)) + index) >> uint(maxDepth-pathLen)
	for nodeIdx > 1 {
		siblingSlot := (nodeIdx - 2) ^ 1
		if cached := nodeAt(canopyBytes, siblingSlot); cached != cmt.Empty {
			inferred = append(inferred, cached)
		} else {
			level := maxDepth - (31 - bits.LeadingZeros32(nodeIdx))
			inferred = append(inferred, cmt.EmptyNodeCached(uint32(level), cache))
		}
		nodeIdx >>= 1
	}

	overlap := len(proof) + len(inferred) - maxDepth
	if overlap < 0 {
		overlap = 0
	}
	if overlap > len(inferred) {
		overlap = len(inferred)
	}
	out := append([]cmt.Node(nil), proof...)
	return append(out, inferred[overlap:]...), nil
}
