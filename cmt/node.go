package cmt

import (
	"golang.org/x/crypto/sha3"
)

// NodeSize is the fixed byte width of every tree node.
const NodeSize = 32

// Node is a single 32 byte merkle tree node. Leaves are opaque 32 byte
// values supplied by the caller; interior nodes are keccak-256 hashes of
// their two children. Equality is byte-wise.
type Node [NodeSize]byte

// Empty is the reserved leaf value meaning 'no leaf written here yet'.
// Append refuses it as a leaf value so that fill-or-append conflict
// detection stays unambiguous.
var Empty = Node{}

// HashToParent replaces *node with the hash of node combined with
// sibling. isLeft selects the operand order: true when node is the left
// child of the parent being computed.
func HashToParent(node *Node, sibling Node, isLeft bool) {
	h := sha3.NewLegacyKeccak256()
	if isLeft {
		h.Write(node[:])
		h.Write(sibling[:])
	} else {
		h.Write(sibling[:])
		h.Write(node[:])
	}
	copy(node[:], h.Sum(nil))
}

// EmptyNode returns the canonical node value for an all-empty subtree
// rooted at level. Level 0 is the empty leaf itself, level 1 the hash of
// two empty leaves, and so on up to the root of an entirely empty tree at
// level maxDepth.
func EmptyNode(level uint32) Node {
	node := Empty
	for l := uint32(0); l < level; l++ {
		// left and right operands are identical so the order is moot
		HashToParent(&node, node, true)
	}
	return node
}

// EmptyNodeCached is EmptyNode backed by a caller supplied memo table.
// cache[l] holds the value for level l once computed; the all-zero entry
// value doubles as 'unset', which is sound because only level 0 is the
// zero node and level 0 is never cached. The cache is an explicit
// argument, not package state, so call sites control its lifetime.
func EmptyNodeCached(level uint32, cache []Node) Node {
	if level == 0 {
		return Empty
	}
	target := int(level - 1)
	var lower Node
	if target < len(cache) && cache[target] != Empty {
		lower = cache[target]
	} else {
		lower = EmptyNodeCached(level-1, cache)
		if target < len(cache) {
			cache[target] = lower
		}
	}
	HashToParent(&lower, lower, true)
	return lower
}
