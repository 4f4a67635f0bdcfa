package pathoram

import (
	"crypto/rand"
	"math/big"
)

// NodeAddr names a node in the complete binary tree by (level, idx), root
// at level 0, keeping per-level on-path tests explicit at every call
// site instead of folding them into a flattened heap index.
type NodeAddr struct {
	Level int
	Idx   int
}

// DepthFromN returns ceil(log2(next power of two >= n)): the tree has
// depth+1 levels and 2^depth leaves.
func DepthFromN(n int) int {
	if n <= 1 {
		return 0
	}
	depth := 0
	leaves := 1
	for leaves < n {
		leaves <<= 1
		depth++
	}
	return depth
}

// RandomLeaf draws a uniform leaf label in [0, 2^depth) using a
// cryptographically strong RNG.
func RandomLeaf(depth int) int {
	numLeaves := int64(1) << depth
	if numLeaves == 1 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(numLeaves))
	if err != nil {
		panic("pathoram: crypto/rand failed: " + err.Error())
	}
	return int(n.Int64())
}

// PathNodes returns the root-to-leaf node addresses for leaf, one per
// level 0..depth inclusive.
func PathNodes(leaf, depth int) []NodeAddr {
	nodes := make([]NodeAddr, depth+1)
	for level := 0; level <= depth; level++ {
		nodes[level] = NodeAddr{Level: level, Idx: leaf >> (depth - level)}
	}
	return nodes
}

// OnPathToLeaf reports whether the node at (level, idx) lies on the
// root-to-leaf path for leaf.
func OnPathToLeaf(level, idx, leaf, depth int) bool {
	return idx == leaf>>(depth-level)
}
