package dag

import "github.com/phylograph/treedag/pkg/bitset"

// Node is a vertex of the subsplit DAG: a unique canonical subsplit with an
// assigned integer id and four adjacency lists. Ids [0, taxonCount) are the
// fake leaf nodes, one per taxon; higher ids are real internal nodes
// created from the sample.
//
// The rootward lists are exact inverses of the leafward lists: child c is
// in n's leafward-sorted list iff n is in c's rootward-sorted list, and
// likewise for rotated. Nodes are created once during construction and
// never mutated afterward.
type Node struct {
	id       int
	subsplit bitset.Bitset

	leafwardSorted  []int
	leafwardRotated []int
	rootwardSorted  []int
	rootwardRotated []int
}

// ID returns the node's id.
func (n *Node) ID() int { return n.id }

// Subsplit returns the node's canonical subsplit.
func (n *Node) Subsplit() bitset.Bitset { return n.subsplit }

// SubsplitIn returns the node's subsplit in the requested orientation:
// canonical when rotated is false, clades swapped otherwise.
func (n *Node) SubsplitIn(rotated bool) bitset.Bitset {
	if rotated {
		return bitset.Rotate(n.subsplit)
	}
	return n.subsplit
}

// LeafwardSorted returns the ids of children under the sorted orientation.
// The returned slice is a read-only view.
func (n *Node) LeafwardSorted() []int { return n.leafwardSorted }

// LeafwardRotated returns the ids of children under the rotated orientation.
func (n *Node) LeafwardRotated() []int { return n.leafwardRotated }

// RootwardSorted returns the ids of parents that reach this node through
// their sorted orientation.
func (n *Node) RootwardSorted() []int { return n.rootwardSorted }

// RootwardRotated returns the ids of parents that reach this node through
// their rotated orientation.
func (n *Node) RootwardRotated() []int { return n.rootwardRotated }

// LeafwardIn returns the leafward adjacency for the given orientation.
func (n *Node) LeafwardIn(rotated bool) []int {
	if rotated {
		return n.leafwardRotated
	}
	return n.leafwardSorted
}

// RootwardIn returns the rootward adjacency for the given orientation.
func (n *Node) RootwardIn(rotated bool) []int {
	if rotated {
		return n.rootwardRotated
	}
	return n.rootwardSorted
}

// IsLeaf reports whether the node has no leafward children. This is true
// exactly for the fake subsplit nodes.
func (n *Node) IsLeaf() bool {
	return len(n.leafwardSorted) == 0 && len(n.leafwardRotated) == 0
}

// IsRoot reports whether the node has no rootward parents in either
// orientation. This is true exactly for the nodes representing rootsplits.
func (n *Node) IsRoot() bool {
	return len(n.rootwardSorted) == 0 && len(n.rootwardRotated) == 0
}
