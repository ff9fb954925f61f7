package dag

import "github.com/phylograph/treedag/pkg/bitset"

// Traversal orders.
//
// Both traversals are depth-first topological sorts adapted to a DAG with
// re-convergent paths: a single visited set is shared across all starting
// points, so a node reachable from several roots (or leaves) is emitted
// exactly once. Without the shared set the recursion would re-expand every
// diamond and emit duplicate work.

// RootwardPassTraversal returns a total order over all node ids in which
// every node appears after its leafward children, in both orientations.
// The order is produced by depth-first descent from each rootsplit node
// with post-order emission, so it runs leaves-to-roots and is suitable for
// computing P-type quantities bottom-up.
func (d *DAG) RootwardPassTraversal() []int {
	var order []int
	visited := make([]bool, len(d.nodes))
	for _, rootsplit := range d.rootsplits {
		d.leafwardDepthFirst(d.mustNodeID(bitset.RootSubsplit(rootsplit)), visited, &order)
	}
	return order
}

// LeafwardPassTraversal returns a total order over all node ids in which
// every node appears after its rootward parents, in both orientations. The
// order is produced by depth-first ascent from each fake leaf node with
// post-order emission, so it runs roots-to-leaves and is suitable for
// computing R-type quantities top-down.
func (d *DAG) LeafwardPassTraversal() []int {
	var order []int
	visited := make([]bool, len(d.nodes))
	for leaf := 0; leaf < d.taxonCount; leaf++ {
		d.rootwardDepthFirst(leaf, visited, &order)
	}
	return order
}

func (d *DAG) leafwardDepthFirst(id int, visited []bool, order *[]int) {
	visited[id] = true
	for _, child := range d.nodes[id].leafwardSorted {
		if !visited[child] {
			d.leafwardDepthFirst(child, visited, order)
		}
	}
	for _, child := range d.nodes[id].leafwardRotated {
		if !visited[child] {
			d.leafwardDepthFirst(child, visited, order)
		}
	}
	*order = append(*order, id)
}

func (d *DAG) rootwardDepthFirst(id int, visited []bool, order *[]int) {
	visited[id] = true
	for _, parent := range d.nodes[id].rootwardSorted {
		if !visited[parent] {
			d.rootwardDepthFirst(parent, visited, order)
		}
	}
	for _, parent := range d.nodes[id].rootwardRotated {
		if !visited[parent] {
			d.rootwardDepthFirst(parent, visited, order)
		}
	}
	*order = append(*order, id)
}
