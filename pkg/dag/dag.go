// Package dag builds the subsplit DAG of a rooted tree sample and schedules
// the generalized pruning operations that evaluate and optimize over the
// whole tree space at once.
//
// The DAG deduplicates the subsplit structure shared across the sampled
// topologies: every distinct subsplit becomes exactly one node, however
// many trees (or root placements) contain it. Construction happens once
// (reduce the sample to placeholder indices, create nodes depth-first,
// connect adjacency lists, assign the final parameter layout) and the
// result is immutable. All traversal and scheduling methods are
// read-only and safe for concurrent use on a built DAG.
//
// Lookup failures during scheduling (a parameter index or node queried for
// a subsplit that was never built) indicate a construction invariant
// violation and panic; they are programmer errors, not runtime conditions.
package dag

import (
	"fmt"

	"github.com/phylograph/treedag/pkg/bitset"
	"github.com/phylograph/treedag/pkg/sample"
)

// IndexRange is a half-open interval [Start, End) of parameter indices.
type IndexRange struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r IndexRange) Len() int { return r.End - r.Start }

// DAG is the subsplit directed acyclic graph of a tree sample, together
// with its parameter and accumulator-vector index layouts. Use [Build] to
// construct one; the zero value is not usable.
type DAG struct {
	taxonCount int
	rootsplits []bitset.Bitset

	nodes        []*Node
	subsplitToID map[string]int

	// Placeholder layout from the sample, used only while deciding which
	// child subsplits exist during node construction.
	parentToRange map[string]IndexRange
	indexToChild  map[int]bitset.Bitset

	rootsplitAndPCSPCount int

	// Final parameter layout: one index per rootsplit, then contiguous
	// per-parent child blocks in node-id order.
	pcspIndex   map[string]int
	parentRange map[string]IndexRange
}

// Build constructs the subsplit DAG for a tree sample.
//
// Fake leaf nodes take ids [0, taxonCount); internal nodes are created in
// depth-first post-order per rootsplit with a visited set shared across all
// rootsplits, so descendants always receive smaller ids than the ancestors
// that depend on them and shared substructure is created exactly once.
func Build(c *sample.Collection) (*DAG, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sample: %w", err)
	}

	d := &DAG{
		taxonCount:    c.TaxonCount(),
		subsplitToID:  map[string]int{},
		parentToRange: map[string]IndexRange{},
		indexToChild:  map[int]bitset.Bitset{},
		pcspIndex:     map[string]int{},
		parentRange:   map[string]IndexRange{},
	}
	d.processSample(c)
	d.buildNodes()
	d.buildEdges()
	d.buildPCSPIndexer()
	return d, nil
}

// processSample records the distinct rootsplits and, per distinct
// parent-orientation subsplit, the contiguous placeholder index range of
// its distinct children: rootsplits first, then children in
// parent-then-child first-seen order.
func (d *DAG) processSample(c *sample.Collection) {
	index := 0
	for _, rc := range c.RootsplitCounts() {
		d.rootsplits = append(d.rootsplits, rc.Clade)
		index++
	}
	for _, pc := range c.PCSPCounts() {
		d.parentToRange[pc.Parent.Key()] = IndexRange{Start: index, End: index + len(pc.Children)}
		for _, cc := range pc.Children {
			d.indexToChild[index] = cc.Subsplit
			index++
		}
	}
	d.rootsplitAndPCSPCount = index
}

// childrenSubsplits returns the child subsplits recorded under the given
// parent-orientation subsplit. When includeFake is set and the parent has
// no recorded children but its second clade is a single taxon, the taxon's
// fake subsplit is synthesized, so every such parent gets a terminal edge
// to a leaf node.
func (d *DAG) childrenSubsplits(parent bitset.Bitset, includeFake bool) []bitset.Bitset {
	if r, ok := d.parentToRange[parent.Key()]; ok {
		children := make([]bitset.Bitset, 0, r.Len())
		for idx := r.Start; idx < r.End; idx++ {
			children = append(children, d.indexToChild[idx])
		}
		return children
	}
	if includeFake {
		if taxon, ok := bitset.Chunk(parent, 1).SingletonIndex(); ok && bitset.Chunk(parent, 0).Any() {
			return []bitset.Bitset{bitset.FakeSubsplit(d.taxonCount, taxon)}
		}
	}
	return nil
}

func (d *DAG) createNode(subsplit bitset.Bitset) {
	id := len(d.nodes)
	if prev, ok := d.subsplitToID[subsplit.Key()]; ok {
		panic(fmt.Sprintf("dag: subsplit %s already has node %d", subsplit, prev))
	}
	d.subsplitToID[subsplit.Key()] = id
	d.nodes = append(d.nodes, &Node{id: id, subsplit: subsplit})
}

// buildNodes creates the fake leaf nodes followed by every internal
// subsplit reachable from the rootsplits, post-order, deduplicated by a
// visited set shared across rootsplits.
func (d *DAG) buildNodes() {
	for taxon := 0; taxon < d.taxonCount; taxon++ {
		d.createNode(bitset.FakeSubsplit(d.taxonCount, taxon))
	}
	visited := map[string]bool{}
	for _, rootsplit := range d.rootsplits {
		d.buildNodesDepthFirst(bitset.RootSubsplit(rootsplit), visited)
	}
}

func (d *DAG) buildNodesDepthFirst(subsplit bitset.Bitset, visited map[string]bool) {
	visited[subsplit.Key()] = true
	for _, child := range d.childrenSubsplits(subsplit, false) {
		if !visited[child.Key()] {
			d.buildNodesDepthFirst(child, visited)
		}
	}
	for _, child := range d.childrenSubsplits(bitset.Rotate(subsplit), false) {
		if !visited[child.Key()] {
			d.buildNodesDepthFirst(child, visited)
		}
	}
	d.createNode(subsplit)
}

// buildEdges links the leafward and rootward adjacency lists of every
// internal node, sorted orientation first.
func (d *DAG) buildEdges() {
	for id := d.taxonCount; id < len(d.nodes); id++ {
		d.connect(id, false)
		d.connect(id, true)
	}
}

func (d *DAG) connect(id int, rotated bool) {
	node := d.nodes[id]
	for _, childSubsplit := range d.childrenSubsplits(node.SubsplitIn(rotated), true) {
		child := d.nodes[d.mustNodeID(childSubsplit)]
		if rotated {
			node.leafwardRotated = append(node.leafwardRotated, child.id)
			child.rootwardRotated = append(child.rootwardRotated, node.id)
		} else {
			node.leafwardSorted = append(node.leafwardSorted, child.id)
			child.rootwardSorted = append(child.rootwardSorted, node.id)
		}
	}
}

// buildPCSPIndexer assigns the final contiguous parameter index to every
// generalized PCSP: one index per rootsplit in discovery order, then for
// every real node in id order a block for its sorted children and a block
// for its rotated children, each recorded in the per-parent range map.
func (d *DAG) buildPCSPIndexer() {
	idx := 0
	for _, rootsplit := range d.rootsplits {
		d.pcspIndex[bitset.RootSubsplit(rootsplit).Key()] = idx
		idx++
	}
	d.IterateOverRealNodes(func(node *Node) {
		for _, rotated := range []bool{false, true} {
			children := node.LeafwardIn(rotated)
			if len(children) == 0 {
				continue
			}
			parent := node.SubsplitIn(rotated)
			d.parentRange[parent.Key()] = IndexRange{Start: idx, End: idx + len(children)}
			for _, childID := range children {
				pcsp := bitset.Concat(parent, d.nodes[childID].subsplit)
				d.pcspIndex[pcsp.Key()] = idx
				idx++
			}
		}
	})
}

// TaxonCount returns the number of taxa (and fake leaf nodes).
func (d *DAG) TaxonCount() int { return d.taxonCount }

// NodeCount returns the total number of DAG nodes.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// Node returns the node with the given id.
func (d *DAG) Node(id int) *Node { return d.nodes[id] }

// Rootsplits returns the distinct rootsplits in discovery order. The
// returned slice is a read-only view.
func (d *DAG) Rootsplits() []bitset.Bitset { return d.rootsplits }

// RootsplitCount returns the number of distinct rootsplits.
func (d *DAG) RootsplitCount() int { return len(d.rootsplits) }

// RootsplitAndPCSPCount returns the number of parameters excluding the
// fake-subsplit-adjacent slots: one per rootsplit plus one per distinct
// observed PCSP.
func (d *DAG) RootsplitAndPCSPCount() int { return d.rootsplitAndPCSPCount }

// GeneralizedPCSPCount extends RootsplitAndPCSPCount with the parameter
// slots for edges adjacent to fake subsplits. This is the full length of
// the external parameter vector and of [DAG.BuildUniformQ].
func (d *DAG) GeneralizedPCSPCount() int {
	fake := 0
	for taxon := 0; taxon < d.taxonCount; taxon++ {
		fake += len(d.nodes[taxon].rootwardSorted)
		fake += len(d.nodes[taxon].rootwardRotated)
	}
	return d.rootsplitAndPCSPCount + fake
}

// NodeID returns the id of the node holding the given canonical subsplit.
func (d *DAG) NodeID(subsplit bitset.Bitset) (int, bool) {
	id, ok := d.subsplitToID[subsplit.Key()]
	return id, ok
}

func (d *DAG) mustNodeID(subsplit bitset.Bitset) int {
	id, ok := d.subsplitToID[subsplit.Key()]
	if !ok {
		panic(fmt.Sprintf("dag: no node for subsplit %s", subsplit))
	}
	return id
}

// PCSPIndex returns the final parameter index of a generalized PCSP (or of
// a root subsplit, which indexes its rootsplit parameter).
func (d *DAG) PCSPIndex(pcsp bitset.Bitset) (int, bool) {
	idx, ok := d.pcspIndex[pcsp.Key()]
	return idx, ok
}

func (d *DAG) mustPCSPIndex(pcsp bitset.Bitset) int {
	idx, ok := d.pcspIndex[pcsp.Key()]
	if !ok {
		panic(fmt.Sprintf("dag: no parameter index for PCSP %s", pcsp))
	}
	return idx
}

// ParentRange returns the contiguous child-parameter range of a
// parent-orientation subsplit, used to normalize its children's weights.
func (d *DAG) ParentRange(parent bitset.Bitset) (IndexRange, bool) {
	r, ok := d.parentRange[parent.Key()]
	return r, ok
}

// ParentRanges calls f with the final child-parameter range of every
// parent-orientation subsplit. Iteration order is unspecified.
func (d *DAG) ParentRanges(f func(r IndexRange)) {
	for _, r := range d.parentRange {
		f(r)
	}
}

// IterateOverRealNodes calls f for every internal node in id order. It
// panics if the DAG has no internal nodes, which cannot happen for a DAG
// built from a valid sample.
func (d *DAG) IterateOverRealNodes(f func(node *Node)) {
	if d.taxonCount >= len(d.nodes) {
		panic("dag: no real DAG nodes")
	}
	for _, node := range d.nodes[d.taxonCount:] {
		f(node)
	}
}
