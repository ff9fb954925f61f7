// Package sample represents weighted samples of rooted tree topologies and
// reduces them to the subsplit statistics the DAG builder consumes.
//
// A sample is a taxon list plus a multiset of rooted binary topologies over
// those taxa. The builder never sees the trees themselves: it consumes the
// distinct rootsplits and the distinct parent-child subsplit pairs, each
// with its multiplicity, in first-seen order. That order is part of the
// contract: it fixes the placeholder index layout used during DAG
// construction.
package sample

import (
	"errors"
	"fmt"

	"github.com/phylograph/treedag/pkg/bitset"
	apperrors "github.com/phylograph/treedag/pkg/errors"
)

var (
	// ErrEmptyCollection is returned by [Collection.Validate] when the
	// collection has no trees or fewer than three taxa.
	ErrEmptyCollection = errors.New("collection needs at least three taxa and one tree")

	// ErrBadTopology is returned by [Collection.Validate] when a topology's
	// leaves do not cover each taxon exactly once.
	ErrBadTopology = errors.New("topology leaves must cover each taxon exactly once")

	// ErrBadCount is returned by [Collection.Validate] when a tree has a
	// non-positive multiplicity.
	ErrBadCount = errors.New("tree count must be positive")
)

// Topology is a node of a rooted binary tree. A node is a leaf when both
// child pointers are nil, in which case Taxon identifies it; otherwise both
// children must be non-nil.
type Topology struct {
	Taxon       int
	Left, Right *Topology
}

// IsLeaf reports whether the node has no children.
func (t *Topology) IsLeaf() bool { return t.Left == nil && t.Right == nil }

// Leaf returns a leaf topology for the given taxon.
func Leaf(taxon int) *Topology { return &Topology{Taxon: taxon} }

// Join returns an internal topology node with the given children.
func Join(left, right *Topology) *Topology { return &Topology{Left: left, Right: right} }

// Tree pairs a topology with its multiplicity in the sample.
type Tree struct {
	Topology *Topology
	Count    int
}

// Collection is a weighted sample of rooted topologies over a fixed taxon
// universe. Taxon i is named Taxa[i].
type Collection struct {
	Taxa  []string
	Trees []Tree
}

// TaxonCount returns the number of taxa in the universe.
func (c *Collection) TaxonCount() int { return len(c.Taxa) }

// Validate checks that the collection is a usable sample: at least three
// taxa with well-formed names, at least one tree, positive counts, and
// every topology's leaves covering each taxon exactly once.
func (c *Collection) Validate() error {
	if len(c.Taxa) < 3 || len(c.Trees) == 0 {
		return ErrEmptyCollection
	}
	for i, name := range c.Taxa {
		if err := apperrors.ValidateTaxonName(name); err != nil {
			return fmt.Errorf("taxon %d: %w", i, err)
		}
	}
	for i, tr := range c.Trees {
		if tr.Count <= 0 {
			return fmt.Errorf("tree %d: %w", i, ErrBadCount)
		}
		seen := make([]bool, len(c.Taxa))
		if err := checkLeaves(tr.Topology, seen); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		for taxon, ok := range seen {
			if !ok {
				return fmt.Errorf("tree %d: missing taxon %d: %w", i, taxon, ErrBadTopology)
			}
		}
	}
	return nil
}

func checkLeaves(t *Topology, seen []bool) error {
	if t == nil {
		return ErrBadTopology
	}
	if t.IsLeaf() {
		if t.Taxon < 0 || t.Taxon >= len(seen) {
			return fmt.Errorf("taxon %d out of range: %w", t.Taxon, ErrBadTopology)
		}
		if seen[t.Taxon] {
			return fmt.Errorf("taxon %d repeated: %w", t.Taxon, ErrBadTopology)
		}
		seen[t.Taxon] = true
		return nil
	}
	if t.Left == nil || t.Right == nil {
		return ErrBadTopology
	}
	if err := checkLeaves(t.Left, seen); err != nil {
		return err
	}
	return checkLeaves(t.Right, seen)
}

// CladeCount is a distinct clade with its aggregated multiplicity.
type CladeCount struct {
	Clade bitset.Bitset
	Count int
}

// ChildCount is a distinct canonical child subsplit with its aggregated
// multiplicity under one parent orientation.
type ChildCount struct {
	Subsplit bitset.Bitset
	Count    int
}

// ParentChildren groups the distinct children observed under one
// parent-orientation subsplit. Parent carries the refined clade as its
// second chunk.
type ParentChildren struct {
	Parent   bitset.Bitset
	Children []ChildCount
}

// RootsplitCounts returns the distinct rootsplits of the sample with
// multiplicities, in first-seen order. Each rootsplit is the canonical
// (lexicographically smaller) clade of the root bipartition.
func (c *Collection) RootsplitCounts() []CladeCount {
	var out []CladeCount
	index := map[string]int{}
	n := c.TaxonCount()
	for _, tr := range c.Trees {
		rs := bitset.Rootsplit(topologyClade(tr.Topology.Left, n))
		key := rs.Key()
		if i, ok := index[key]; ok {
			out[i].Count += tr.Count
		} else {
			index[key] = len(out)
			out = append(out, CladeCount{Clade: rs, Count: tr.Count})
		}
	}
	return out
}

// PCSPCounts returns, for every distinct parent-orientation subsplit
// observed in the sample, the distinct canonical child subsplits with
// multiplicities. Parents appear in first-seen order, and so do the
// children within each parent.
func (c *Collection) PCSPCounts() []ParentChildren {
	var out []ParentChildren
	parentIndex := map[string]int{}
	childIndex := map[string]map[string]int{}
	n := c.TaxonCount()

	record := func(parent, child bitset.Bitset, count int) {
		pkey := parent.Key()
		pi, ok := parentIndex[pkey]
		if !ok {
			pi = len(out)
			parentIndex[pkey] = pi
			childIndex[pkey] = map[string]int{}
			out = append(out, ParentChildren{Parent: parent})
		}
		ckey := child.Key()
		if ci, ok := childIndex[pkey][ckey]; ok {
			out[pi].Children[ci].Count += count
		} else {
			childIndex[pkey][ckey] = len(out[pi].Children)
			out[pi].Children = append(out[pi].Children, ChildCount{Subsplit: child, Count: count})
		}
	}

	for _, tr := range c.Trees {
		walkPCSPs(tr.Topology, n, tr.Count, record)
	}
	return out
}

// walkPCSPs visits every internal node of t and records, for each internal
// child, the parent-orientation subsplit paired with the child's canonical
// subsplit. The parent orientation places the clade the child refines as
// the second chunk.
func walkPCSPs(t *Topology, n, count int, record func(parent, child bitset.Bitset, count int)) bitset.Bitset {
	if t.IsLeaf() {
		return bitset.Of(n, t.Taxon)
	}
	left := walkPCSPs(t.Left, n, count, record)
	right := walkPCSPs(t.Right, n, count, record)

	for _, side := range []struct {
		child        *Topology
		focal, other bitset.Bitset
	}{
		{t.Left, left, right},
		{t.Right, right, left},
	} {
		if side.child.IsLeaf() {
			continue
		}
		parent := bitset.Concat(side.other, side.focal)
		child := bitset.Subsplit(
			topologyClade(side.child.Left, n),
			topologyClade(side.child.Right, n),
		)
		record(parent, child, count)
	}

	union := left.Clone()
	for i := 0; i < n; i++ {
		if right.Test(i) {
			union.Set(i)
		}
	}
	return union
}

// topologyClade returns the clade (taxon set) under t.
func topologyClade(t *Topology, n int) bitset.Bitset {
	out := bitset.New(n)
	var walk func(*Topology)
	walk = func(t *Topology) {
		if t.IsLeaf() {
			out.Set(t.Taxon)
			return
		}
		walk(t.Left)
		walk(t.Right)
	}
	walk(t)
	return out
}
