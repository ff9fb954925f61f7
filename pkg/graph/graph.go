// Package graph defines the interchange format for built subsplit DAGs.
//
// A [Document] is the canonical serialization of a DAG: nodes with their
// subsplit strings, edges with their orientation, and the full parameter
// index table. It is the wire format of the HTTP API, the artifact written
// by the pipeline, and the input to DOT rendering. Documents serialize to
// JSON and BSON and round-trip losslessly.
//
// A Document describes a DAG; it does not rebuild one. DAGs are only ever
// constructed from tree samples.
package graph

import (
	"fmt"

	"github.com/phylograph/treedag/pkg/bitset"
	"github.com/phylograph/treedag/pkg/dag"
)

// Document is the serialized form of a built subsplit DAG.
type Document struct {
	Taxa       []string    `json:"taxa" bson:"taxa"`
	Rootsplits []string    `json:"rootsplits" bson:"rootsplits"`
	Nodes      []Node      `json:"nodes" bson:"nodes"`
	Edges      []Edge      `json:"edges" bson:"edges"`
	Parameters []Parameter `json:"parameters" bson:"parameters"`
}

// Node is one DAG vertex. Subsplit is the canonical subsplit rendered as a
// bit string of length 2*len(taxa).
type Node struct {
	ID       int    `json:"id" bson:"id"`
	Subsplit string `json:"subsplit" bson:"subsplit"`
	Leaf     bool   `json:"leaf,omitempty" bson:"leaf,omitempty"`
	Root     bool   `json:"root,omitempty" bson:"root,omitempty"`
}

// Edge is a parent-to-child DAG edge. Rotated marks edges leaving the
// parent's rotated orientation.
type Edge struct {
	Parent  int  `json:"parent" bson:"parent"`
	Child   int  `json:"child" bson:"child"`
	Rotated bool `json:"rotated,omitempty" bson:"rotated,omitempty"`
}

// Parameter maps one generalized PCSP (or rootsplit, rendered as its root
// subsplit) to its parameter index.
type Parameter struct {
	Index int    `json:"index" bson:"index"`
	PCSP  string `json:"pcsp" bson:"pcsp"`
}

// FromDAG builds the document for a DAG. Taxa names the leaves; taxon i is
// fake leaf node i. Nodes, edges and parameters are emitted in id and
// index order, so output is deterministic.
func FromDAG(d *dag.DAG, taxa []string) Document {
	doc := Document{Taxa: taxa}

	for _, rootsplit := range d.Rootsplits() {
		doc.Rootsplits = append(doc.Rootsplits, rootsplit.String())
	}

	for id := 0; id < d.NodeCount(); id++ {
		node := d.Node(id)
		doc.Nodes = append(doc.Nodes, Node{
			ID:       id,
			Subsplit: node.Subsplit().String(),
			Leaf:     node.IsLeaf(),
			Root:     node.IsRoot(),
		})
		for _, rotated := range []bool{false, true} {
			for _, childID := range node.LeafwardIn(rotated) {
				doc.Edges = append(doc.Edges, Edge{Parent: id, Child: childID, Rotated: rotated})
			}
		}
	}

	doc.Parameters = parameterTable(d)
	return doc
}

// parameterTable enumerates every parameter index with its PCSP, in index
// order: rootsplits first, then per real node the sorted and rotated child
// blocks.
func parameterTable(d *dag.DAG) []Parameter {
	var out []Parameter
	for _, rootsplit := range d.Rootsplits() {
		root := bitset.RootSubsplit(rootsplit)
		idx, ok := d.PCSPIndex(root)
		if !ok {
			panic(fmt.Sprintf("graph: rootsplit %s has no parameter index", rootsplit))
		}
		out = append(out, Parameter{Index: idx, PCSP: root.String()})
	}
	d.IterateOverRealNodes(func(node *dag.Node) {
		for _, rotated := range []bool{false, true} {
			parent := node.SubsplitIn(rotated)
			for _, childID := range node.LeafwardIn(rotated) {
				pcsp := bitset.Concat(parent, d.Node(childID).Subsplit())
				idx, ok := d.PCSPIndex(pcsp)
				if !ok {
					panic(fmt.Sprintf("graph: edge %d->%d has no parameter index", node.ID(), childID))
				}
				out = append(out, Parameter{Index: idx, PCSP: pcsp.String()})
			}
		}
	})
	return out
}

// Validate checks internal consistency: node ids are dense and ordered,
// edges reference known nodes, and parameter indices are dense from zero.
func (doc *Document) Validate() error {
	for i, n := range doc.Nodes {
		if n.ID != i {
			return fmt.Errorf("node %d has id %d, ids must be dense and ordered", i, n.ID)
		}
		if len(n.Subsplit) != 2*len(doc.Taxa) {
			return fmt.Errorf("node %d: subsplit %q is not %d bits", i, n.Subsplit, 2*len(doc.Taxa))
		}
	}
	for _, e := range doc.Edges {
		if e.Parent < 0 || e.Parent >= len(doc.Nodes) || e.Child < 0 || e.Child >= len(doc.Nodes) {
			return fmt.Errorf("edge %d->%d references an unknown node", e.Parent, e.Child)
		}
	}
	seen := make([]bool, len(doc.Parameters))
	for _, p := range doc.Parameters {
		if p.Index < 0 || p.Index >= len(doc.Parameters) || seen[p.Index] {
			return fmt.Errorf("parameter index %d is out of range or duplicated", p.Index)
		}
		seen[p.Index] = true
	}
	return nil
}
