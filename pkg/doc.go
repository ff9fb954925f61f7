// Package pkg provides the core libraries for treedag.
//
// # Overview
//
// Treedag builds subsplit graphs from weighted samples of rooted bifurcating
// topologies and schedules generalized-pruning operation programs over them.
// The pkg directory is organized into five main areas:
//
//  1. [bitset], [sample] - Input representation (clades, subsplits, tree samples)
//  2. [dag], [ops] - Domain logic (graph structure, traversals, operation programs)
//  3. [graph], [render] - Serialization and visualization of the graph
//  4. [cache], [errors], [observability] - Infrastructure
//  5. [pipeline] - Orchestration (build → schedule → render)
//
// # Architecture
//
// The typical data flow through treedag:
//
//	Weighted topology sample (JSON)
//	         ↓
//	    [sample] package (parse + validate)
//	         ↓
//	    [dag] package (subsplit graph + traversals)
//	         ↓
//	    [ops] package (operation programs)
//	         ↓
//	    [graph] / [render] packages (JSON/BSON documents, DOT/SVG drawings)
//
// # Quick Start
//
// Build a graph and schedule a likelihood program:
//
//	import (
//	    "github.com/phylograph/treedag/pkg/dag"
//	    "github.com/phylograph/treedag/pkg/sample"
//	)
//
//	coll, err := sample.ImportJSON("sample.json")
//	if err != nil {
//	    return err
//	}
//	d, err := dag.Build(coll)
//	if err != nil {
//	    return err
//	}
//	program := d.ComputeLikelihoods()
//
// Or run the whole pipeline with caching through [pipeline.Runner].
package pkg
