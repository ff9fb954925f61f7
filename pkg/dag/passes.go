package dag

import (
	"github.com/phylograph/treedag/pkg/bitset"
	"github.com/phylograph/treedag/pkg/ops"
)

// ComputeLikelihoods emits, for every real node, one Likelihood operation
// per child edge, followed by the marginal-likelihood accumulation. Sorted
// children pair the node's R vector with the child's P vector; rotated
// children use the node's R-tilde vector instead.
func (d *DAG) ComputeLikelihoods() ops.Program {
	var program ops.Program
	d.IterateOverRealNodes(func(node *Node) {
		for _, childID := range node.leafwardSorted {
			child := d.nodes[childID]
			idx := d.mustPCSPIndex(bitset.Concat(node.subsplit, child.subsplit))
			program = append(program, ops.Likelihood{
				Param: idx,
				R:     d.PLVIndex(PLVR, node.id),
				P:     d.PLVIndex(PLVP, child.id),
			})
		}
		for _, childID := range node.leafwardRotated {
			child := d.nodes[childID]
			idx := d.mustPCSPIndex(bitset.Concat(bitset.Rotate(node.subsplit), child.subsplit))
			program = append(program, ops.Likelihood{
				Param: idx,
				R:     d.PLVIndex(PLVRTilde, node.id),
				P:     d.PLVIndex(PLVP, child.id),
			})
		}
	})
	return append(program, d.MarginalLikelihood()...)
}

// MarginalLikelihood emits one IncrementMarginalLikelihood per rootsplit,
// referencing the root node's R-hat and P vectors.
func (d *DAG) MarginalLikelihood() ops.Program {
	var program ops.Program
	for rootsplitIdx, rootsplit := range d.rootsplits {
		rootID := d.mustNodeID(bitset.RootSubsplit(rootsplit))
		program = append(program, ops.IncrementMarginalLikelihood{
			RHat:      d.PLVIndex(PLVRHat, rootID),
			Rootsplit: rootsplitIdx,
			P:         d.PLVIndex(PLVP, rootID),
		})
	}
	return program
}

// accumulatePHat emits the weighted-sum accumulation of one orientation's
// children into the node's P-hat (or P-hat-tilde) vector.
func (d *DAG) accumulatePHat(node *Node, rotated bool, program *ops.Program) {
	plv := PLVPHat
	if rotated {
		plv = PLVPHatTilde
	}
	parent := node.SubsplitIn(rotated)
	for _, childID := range node.LeafwardIn(rotated) {
		idx := d.mustPCSPIndex(bitset.Concat(parent, d.nodes[childID].subsplit))
		*program = append(*program, ops.EvolvePLVWeightedBySBNParameter{
			Dest:  d.PLVIndex(plv, node.id),
			Param: idx,
			Src:   d.PLVIndex(PLVP, childID),
		})
	}
}

// accumulateRHat emits the weighted-sum accumulation of all parents, in
// both orientations, into the node's R-hat vector. Sorted parents
// contribute their R vector, rotated parents their R-tilde vector.
func (d *DAG) accumulateRHat(node *Node, program *ops.Program) {
	for _, parentID := range node.rootwardSorted {
		parent := d.nodes[parentID]
		idx := d.mustPCSPIndex(bitset.Concat(parent.subsplit, node.subsplit))
		*program = append(*program, ops.EvolvePLVWeightedBySBNParameter{
			Dest:  d.PLVIndex(PLVRHat, node.id),
			Param: idx,
			Src:   d.PLVIndex(PLVR, parentID),
		})
	}
	for _, parentID := range node.rootwardRotated {
		parent := d.nodes[parentID]
		idx := d.mustPCSPIndex(bitset.Concat(bitset.Rotate(parent.subsplit), node.subsplit))
		*program = append(*program, ops.EvolvePLVWeightedBySBNParameter{
			Dest:  d.PLVIndex(PLVRHat, node.id),
			Param: idx,
			Src:   d.PLVIndex(PLVRTilde, parentID),
		})
	}
}

// RootwardPass emits the full bottom-up computation of all P-type vectors
// over the rootward traversal order: per internal node, accumulate the
// sorted children into P-hat and the rotated children into P-hat-tilde,
// then multiply the two into P. Leaf nodes are skipped; their P vectors
// are engine-owned observations.
func (d *DAG) RootwardPass() ops.Program {
	return d.RootwardPassOver(d.RootwardPassTraversal())
}

// RootwardPassOver is [DAG.RootwardPass] over a caller-supplied visit
// order.
func (d *DAG) RootwardPassOver(visitOrder []int) ops.Program {
	var program ops.Program
	for _, id := range visitOrder {
		node := d.nodes[id]
		if node.IsLeaf() {
			continue
		}
		d.accumulatePHat(node, false, &program)
		d.accumulatePHat(node, true, &program)
		program = append(program, ops.Multiply{
			Dest: d.PLVIndex(PLVP, id),
			Src1: d.PLVIndex(PLVPHat, id),
			Src2: d.PLVIndex(PLVPHatTilde, id),
		})
	}
	return program
}

// LeafwardPass emits the full top-down computation of all R-type vectors
// over the leafward traversal order: per node, accumulate all parents into
// R-hat, then derive R and R-tilde by multiplying R-hat with the sibling
// P-hat-tilde and P-hat vectors.
func (d *DAG) LeafwardPass() ops.Program {
	return d.LeafwardPassOver(d.LeafwardPassTraversal())
}

// LeafwardPassOver is [DAG.LeafwardPass] over a caller-supplied visit
// order.
func (d *DAG) LeafwardPassOver(visitOrder []int) ops.Program {
	var program ops.Program
	for _, id := range visitOrder {
		node := d.nodes[id]
		d.accumulateRHat(node, &program)
		program = append(program,
			ops.Multiply{
				Dest: d.PLVIndex(PLVR, id),
				Src1: d.PLVIndex(PLVRHat, id),
				Src2: d.PLVIndex(PLVPHatTilde, id),
			},
			ops.Multiply{
				Dest: d.PLVIndex(PLVRTilde, id),
				Src1: d.PLVIndex(PLVRHat, id),
				Src2: d.PLVIndex(PLVPHat, id),
			},
		)
	}
	return program
}

// SetRootwardZero clears the P, P-hat and P-hat-tilde vectors of every real
// node, preparing a fresh rootward pass. Leaf P vectors are left alone.
func (d *DAG) SetRootwardZero() ops.Program {
	var program ops.Program
	for id := d.taxonCount; id < len(d.nodes); id++ {
		program = append(program,
			ops.Zero{Dest: d.PLVIndex(PLVP, id)},
			ops.Zero{Dest: d.PLVIndex(PLVPHat, id)},
			ops.Zero{Dest: d.PLVIndex(PLVPHatTilde, id)},
		)
	}
	return program
}

// SetLeafwardZero clears the R-hat, R and R-tilde vectors of every node,
// then initializes each rootsplit node's R-hat to the stationary
// distribution.
func (d *DAG) SetLeafwardZero() ops.Program {
	var program ops.Program
	for id := range d.nodes {
		program = append(program,
			ops.Zero{Dest: d.PLVIndex(PLVRHat, id)},
			ops.Zero{Dest: d.PLVIndex(PLVR, id)},
			ops.Zero{Dest: d.PLVIndex(PLVRTilde, id)},
		)
	}
	for _, rootsplit := range d.rootsplits {
		rootID := d.mustNodeID(bitset.RootSubsplit(rootsplit))
		program = append(program, ops.SetToStationaryDistribution{
			Dest:      d.PLVIndex(PLVRHat, rootID),
			Rootsplit: ops.NoRootsplit,
		})
	}
	return program
}

// SetRHatToStationary initializes every rootsplit node's R-hat vector to
// the stationary distribution scaled by that rootsplit's probability.
func (d *DAG) SetRHatToStationary() ops.Program {
	var program ops.Program
	for rootsplitIdx, rootsplit := range d.rootsplits {
		rootID := d.mustNodeID(bitset.RootSubsplit(rootsplit))
		program = append(program, ops.SetToStationaryDistribution{
			Dest:      d.PLVIndex(PLVRHat, rootID),
			Rootsplit: rootsplitIdx,
		})
	}
	return program
}

// BuildUniformQ returns an SBN parameter vector of length
// GeneralizedPCSPCount in which the rootsplit block and every per-parent
// child block are uniform distributions over their ranges.
func (d *DAG) BuildUniformQ() []float64 {
	q := make([]float64, d.GeneralizedPCSPCount())
	for i := range q {
		q[i] = 1
	}
	for i := 0; i < len(d.rootsplits); i++ {
		q[i] = 1 / float64(len(d.rootsplits))
	}
	d.ParentRanges(func(r IndexRange) {
		val := 1 / float64(r.Len())
		for i := r.Start; i < r.End; i++ {
			q[i] = val
		}
	})
	return q
}
