package dag

import (
	"github.com/phylograph/treedag/pkg/bitset"
	"github.com/phylograph/treedag/pkg/ops"
)

// Optimization scheduling.
//
// Branch-length and SBN-parameter optimization share the same recursive
// descent: refresh a node's R-hat from its parents (so the quantities being
// optimized reflect the latest values from sibling subtrees visited earlier
// in the same call), resolve unvisited children depth-first, and rebuild
// the P-type products on the way out. The two differ only in what is
// emitted per child edge and per resolved orientation, so the descent is
// parameterized by a strategy. The visited set is shared across all
// rootsplit entry points of one call: a node reachable from several
// rootsplits is resolved exactly once.

// edgeStrategy selects the per-edge and per-orientation emissions of one
// optimization goal.
type edgeStrategy interface {
	// visitEdge emits the operations for the edge node->child in the given
	// orientation, after the child itself has been resolved.
	visitEdge(d *DAG, node *Node, childID int, rotated bool, program *ops.Program)

	// finishOrientation runs after all of the node's children in one
	// orientation have been visited.
	finishOrientation(d *DAG, node *Node, rotated bool, program *ops.Program)
}

// branchLengthStrategy re-estimates each edge's branch-length-dependent
// operator before folding the child into the parent's P-hat accumulator.
type branchLengthStrategy struct{}

func (branchLengthStrategy) visitEdge(d *DAG, node *Node, childID int, rotated bool, program *ops.Program) {
	pcsp := bitset.Concat(node.SubsplitIn(rotated), d.nodes[childID].subsplit)
	idx := d.mustPCSPIndex(pcsp)
	parentR := PLVR
	childPHat := PLVPHat
	if rotated {
		parentR = PLVRTilde
		childPHat = PLVPHatTilde
	}
	*program = append(*program,
		ops.OptimizeBranchLength{
			ChildPLV:  d.PLVIndex(PLVP, childID),
			ParentPLV: d.PLVIndex(parentR, node.id),
			Param:     idx,
		},
		ops.EvolvePLVWeightedBySBNParameter{
			Dest:  d.PLVIndex(childPHat, node.id),
			Param: idx,
			Src:   d.PLVIndex(PLVP, childID),
		},
	)
}

func (branchLengthStrategy) finishOrientation(*DAG, *Node, bool, *ops.Program) {}

// sbnParameterStrategy folds each child into the parent's P-hat accumulator
// and records the edge's likelihood contribution, then renormalizes the
// parent orientation's child-parameter block once its children are current.
type sbnParameterStrategy struct{}

func (sbnParameterStrategy) visitEdge(d *DAG, node *Node, childID int, rotated bool, program *ops.Program) {
	pcsp := bitset.Concat(node.SubsplitIn(rotated), d.nodes[childID].subsplit)
	idx := d.mustPCSPIndex(pcsp)
	parentR := PLVR
	childPHat := PLVPHat
	if rotated {
		parentR = PLVRTilde
		childPHat = PLVPHatTilde
	}
	*program = append(*program,
		ops.EvolvePLVWeightedBySBNParameter{
			Dest:  d.PLVIndex(childPHat, node.id),
			Param: idx,
			Src:   d.PLVIndex(PLVP, childID),
		},
		ops.Likelihood{
			Param: idx,
			R:     d.PLVIndex(parentR, node.id),
			P:     d.PLVIndex(PLVP, childID),
		},
	)
}

func (sbnParameterStrategy) finishOrientation(d *DAG, node *Node, rotated bool, program *ops.Program) {
	d.updateSBNProbabilities(node.SubsplitIn(rotated), program)
}

// updateSBNProbabilities emits a renormalization of the parent's
// child-parameter block when it holds more than one child.
func (d *DAG) updateSBNProbabilities(parent bitset.Bitset, program *ops.Program) {
	if r, ok := d.parentRange[parent.Key()]; ok && r.Len() > 1 {
		*program = append(*program, ops.UpdateSBNProbabilities{Start: r.Start, End: r.End})
	}
}

// scheduleOptimization resolves one node: refresh its R-type vectors from
// its parents, then descend into unvisited children and emit the
// strategy's per-edge work, rebuilding P-hat, P-hat-tilde, R, R-tilde and
// finally P so that every quantity a later edge visit reads is current.
func (d *DAG) scheduleOptimization(id int, strategy edgeStrategy, visited []bool, program *ops.Program) {
	visited[id] = true
	node := d.nodes[id]

	if !node.IsRoot() {
		*program = append(*program, ops.Zero{Dest: d.PLVIndex(PLVRHat, id)})
		d.accumulateRHat(node, program)
		*program = append(*program,
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

	if node.IsLeaf() {
		return
	}

	*program = append(*program, ops.Zero{Dest: d.PLVIndex(PLVPHat, id)})
	for _, childID := range node.leafwardSorted {
		if !visited[childID] {
			d.scheduleOptimization(childID, strategy, visited, program)
		}
		strategy.visitEdge(d, node, childID, false, program)
	}
	strategy.finishOrientation(d, node, false, program)
	*program = append(*program, ops.Multiply{
		Dest: d.PLVIndex(PLVRTilde, id),
		Src1: d.PLVIndex(PLVRHat, id),
		Src2: d.PLVIndex(PLVPHat, id),
	})

	*program = append(*program, ops.Zero{Dest: d.PLVIndex(PLVPHatTilde, id)})
	for _, childID := range node.leafwardRotated {
		if !visited[childID] {
			d.scheduleOptimization(childID, strategy, visited, program)
		}
		strategy.visitEdge(d, node, childID, true, program)
	}
	strategy.finishOrientation(d, node, true, program)
	*program = append(*program,
		ops.Multiply{
			Dest: d.PLVIndex(PLVR, id),
			Src1: d.PLVIndex(PLVRHat, id),
			Src2: d.PLVIndex(PLVPHatTilde, id),
		},
		ops.Multiply{
			Dest: d.PLVIndex(PLVP, id),
			Src1: d.PLVIndex(PLVPHat, id),
			Src2: d.PLVIndex(PLVPHatTilde, id),
		},
	)
}

// BranchLengthOptimization emits the program that re-estimates every edge's
// branch-length operator across the whole DAG in one traversal, keeping all
// accumulator vectors current as it goes.
func (d *DAG) BranchLengthOptimization() ops.Program {
	var program ops.Program
	visited := make([]bool, len(d.nodes))
	for _, rootsplit := range d.rootsplits {
		d.scheduleOptimization(d.mustNodeID(bitset.RootSubsplit(rootsplit)), branchLengthStrategy{}, visited, &program)
	}
	return program
}

// SBNParameterOptimization emits the program that refreshes likelihood
// contributions and renormalizes every per-parent parameter block, then
// accumulates each rootsplit's marginal contribution and finally
// renormalizes the rootsplit block itself.
func (d *DAG) SBNParameterOptimization() ops.Program {
	var program ops.Program
	visited := make([]bool, len(d.nodes))
	for rootsplitIdx, rootsplit := range d.rootsplits {
		rootID := d.mustNodeID(bitset.RootSubsplit(rootsplit))
		d.scheduleOptimization(rootID, sbnParameterStrategy{}, visited, &program)
		program = append(program, ops.IncrementMarginalLikelihood{
			RHat:      d.PLVIndex(PLVRHat, rootID),
			Rootsplit: rootsplitIdx,
			P:         d.PLVIndex(PLVP, rootID),
		})
	}
	// The P vectors are already current here, so the rootsplit block can be
	// renormalized directly.
	return append(program, ops.UpdateSBNProbabilities{Start: 0, End: len(d.rootsplits)})
}
