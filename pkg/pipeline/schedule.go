package pipeline

import (
	"github.com/phylograph/treedag/pkg/dag"
	"github.com/phylograph/treedag/pkg/errors"
	"github.com/phylograph/treedag/pkg/ops"
)

// Schedule emits the operation program for a single goal.
func Schedule(d *dag.DAG, goal string) (ops.Program, error) {
	switch goal {
	case GoalLikelihood:
		return d.ComputeLikelihoods(), nil
	case GoalMarginal:
		return d.MarginalLikelihood(), nil
	case GoalRootward:
		return d.RootwardPass(), nil
	case GoalLeafward:
		return d.LeafwardPass(), nil
	case GoalBranchLengths:
		return d.BranchLengthOptimization(), nil
	case GoalSBNParameters:
		return d.SBNParameterOptimization(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidGoal, "invalid goal: %q", goal)
	}
}

// ScheduleAll emits programs for every goal, keyed by goal name.
func ScheduleAll(d *dag.DAG, goals []string) (map[string]ops.Program, error) {
	programs := make(map[string]ops.Program, len(goals))
	for _, goal := range goals {
		p, err := Schedule(d, goal)
		if err != nil {
			return nil, err
		}
		programs[goal] = p
	}
	return programs, nil
}
