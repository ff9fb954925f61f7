package ops

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Operation kind discriminators used by the serialized forms.
const (
	KindZero              = "zero"
	KindMultiply          = "multiply"
	KindEvolvePLV         = "evolve_plv"
	KindLikelihood        = "likelihood"
	KindOptimizeBranch    = "optimize_branch_length"
	KindStationary        = "set_stationary"
	KindUpdateSBN         = "update_sbn_probabilities"
	KindIncrementMarginal = "increment_marginal_likelihood"
)

// envelope is the serialized form of a single operation: a kind
// discriminator plus the union of all operation fields. Only the fields of
// the discriminated kind are populated.
type envelope struct {
	Kind string `json:"kind" bson:"kind"`

	Dest      *int `json:"dest,omitempty" bson:"dest,omitempty"`
	Src       *int `json:"src,omitempty" bson:"src,omitempty"`
	Src1      *int `json:"src1,omitempty" bson:"src1,omitempty"`
	Src2      *int `json:"src2,omitempty" bson:"src2,omitempty"`
	Param     *int `json:"param,omitempty" bson:"param,omitempty"`
	R         *int `json:"r,omitempty" bson:"r,omitempty"`
	P         *int `json:"p,omitempty" bson:"p,omitempty"`
	RHat      *int `json:"r_hat,omitempty" bson:"r_hat,omitempty"`
	ChildPLV  *int `json:"child_plv,omitempty" bson:"child_plv,omitempty"`
	ParentPLV *int `json:"parent_plv,omitempty" bson:"parent_plv,omitempty"`
	Rootsplit *int `json:"rootsplit,omitempty" bson:"rootsplit,omitempty"`
	Start     *int `json:"start,omitempty" bson:"start,omitempty"`
	End       *int `json:"end,omitempty" bson:"end,omitempty"`
}

func ref(v int) *int { return &v }

func toEnvelope(op Op) (envelope, error) {
	switch o := op.(type) {
	case Zero:
		return envelope{Kind: KindZero, Dest: ref(o.Dest)}, nil
	case Multiply:
		return envelope{Kind: KindMultiply, Dest: ref(o.Dest), Src1: ref(o.Src1), Src2: ref(o.Src2)}, nil
	case EvolvePLVWeightedBySBNParameter:
		return envelope{Kind: KindEvolvePLV, Dest: ref(o.Dest), Param: ref(o.Param), Src: ref(o.Src)}, nil
	case Likelihood:
		return envelope{Kind: KindLikelihood, Param: ref(o.Param), R: ref(o.R), P: ref(o.P)}, nil
	case OptimizeBranchLength:
		return envelope{Kind: KindOptimizeBranch, ChildPLV: ref(o.ChildPLV), ParentPLV: ref(o.ParentPLV), Param: ref(o.Param)}, nil
	case SetToStationaryDistribution:
		e := envelope{Kind: KindStationary, Dest: ref(o.Dest)}
		if o.Rootsplit != NoRootsplit {
			e.Rootsplit = ref(o.Rootsplit)
		}
		return e, nil
	case UpdateSBNProbabilities:
		return envelope{Kind: KindUpdateSBN, Start: ref(o.Start), End: ref(o.End)}, nil
	case IncrementMarginalLikelihood:
		return envelope{Kind: KindIncrementMarginal, RHat: ref(o.RHat), Rootsplit: ref(o.Rootsplit), P: ref(o.P)}, nil
	default:
		return envelope{}, fmt.Errorf("unknown operation type %T", op)
	}
}

func fromEnvelope(e envelope) (Op, error) {
	need := func(vs ...*int) error {
		for _, v := range vs {
			if v == nil {
				return fmt.Errorf("operation %q has missing fields", e.Kind)
			}
		}
		return nil
	}

	switch e.Kind {
	case KindZero:
		if err := need(e.Dest); err != nil {
			return nil, err
		}
		return Zero{Dest: *e.Dest}, nil
	case KindMultiply:
		if err := need(e.Dest, e.Src1, e.Src2); err != nil {
			return nil, err
		}
		return Multiply{Dest: *e.Dest, Src1: *e.Src1, Src2: *e.Src2}, nil
	case KindEvolvePLV:
		if err := need(e.Dest, e.Param, e.Src); err != nil {
			return nil, err
		}
		return EvolvePLVWeightedBySBNParameter{Dest: *e.Dest, Param: *e.Param, Src: *e.Src}, nil
	case KindLikelihood:
		if err := need(e.Param, e.R, e.P); err != nil {
			return nil, err
		}
		return Likelihood{Param: *e.Param, R: *e.R, P: *e.P}, nil
	case KindOptimizeBranch:
		if err := need(e.ChildPLV, e.ParentPLV, e.Param); err != nil {
			return nil, err
		}
		return OptimizeBranchLength{ChildPLV: *e.ChildPLV, ParentPLV: *e.ParentPLV, Param: *e.Param}, nil
	case KindStationary:
		if err := need(e.Dest); err != nil {
			return nil, err
		}
		op := SetToStationaryDistribution{Dest: *e.Dest, Rootsplit: NoRootsplit}
		if e.Rootsplit != nil {
			op.Rootsplit = *e.Rootsplit
		}
		return op, nil
	case KindUpdateSBN:
		if err := need(e.Start, e.End); err != nil {
			return nil, err
		}
		return UpdateSBNProbabilities{Start: *e.Start, End: *e.End}, nil
	case KindIncrementMarginal:
		if err := need(e.RHat, e.Rootsplit, e.P); err != nil {
			return nil, err
		}
		return IncrementMarginalLikelihood{RHat: *e.RHat, Rootsplit: *e.Rootsplit, P: *e.P}, nil
	default:
		return nil, fmt.Errorf("unknown operation kind %q", e.Kind)
	}
}

// MarshalJSON encodes the program as an array of kind-tagged objects.
func (p Program) MarshalJSON() ([]byte, error) {
	envs := make([]envelope, len(p))
	for i, op := range p {
		e, err := toEnvelope(op)
		if err != nil {
			return nil, err
		}
		envs[i] = e
	}
	return json.Marshal(envs)
}

// UnmarshalJSON decodes a program produced by [Program.MarshalJSON].
func (p *Program) UnmarshalJSON(data []byte) error {
	var envs []envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return err
	}
	out := make(Program, len(envs))
	for i, e := range envs {
		op, err := fromEnvelope(e)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		out[i] = op
	}
	*p = out
	return nil
}

// document is the BSON top-level form: BSON requires a document, not an
// array, at the root.
type document struct {
	Operations []envelope `bson:"operations"`
}

// MarshalBSON encodes the program as a BSON document with an "operations"
// array.
func (p Program) MarshalBSON() ([]byte, error) {
	envs := make([]envelope, len(p))
	for i, op := range p {
		e, err := toEnvelope(op)
		if err != nil {
			return nil, err
		}
		envs[i] = e
	}
	return bson.Marshal(document{Operations: envs})
}

// UnmarshalBSON decodes a program produced by [Program.MarshalBSON].
func (p *Program) UnmarshalBSON(data []byte) error {
	var doc document
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	out := make(Program, len(doc.Operations))
	for i, e := range doc.Operations {
		op, err := fromEnvelope(e)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		out[i] = op
	}
	*p = out
	return nil
}
