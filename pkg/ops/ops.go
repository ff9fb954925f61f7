// Package ops defines the typed operation records emitted by the scheduler
// and consumed by an external numeric engine.
//
// An operation names accumulator-vector slots (PLV indices), parameter
// indices, or parameter ranges; it never carries numeric payloads. The
// engine owns all buffers and interprets each record against them. Programs
// are ordered: an engine must execute operations in sequence, because later
// operations read accumulators written by earlier ones.
package ops

import "fmt"

// NoRootsplit marks a [SetToStationaryDistribution] that is not tied to a
// rootsplit probability.
const NoRootsplit = -1

// Op is the closed set of operation records. Implementations live in this
// package only.
type Op interface {
	op()
	// String renders the operation in a compact single-line form, used by
	// debug output and golden tests.
	String() string
}

// Zero clears the accumulator vector at Dest.
type Zero struct {
	Dest int `json:"dest" bson:"dest"`
}

// Multiply writes the elementwise product of the vectors at Src1 and Src2
// to Dest.
type Multiply struct {
	Dest int `json:"dest" bson:"dest"`
	Src1 int `json:"src1" bson:"src1"`
	Src2 int `json:"src2" bson:"src2"`
}

// EvolvePLVWeightedBySBNParameter applies the transition operator of the
// generalized PCSP at Param to the vector at Src, scales by the PCSP's
// current SBN parameter value, and accumulates into Dest.
type EvolvePLVWeightedBySBNParameter struct {
	Dest  int `json:"dest" bson:"dest"`
	Param int `json:"param" bson:"param"`
	Src   int `json:"src" bson:"src"`
}

// Likelihood records a per-site likelihood contribution for the edge at
// Param from an R-type vector and a P-type vector. Its side effect is on
// the engine's global log-likelihood accumulator, not on DAG state.
type Likelihood struct {
	Param int `json:"param" bson:"param"`
	R     int `json:"r" bson:"r"`
	P     int `json:"p" bson:"p"`
}

// OptimizeBranchLength instructs the engine to re-estimate the
// branch-length-dependent operator for the edge at Param given the vectors
// at both endpoints.
type OptimizeBranchLength struct {
	ChildPLV  int `json:"child_plv" bson:"child_plv"`
	ParentPLV int `json:"parent_plv" bson:"parent_plv"`
	Param     int `json:"param" bson:"param"`
}

// SetToStationaryDistribution initializes the vector at Dest to the model's
// stationary distribution. When Rootsplit is not [NoRootsplit], the engine
// scales by that rootsplit's current probability.
type SetToStationaryDistribution struct {
	Dest      int `json:"dest" bson:"dest"`
	Rootsplit int `json:"rootsplit" bson:"rootsplit"`
}

// UpdateSBNProbabilities renormalizes the parameter sub-range [Start, End)
// in place.
type UpdateSBNProbabilities struct {
	Start int `json:"start" bson:"start"`
	End   int `json:"end" bson:"end"`
}

// IncrementMarginalLikelihood accumulates one rootsplit's contribution to
// the total marginal likelihood from the vectors at RHat and P.
type IncrementMarginalLikelihood struct {
	RHat      int `json:"r_hat" bson:"r_hat"`
	Rootsplit int `json:"rootsplit" bson:"rootsplit"`
	P         int `json:"p" bson:"p"`
}

func (Zero) op()                            {}
func (Multiply) op()                        {}
func (EvolvePLVWeightedBySBNParameter) op() {}
func (Likelihood) op()                      {}
func (OptimizeBranchLength) op()            {}
func (SetToStationaryDistribution) op()     {}
func (UpdateSBNProbabilities) op()          {}
func (IncrementMarginalLikelihood) op()     {}

func (o Zero) String() string { return fmt.Sprintf("zero %d", o.Dest) }

func (o Multiply) String() string {
	return fmt.Sprintf("multiply %d = %d * %d", o.Dest, o.Src1, o.Src2)
}

func (o EvolvePLVWeightedBySBNParameter) String() string {
	return fmt.Sprintf("evolve %d += q[%d] * P[%d] %d", o.Dest, o.Param, o.Param, o.Src)
}

func (o Likelihood) String() string {
	return fmt.Sprintf("likelihood q[%d] r=%d p=%d", o.Param, o.R, o.P)
}

func (o OptimizeBranchLength) String() string {
	return fmt.Sprintf("optimize-branch q[%d] child=%d parent=%d", o.Param, o.ChildPLV, o.ParentPLV)
}

func (o SetToStationaryDistribution) String() string {
	if o.Rootsplit == NoRootsplit {
		return fmt.Sprintf("stationary %d", o.Dest)
	}
	return fmt.Sprintf("stationary %d rootsplit=%d", o.Dest, o.Rootsplit)
}

func (o UpdateSBNProbabilities) String() string {
	return fmt.Sprintf("update-sbn [%d,%d)", o.Start, o.End)
}

func (o IncrementMarginalLikelihood) String() string {
	return fmt.Sprintf("increment-marginal r_hat=%d rootsplit=%d p=%d", o.RHat, o.Rootsplit, o.P)
}

// Program is an ordered operation sequence.
type Program []Op
