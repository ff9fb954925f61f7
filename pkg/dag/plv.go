package dag

import "fmt"

// PLVType identifies one of the six per-node accumulator-vector slots used
// by the external engine's belief propagation over the DAG.
//
// P-type vectors hold partial likelihoods flowing leafward-to-rootward;
// R-type vectors flow rootward-to-leafward. The hatted vectors are the
// per-orientation accumulators that the plain vectors are products of, and
// the tilde variants belong to the rotated orientation.
type PLVType int

const (
	PLVP PLVType = iota
	PLVPHat
	PLVPHatTilde
	PLVRHat
	PLVR
	PLVRTilde

	// PLVTypeCount is the number of accumulator-vector slots per node.
	PLVTypeCount = 6
)

// String returns the conventional short name of the slot kind.
func (t PLVType) String() string {
	switch t {
	case PLVP:
		return "p"
	case PLVPHat:
		return "phat"
	case PLVPHatTilde:
		return "phat_tilde"
	case PLVRHat:
		return "rhat"
	case PLVR:
		return "r"
	case PLVRTilde:
		return "r_tilde"
	default:
		return fmt.Sprintf("PLVType(%d)", int(t))
	}
}

// PLVIndexOf computes the flat accumulator-vector index for a slot kind and
// node id given the total node count. The layout is purely positional:
// all vectors of one kind are contiguous, kinds in declaration order. It
// panics on an unknown kind.
func PLVIndexOf(t PLVType, nodeCount, nodeID int) int {
	if t < PLVP || t > PLVRTilde {
		panic(fmt.Sprintf("dag: invalid PLV type %d", int(t)))
	}
	return int(t)*nodeCount + nodeID
}

// PLVIndex computes the flat accumulator-vector index for a slot kind and
// node id within this DAG. The external engine sizes its accumulator
// storage as PLVTypeCount * NodeCount vectors.
func (d *DAG) PLVIndex(t PLVType, nodeID int) int {
	return PLVIndexOf(t, len(d.nodes), nodeID)
}
