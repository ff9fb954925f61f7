package bitset

// Subsplit conventions.
//
// A subsplit over n taxa is stored as a 2n-bit vector: the concatenation of
// its two clade vectors. The canonical ("sorted") form orders the clades so
// that the lexicographically smaller clade comes first; Rotate swaps them.
// A parent-orientation subsplit always carries the clade being refined as
// its second chunk, so the children of a subsplit s refine Chunk(s, 1) and
// the children of Rotate(s) refine the original first chunk.

// Subsplit builds the canonical subsplit of two disjoint clades over the
// same taxon universe: the smaller clade becomes chunk 0.
func Subsplit(a, b Bitset) Bitset {
	if a.Compare(b) <= 0 {
		return Concat(a, b)
	}
	return Concat(b, a)
}

// Rotate swaps the two clades of a subsplit. Rotation is an involution:
// Rotate(Rotate(s)) == s.
func Rotate(s Bitset) Bitset {
	half := s.n / 2
	return Concat(s.Slice(half, 2*half), s.Slice(0, half))
}

// Chunk returns clade i (0 or 1) of a subsplit.
func Chunk(s Bitset, i int) Bitset {
	half := s.n / 2
	return s.Slice(i*half, (i+1)*half)
}

// FakeSubsplit returns the degenerate subsplit that represents a single
// taxon as a DAG leaf: an empty first clade and a singleton second clade.
func FakeSubsplit(n, taxon int) Bitset {
	return Concat(New(n), Of(n, taxon))
}

// Rootsplit canonicalizes a root placement: given one clade of a bipartition
// of the full taxon set, it returns the lexicographically smaller of the
// clade and its complement. RootSubsplit of the result is then canonical.
func Rootsplit(clade Bitset) Bitset {
	comp := clade.Not()
	if clade.Compare(comp) <= 0 {
		return clade
	}
	return comp
}

// RootSubsplit expands an n-bit rootsplit into the 2n-bit subsplit that
// serves as its DAG entry node: the rootsplit clade paired with its
// complement.
func RootSubsplit(rootsplit Bitset) Bitset {
	return Concat(rootsplit, rootsplit.Not())
}
