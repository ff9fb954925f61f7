// Package bitset implements the bit-vector representation of clades and
// subsplits used throughout treedag.
//
// A clade is a set of taxa encoded as an n-bit vector, where n is the number
// of taxa in the sample. A subsplit is the concatenation of two disjoint
// clade vectors, giving a 2n-bit value. All identity lookups in the DAG
// (node deduplication, parameter indexing) key on the exact bit pattern via
// [Bitset.Key], so the canonical orderings defined in this package are the
// single source of truth for subsplit identity.
package bitset

import (
	"encoding/binary"
	"math/bits"
	"strconv"
	"strings"
)

// Bitset is a fixed-length vector of bits. The zero value is an empty
// zero-length bitset; use [New] to create one of a given size.
//
// Bitsets are value types: operations that combine or transform bitsets
// return fresh values and never alias the operands' storage.
type Bitset struct {
	n     int
	words []uint64
}

// New creates a bitset of length n with all bits clear.
func New(n int) Bitset {
	return Bitset{n: n, words: make([]uint64, (n+63)/64)}
}

// Size returns the number of bits in the bitset.
func (b Bitset) Size() int { return b.n }

// Set sets bit i. It panics if i is out of range.
func (b Bitset) Set(i int) {
	b.check(i)
	b.words[i/64] |= 1 << (uint(i) % 64)
}

// Test reports whether bit i is set. It panics if i is out of range.
func (b Bitset) Test(i int) bool {
	b.check(i)
	return b.words[i/64]&(1<<(uint(i)%64)) != 0
}

func (b Bitset) check(i int) {
	if i < 0 || i >= b.n {
		panic("bitset: index " + strconv.Itoa(i) + " out of range [0," + strconv.Itoa(b.n) + ")")
	}
}

// Any reports whether at least one bit is set.
func (b Bitset) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of set bits.
func (b Bitset) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// SingletonIndex returns the index of the single set bit and true when
// exactly one bit is set, or 0 and false otherwise.
func (b Bitset) SingletonIndex() (int, bool) {
	if b.Count() != 1 {
		return 0, false
	}
	for i, w := range b.words {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w), true
		}
	}
	return 0, false
}

// Not returns the complement of b within its length.
func (b Bitset) Not() Bitset {
	out := New(b.n)
	for i, w := range b.words {
		out.words[i] = ^w
	}
	out.maskTail()
	return out
}

// maskTail clears the unused bits of the final word so that equal bitsets
// always have identical storage.
func (b Bitset) maskTail() {
	if tail := b.n % 64; tail != 0 && len(b.words) > 0 {
		b.words[len(b.words)-1] &= (1 << uint(tail)) - 1
	}
}

// Clone returns an independent copy of b.
func (b Bitset) Clone() Bitset {
	out := New(b.n)
	copy(out.words, b.words)
	return out
}

// Equal reports whether a and b have the same length and the same bits.
func (b Bitset) Equal(other Bitset) bool {
	if b.n != other.n {
		return false
	}
	for i := range b.words {
		if b.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// Compare orders bitsets of equal length lexicographically, treating bit 0
// as the most significant position and a set bit as greater than a clear
// one. It panics if the lengths differ, since clades from different taxon
// universes are never comparable.
func (b Bitset) Compare(other Bitset) int {
	if b.n != other.n {
		panic("bitset: comparing bitsets of different lengths")
	}
	for i := 0; i < b.n; i++ {
		bi, oi := b.Test(i), other.Test(i)
		if bi != oi {
			if bi {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Concat returns the bit-level concatenation of a followed by b.
func Concat(a, b Bitset) Bitset {
	out := New(a.n + b.n)
	for i := 0; i < a.n; i++ {
		if a.Test(i) {
			out.Set(i)
		}
	}
	for i := 0; i < b.n; i++ {
		if b.Test(i) {
			out.Set(a.n + i)
		}
	}
	return out
}

// Slice returns the sub-vector [start, stop).
func (b Bitset) Slice(start, stop int) Bitset {
	out := New(stop - start)
	for i := start; i < stop; i++ {
		if b.Test(i) {
			out.Set(i - start)
		}
	}
	return out
}

// Key returns a string that uniquely identifies the bitset's length and
// contents, suitable for use as a map key.
func (b Bitset) Key() string {
	var sb strings.Builder
	sb.Grow(12 + 8*len(b.words))
	sb.WriteString(strconv.Itoa(b.n))
	sb.WriteByte(':')
	var buf [8]byte
	for _, w := range b.words {
		binary.LittleEndian.PutUint64(buf[:], w)
		sb.Write(buf[:])
	}
	return sb.String()
}

// String renders the bits as a string of '0' and '1' characters, bit 0
// first.
func (b Bitset) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Of builds a bitset of length n with the given bits set.
// It is primarily a convenience for tests and examples.
func Of(n int, indices ...int) Bitset {
	b := New(n)
	for _, i := range indices {
		b.Set(i)
	}
	return b
}
