package system

import (
	"math/bits"
	"strings"
)

// MaxDistinctions is the largest universe a Subset can index. The engine
// deliberately represents subsets as fixed-width bitmasks so that union,
// intersection and membership are single instructions; systems larger than
// the mask width are rejected at construction.
const MaxDistinctions = 64

// Subset is a bitmask over the fixed distinction order of a System.
// The zero value is the empty set.
type Subset uint64

// EmptySet is the subset containing no distinctions.
const EmptySet Subset = 0

// SubsetOf builds a subset from distinction indices.
func SubsetOf(indices ...int) Subset {
	var s Subset
	for _, i := range indices {
		s |= 1 << uint(i)
	}
	return s
}

func (s Subset) Contains(i int) bool  { return s&(1<<uint(i)) != 0 }
func (s Subset) With(i int) Subset    { return s | 1<<uint(i) }
func (s Subset) Without(i int) Subset { return s &^ (1 << uint(i)) }

func (s Subset) Union(t Subset) Subset     { return s | t }
func (s Subset) Intersect(t Subset) Subset { return s & t }
func (s Subset) Disjoint(t Subset) bool    { return s&t == 0 }

// IsSubsetOf reports whether every member of s is a member of t.
func (s Subset) IsSubsetOf(t Subset) bool { return s&^t == 0 }

// Size returns the cardinality of the subset.
func (s Subset) Size() int { return bits.OnesCount64(uint64(s)) }

func (s Subset) IsEmpty() bool { return s == 0 }

// Members returns the indices of the subset in ascending order.
func (s Subset) Members() []int {
	out := make([]int, 0, s.Size())
	for m := uint64(s); m != 0; m &= m - 1 {
		out = append(out, bits.TrailingZeros64(m))
	}
	return out
}

// Labels resolves the subset against a system's distinction order.
func (s Subset) Labels(sys *System) []DistinctionID {
	members := s.Members()
	out := make([]DistinctionID, len(members))
	for k, i := range members {
		out[k] = sys.distinctions[i]
	}
	return out
}

// String renders the subset as {d0,d3,...} over raw indices.
func (s Subset) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for k, i := range s.Members() {
		if k > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('d')
		writeInt(&b, i)
	}
	b.WriteByte('}')
	return b.String()
}

func writeInt(b *strings.Builder, n int) {
	if n >= 10 {
		writeInt(b, n/10)
	}
	b.WriteByte(byte('0' + n%10))
}
