package witness

import (
	"goadmit/domain/system"
)

// Witness is a pair of disjoint admissible subsets whose union is
// inadmissible at some interface. Violated carries the first interface (in
// declaration order) at which the union exceeds capacity, together with
// the offending cost.
type Witness struct {
	S system.Subset
	T system.Subset

	Violated  system.InterfaceID
	UnionCost float64
	Capacity  float64
}

// Budget bounds a witness search. MaxSetSize limits |S| and |T|
// individually; MaxCandidates caps the number of enumerated subset pairs.
// The search is exponential in the universe size, so both bounds are
// mandatory inputs rather than tunable optimizations.
type Budget struct {
	MaxSetSize    int
	MaxCandidates int
	Workers       int
}

// DefaultMaxCandidates bounds searches whose caller supplied no explicit
// candidate cap.
const DefaultMaxCandidates = 250000

// Stats reports how much of the candidate space a search covered.
type Stats struct {
	Candidates int  // subset pairs evaluated
	Exhausted  bool // true when the bounded space was fully enumerated
}
