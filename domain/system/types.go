package system

// DistinctionID identifies an atomic element of the finite universe D.
type DistinctionID string

// InterfaceID identifies a capacity-bounded enforcement interface.
type InterfaceID string

// Interface is a locus at which enforcement costs are evaluated, bounded by
// a strictly positive finite capacity.
type Interface struct {
	ID       InterfaceID `json:"id"`
	Capacity float64     `json:"capacity"`
}

// MarginalCost assigns a nonnegative per-distinction cost at an interface.
type MarginalCost struct {
	Interface   InterfaceID   `json:"interface"`
	Distinction DistinctionID `json:"distinction"`
	Value       float64       `json:"value"`
}

// PairwiseCost assigns a nonnegative interaction cost to an unordered pair
// of distinctions at an interface.
type PairwiseCost struct {
	Interface InterfaceID      `json:"interface"`
	Pair      [2]DistinctionID `json:"pair"`
	Value     float64          `json:"value"`
}

// Spec is the configuration document an enforcement system is built from.
// Entries missing from the cost lists default to zero; everything else is
// validated at construction.
type Spec struct {
	Distinctions  []DistinctionID `json:"distinctions"`
	Interfaces    []Interface     `json:"interfaces"`
	MarginalCosts []MarginalCost  `json:"marginalCosts"`
	PairwiseCosts []PairwiseCost  `json:"pairwiseCosts"`
}

// CostTable holds the marginal and pairwise costs of one interface, indexed
// by the fixed distinction order. Pairwise entries are stored once per
// unordered pair and mirrored on read.
type CostTable struct {
	marginal []float64
	pairwise [][]float64 // upper triangle authoritative, kept symmetric
}

// Marginal returns epsilon(d) for the distinction at index i.
func (t *CostTable) Marginal(i int) float64 {
	return t.marginal[i]
}

// Pairwise returns eta(d, d') for the distinctions at indices i and j.
// The diagonal is zero: a distinction does not interact with itself.
func (t *CostTable) Pairwise(i, j int) float64 {
	if i == j {
		return 0
	}
	return t.pairwise[i][j]
}
