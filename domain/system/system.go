package system

import (
	"fmt"
	"math"

	"goadmit/domain/core"
)

// System is a validated, immutable enforcement system: a finite ordered
// universe of distinctions, a set of capacity-bounded interfaces, and one
// cost table per interface.
//
// The enforcement functional evaluated here is the additive-plus-pairwise
// form E_i(S) = sum eps_i(d) + sum eta_i(d,d') over S. This is a deliberate
// restriction of the fully general set functional: it is sufficient to
// exercise monotonicity, additivity on independent sets, and quadratic
// growth, and all analyses in this module assume it.
//
// A System never mutates after construction; every query on it is a pure
// function, so a single instance may be shared across goroutines freely.
type System struct {
	distinctions []DistinctionID
	index        map[DistinctionID]int
	interfaces   []Interface
	ifaceIndex   map[InterfaceID]int
	tables       []CostTable
}

// New validates a Spec and constructs a System from it. Violations are
// reported as configuration errors naming the offending field: capacities
// must be strictly positive and finite, costs nonnegative and finite, and
// every reference must resolve inside the declared universe.
func New(spec Spec) (*System, error) {
	if len(spec.Distinctions) == 0 {
		return nil, core.NewConfigurationError("distinctions", "at least one distinction is required")
	}
	if len(spec.Distinctions) > MaxDistinctions {
		return nil, core.NewConfigurationError("distinctions",
			fmt.Sprintf("universe of %d exceeds the %d-element limit", len(spec.Distinctions), MaxDistinctions))
	}
	if len(spec.Interfaces) == 0 {
		return nil, core.NewConfigurationError("interfaces", "at least one interface is required")
	}

	s := &System{
		distinctions: make([]DistinctionID, len(spec.Distinctions)),
		index:        make(map[DistinctionID]int, len(spec.Distinctions)),
		interfaces:   make([]Interface, len(spec.Interfaces)),
		ifaceIndex:   make(map[InterfaceID]int, len(spec.Interfaces)),
		tables:       make([]CostTable, len(spec.Interfaces)),
	}

	for i, d := range spec.Distinctions {
		if d == "" {
			return nil, core.NewConfigurationError("distinctions", "empty distinction id")
		}
		if _, dup := s.index[d]; dup {
			return nil, core.NewConfigurationError("distinctions", fmt.Sprintf("duplicate distinction %q", d))
		}
		s.distinctions[i] = d
		s.index[d] = i
	}

	n := len(s.distinctions)
	for i, itf := range spec.Interfaces {
		if itf.ID == "" {
			return nil, core.NewConfigurationError("interfaces", "empty interface id")
		}
		if _, dup := s.ifaceIndex[itf.ID]; dup {
			return nil, core.NewConfigurationError("interfaces", fmt.Sprintf("duplicate interface %q", itf.ID))
		}
		if !(itf.Capacity > 0) || math.IsInf(itf.Capacity, 0) || math.IsNaN(itf.Capacity) {
			return nil, core.NewConfigurationError(fmt.Sprintf("interfaces[%s].capacity", itf.ID),
				fmt.Sprintf("capacity must be a strictly positive finite real, got %v", itf.Capacity))
		}
		s.interfaces[i] = itf
		s.ifaceIndex[itf.ID] = i

		table := CostTable{
			marginal: make([]float64, n),
			pairwise: make([][]float64, n),
		}
		for j := range table.pairwise {
			table.pairwise[j] = make([]float64, n)
		}
		s.tables[i] = table
	}

	type marginalKey struct {
		iface InterfaceID
		d     DistinctionID
	}
	seenMarginal := make(map[marginalKey]bool, len(spec.MarginalCosts))
	for _, mc := range spec.MarginalCosts {
		field := fmt.Sprintf("marginalCosts[%s/%s]", mc.Interface, mc.Distinction)
		ii, ok := s.ifaceIndex[mc.Interface]
		if !ok {
			return nil, core.NewConfigurationError(field, "unknown interface reference")
		}
		di, ok := s.index[mc.Distinction]
		if !ok {
			return nil, core.NewConfigurationError(field, "unknown distinction reference")
		}
		if mc.Value < 0 || math.IsInf(mc.Value, 0) || math.IsNaN(mc.Value) {
			return nil, core.NewConfigurationError(field,
				fmt.Sprintf("cost must be a nonnegative finite real, got %v", mc.Value))
		}
		key := marginalKey{mc.Interface, mc.Distinction}
		if seenMarginal[key] {
			return nil, core.NewConfigurationError(field, "duplicate cost entry")
		}
		seenMarginal[key] = true
		s.tables[ii].marginal[di] = mc.Value
	}

	type pairKey struct {
		iface InterfaceID
		lo    int
		hi    int
	}
	seenPair := make(map[pairKey]bool, len(spec.PairwiseCosts))
	for _, pc := range spec.PairwiseCosts {
		field := fmt.Sprintf("pairwiseCosts[%s/%s,%s]", pc.Interface, pc.Pair[0], pc.Pair[1])
		ii, ok := s.ifaceIndex[pc.Interface]
		if !ok {
			return nil, core.NewConfigurationError(field, "unknown interface reference")
		}
		a, ok := s.index[pc.Pair[0]]
		if !ok {
			return nil, core.NewConfigurationError(field, "unknown distinction reference")
		}
		b, ok := s.index[pc.Pair[1]]
		if !ok {
			return nil, core.NewConfigurationError(field, "unknown distinction reference")
		}
		if a == b {
			return nil, core.NewConfigurationError(field, "pair must name two distinct distinctions")
		}
		if pc.Value < 0 || math.IsInf(pc.Value, 0) || math.IsNaN(pc.Value) {
			return nil, core.NewConfigurationError(field,
				fmt.Sprintf("cost must be a nonnegative finite real, got %v", pc.Value))
		}
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		key := pairKey{pc.Interface, lo, hi}
		if seenPair[key] {
			return nil, core.NewConfigurationError(field, "duplicate cost entry")
		}
		seenPair[key] = true
		// Stored symmetrically; pair keys are unordered by contract.
		s.tables[ii].pairwise[lo][hi] = pc.Value
		s.tables[ii].pairwise[hi][lo] = pc.Value
	}

	return s, nil
}

// Size returns |D|, the cardinality of the distinction universe.
func (s *System) Size() int { return len(s.distinctions) }

// Distinctions returns the fixed distinction order used for all indexing.
func (s *System) Distinctions() []DistinctionID {
	out := make([]DistinctionID, len(s.distinctions))
	copy(out, s.distinctions)
	return out
}

// Interfaces returns the declared interfaces in declaration order.
func (s *System) Interfaces() []Interface {
	out := make([]Interface, len(s.interfaces))
	copy(out, s.interfaces)
	return out
}

// Interface resolves an interface by id.
func (s *System) Interface(id InterfaceID) (Interface, error) {
	i, ok := s.ifaceIndex[id]
	if !ok {
		return Interface{}, core.NewConfigurationError("interface", fmt.Sprintf("unknown interface %q", id))
	}
	return s.interfaces[i], nil
}

// DistinctionIndex resolves a distinction id to its fixed index.
func (s *System) DistinctionIndex(id DistinctionID) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, core.NewConfigurationError("distinction", fmt.Sprintf("unknown distinction %q", id))
	}
	return i, nil
}

// SubsetFromIDs builds a Subset from distinction ids, rejecting unknowns.
func (s *System) SubsetFromIDs(ids []DistinctionID) (Subset, error) {
	var sub Subset
	for _, id := range ids {
		i, err := s.DistinctionIndex(id)
		if err != nil {
			return EmptySet, err
		}
		sub = sub.With(i)
	}
	return sub, nil
}

// Universe returns the subset containing every distinction.
func (s *System) Universe() Subset {
	if len(s.distinctions) == MaxDistinctions {
		return Subset(^uint64(0))
	}
	return Subset(1<<uint(len(s.distinctions))) - 1
}

// CostTable returns the cost table of an interface.
func (s *System) CostTable(id InterfaceID) (*CostTable, error) {
	i, ok := s.ifaceIndex[id]
	if !ok {
		return nil, core.NewConfigurationError("interface", fmt.Sprintf("unknown interface %q", id))
	}
	return &s.tables[i], nil
}

// Evaluate computes the enforcement functional E_i(S) at one interface:
// the sum of marginal costs over S plus the sum of pairwise interaction
// costs over unordered pairs within S. E_i(empty) = 0, and the value is
// monotone under inclusion because every cost is nonnegative.
func (s *System) Evaluate(iface InterfaceID, sub Subset) (float64, error) {
	ii, ok := s.ifaceIndex[iface]
	if !ok {
		return 0, core.NewConfigurationError("interface", fmt.Sprintf("unknown interface %q", iface))
	}
	if !sub.IsSubsetOf(s.Universe()) {
		return 0, core.NewConfigurationError("subset", "subset indexes outside the distinction universe")
	}
	table := &s.tables[ii]

	members := sub.Members()
	total := 0.0
	for k, i := range members {
		total += table.marginal[i]
		for _, j := range members[k+1:] {
			total += table.pairwise[i][j]
		}
	}
	return total, nil
}

// EvaluateAll computes E_i(S) at every interface, in declaration order.
func (s *System) EvaluateAll(sub Subset) ([]float64, error) {
	out := make([]float64, len(s.interfaces))
	for i, itf := range s.interfaces {
		v, err := s.Evaluate(itf.ID, sub)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
