// Package factorization tests whether enforcement load factorizes across a
// subset boundary. The mixed load of an interior/exterior split is the
// inclusion-exclusion residue of the enforcement functional; it vanishes
// exactly when no pairwise cost couples the two sides.
package factorization

import (
	"math"

	"goadmit/domain/core"
	"goadmit/domain/system"
)

// DefaultTolerance is the factorization tolerance used when the caller
// supplies none.
const DefaultTolerance = 1e-9

// MixedLoad computes the cross-boundary enforcement load at one interface:
// E(A∪B) − E(A) − E(B) + E(A∩B). The subsets need not be disjoint; the
// inclusion-exclusion form cancels the shared part. For the additive plus
// pairwise functional this equals the sum of pairwise costs with one end in
// A\B and the other in B\A, so it is always nonnegative here, but callers
// must not rely on that sign for more general functionals.
func MixedLoad(sys *system.System, iface system.InterfaceID, a, b system.Subset) (float64, error) {
	union, err := sys.Evaluate(iface, a.Union(b))
	if err != nil {
		return 0, err
	}
	ea, err := sys.Evaluate(iface, a)
	if err != nil {
		return 0, err
	}
	eb, err := sys.Evaluate(iface, b)
	if err != nil {
		return 0, err
	}
	both, err := sys.Evaluate(iface, a.Intersect(b))
	if err != nil {
		return 0, err
	}
	return union - ea - eb + both, nil
}

// Test reports whether the load factorizes across the (a, b) split at one
// interface: |mixed load| <= tol. Every tol >= 0 is honored as given - in
// particular tol = 0 is an exact zero test - and a negative tol selects
// DefaultTolerance.
//
// A mixed load in the band (tol, 2*tol] is ambiguous - the verdict would
// flip under a modest change of tolerance - and is reported as a tolerance
// error rather than resolved either way. With tol = 0 the band is empty, so
// the exact test never reports ambiguity.
func Test(sys *system.System, iface system.InterfaceID, a, b system.Subset, tol float64) (bool, error) {
	if tol < 0 {
		tol = DefaultTolerance
	}
	if math.IsInf(tol, 0) || math.IsNaN(tol) {
		return false, core.NewConfigurationError("tolerance", "must be a finite real")
	}

	mixed, err := MixedLoad(sys, iface, a, b)
	if err != nil {
		return false, err
	}
	dev := math.Abs(mixed)
	switch {
	case dev <= tol:
		return true, nil
	case dev <= 2*tol:
		return false, core.NewToleranceAmbiguityError("factorization", dev, tol)
	default:
		return false, nil
	}
}
