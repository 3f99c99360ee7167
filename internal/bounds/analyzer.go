// Package bounds computes closed-form capacity bounds for enforcement
// systems under a uniform-cost assumption: a single marginal cost eps and a
// single pairwise cost eta stand in for the whole cost table. Uniformity is
// a modeling choice, not a system invariant, so the uniform costs are an
// explicit input - either literal or derived once via DeriveUniform - and
// are never inferred silently.
package bounds

import (
	"fmt"
	"math"

	"goadmit/domain/core"
	"goadmit/domain/system"
)

// UniformCosts carries the uniform-bound parameters: eps is the marginal
// cost per distinction, eta the pairwise interaction cost.
type UniformCosts struct {
	Epsilon float64
	Eta     float64
}

// Validate rejects non-positive or non-finite eps and negative or
// non-finite eta. Negative eta is excluded by the interaction-functional
// contract, not merely by numeric hygiene.
func (u UniformCosts) Validate() error {
	if !(u.Epsilon > 0) || math.IsInf(u.Epsilon, 0) || math.IsNaN(u.Epsilon) {
		return core.NewConfigurationError("epsilon",
			fmt.Sprintf("must be a strictly positive finite real, got %v", u.Epsilon))
	}
	if u.Eta < 0 || math.IsInf(u.Eta, 0) || math.IsNaN(u.Eta) {
		return core.NewConfigurationError("eta",
			fmt.Sprintf("must be a nonnegative finite real, got %v", u.Eta))
	}
	return nil
}

// DeriveUniform extracts uniform costs from one interface of a system:
// eps = min over distinctions of the marginal cost, eta = min over
// unordered pairs of the pairwise cost. Using the minima keeps LowerBound a
// true lower bound for every subset of the given cardinality.
func DeriveUniform(sys *system.System, iface system.InterfaceID) (UniformCosts, error) {
	table, err := sys.CostTable(iface)
	if err != nil {
		return UniformCosts{}, err
	}
	n := sys.Size()

	eps := math.Inf(1)
	for i := 0; i < n; i++ {
		eps = math.Min(eps, table.Marginal(i))
	}
	eta := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			eta = math.Min(eta, table.Pairwise(i, j))
		}
	}
	if n < 2 {
		eta = 0
	}
	u := UniformCosts{Epsilon: eps, Eta: eta}
	if err := u.Validate(); err != nil {
		return UniformCosts{}, err
	}
	return u, nil
}

// LowerBound is the uniform-cost value of any n-element subset:
// n*eps + C(n,2)*eta. It grows quadratically in n whenever eta > 0.
func LowerBound(n int, u UniformCosts) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*u.Epsilon + float64(n*(n-1))/2*u.Eta
}

// MaxCardinality returns the largest n with LowerBound(n) <= c: the maximum
// admissible cardinality under the uniform bound. For eta > 0 it solves the
// quadratic eta/2*n^2 + (eps-eta/2)*n - c = 0 and floors the positive root;
// eta = 0 degenerates to floor(c/eps). The floored root is verified against
// LowerBound so a one-ulp sqrt error cannot shift the result.
func MaxCardinality(u UniformCosts, c float64) (int, error) {
	if err := u.Validate(); err != nil {
		return 0, err
	}
	if !(c > 0) || math.IsInf(c, 0) || math.IsNaN(c) {
		return 0, core.NewConfigurationError("capacity",
			fmt.Sprintf("must be a strictly positive finite real, got %v", c))
	}

	var n int
	if u.Eta == 0 {
		n = int(math.Floor(c / u.Epsilon))
	} else {
		b := u.Epsilon - u.Eta/2
		disc := b*b + 2*u.Eta*c
		if disc < 0 {
			return 0, core.NewArithmeticDomainError("max cardinality",
				fmt.Sprintf("negative discriminant %v", disc))
		}
		n = int(math.Floor((-b + math.Sqrt(disc)) / u.Eta))
	}
	if n < 0 {
		n = 0
	}
	for LowerBound(n+1, u) <= c {
		n++
	}
	for n > 0 && LowerBound(n, u) > c {
		n--
	}
	return n, nil
}

// InSaturationWindow reports whether capacity c admits exactly n elements
// under the uniform bound: LowerBound(n) <= c < LowerBound(n+1).
func InSaturationWindow(u UniformCosts, c float64, n int) (bool, error) {
	if err := u.Validate(); err != nil {
		return false, err
	}
	if n < 0 {
		return false, core.NewConfigurationError("n", "must be nonnegative")
	}
	return LowerBound(n, u) <= c && c < LowerBound(n+1, u), nil
}

// Headroom is the remaining capacity after enforcing n elements.
func Headroom(u UniformCosts, c float64, n int) float64 {
	return c - LowerBound(n, u)
}

// EtaShare is the fraction of the uniform-bound cost contributed by the
// pairwise term. It tends to 1 as n grows whenever eta > 0.
func EtaShare(u UniformCosts, n int) float64 {
	total := LowerBound(n, u)
	if total <= 0 {
		return 0
	}
	return float64(n*(n-1)) / 2 * u.Eta / total
}

// RegimePoint describes one cardinality in a regime scan.
type RegimePoint struct {
	N          int     `json:"n"`
	Cost       float64 `json:"cost"`
	Headroom   float64 `json:"headroom"`
	Kappa      float64 `json:"kappa"`
	EtaShare   float64 `json:"etaShare"`
	Admissible bool    `json:"admissible"`
}

// RegimeReport partitions cardinalities 1..maxN into composable and
// saturating ranges under the uniform bound.
type RegimeReport struct {
	Points        []RegimePoint `json:"points"`
	Composable    []int         `json:"composable"`
	Saturating    []int         `json:"saturating"`
	MaxComposable int           `json:"maxComposable"`
}

// RegimeScan sweeps cardinalities 1..maxN and reports where the uniform
// bound stays within capacity. Kappa is headroom normalized by capacity;
// positive kappa means the cardinality composes, non-positive means it
// saturates. Because LowerBound is monotone in n the composable range is
// always a prefix.
func RegimeScan(u UniformCosts, c float64, maxN int) (RegimeReport, error) {
	if err := u.Validate(); err != nil {
		return RegimeReport{}, err
	}
	if maxN < 1 {
		return RegimeReport{}, core.NewConfigurationError("maxN", "must be at least 1")
	}

	report := RegimeReport{Points: make([]RegimePoint, 0, maxN)}
	for n := 1; n <= maxN; n++ {
		h := Headroom(u, c, n)
		p := RegimePoint{
			N:          n,
			Cost:       LowerBound(n, u),
			Headroom:   h,
			Kappa:      h / c,
			EtaShare:   EtaShare(u, n),
			Admissible: h >= 0,
		}
		report.Points = append(report.Points, p)
		if p.Admissible {
			report.Composable = append(report.Composable, n)
			report.MaxComposable = n
		} else {
			report.Saturating = append(report.Saturating, n)
		}
	}
	return report, nil
}
