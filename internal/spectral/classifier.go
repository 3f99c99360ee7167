// Package spectral classifies enforcement systems by the spectrum of their
// interaction matrix. Two systems that differ only by a relabeling of
// distinctions produce the same spectrum, so spectral data is the natural
// relabeling-invariant signature of an interface's cost structure.
package spectral

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"goadmit/domain/core"
	"goadmit/domain/system"
)

// DefaultTolerance is the comparison tolerance used when the caller
// supplies none.
const DefaultTolerance = 1e-9

// Classification is the spectral signature of one interface: the eigenvalue
// spectrum of its interaction matrix in ascending order, the matrix trace,
// and the saturation ratio rho = capacity / trace.
type Classification struct {
	Interface system.InterfaceID `json:"interface"`
	Spectrum  []float64          `json:"spectrum"`
	Trace     float64            `json:"trace"`
	Rho       float64            `json:"rho"`
}

// BuildMatrix assembles the interaction matrix Gamma of one interface:
// Gamma[i][i] = eps(d_i), Gamma[i][j] = eta(d_i, d_j) for i != j. The
// matrix is symmetric because pair costs are unordered.
func BuildMatrix(sys *system.System, iface system.InterfaceID) (*mat.SymDense, error) {
	table, err := sys.CostTable(iface)
	if err != nil {
		return nil, err
	}
	n := sys.Size()
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, table.Marginal(i))
		for j := i + 1; j < n; j++ {
			m.SetSym(i, j, table.Pairwise(i, j))
		}
	}
	return m, nil
}

// Classify computes the spectral signature of one interface. The spectrum
// is real because the interaction matrix is symmetric; it is returned in
// ascending order. A zero trace would make rho undefined and indicates a
// degenerate all-zero cost table, reported as an arithmetic domain error.
func Classify(sys *system.System, iface system.InterfaceID) (Classification, error) {
	itf, err := sys.Interface(iface)
	if err != nil {
		return Classification{}, err
	}
	m, err := BuildMatrix(sys, iface)
	if err != nil {
		return Classification{}, err
	}

	var eig mat.EigenSym
	if !eig.Factorize(m, false) {
		return Classification{}, core.NewArithmeticDomainError("eigendecomposition",
			fmt.Sprintf("factorization failed for interface %q", iface))
	}
	spectrum := eig.Values(nil)
	sort.Float64s(spectrum)

	trace := mat.Trace(m)
	if trace == 0 {
		return Classification{}, core.NewArithmeticDomainError("saturation ratio",
			fmt.Sprintf("interface %q has zero trace", iface))
	}

	return Classification{
		Interface: iface,
		Spectrum:  spectrum,
		Trace:     trace,
		Rho:       itf.Capacity / trace,
	}, nil
}

// ClassifyAll classifies every interface of a system in declaration order.
func ClassifyAll(sys *system.System) ([]Classification, error) {
	itfs := sys.Interfaces()
	out := make([]Classification, len(itfs))
	for i, itf := range itfs {
		c, err := Classify(sys, itf.ID)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Equivalent reports whether two classifications agree within tol: same
// spectrum length, every eigenvalue pair within tol element-wise, and rho
// within tol. tol <= 0 selects DefaultTolerance.
//
// Eigenvalues are compared relatively, |λa−λb| / max(|λa|,|λb|), so the
// verdict is independent of the overall cost scale; magnitudes below 1 fall
// back to an absolute comparison to keep near-zero eigenvalues from
// inflating the deviation. Rho is already scale-free and is compared
// absolutely.
//
// Comparisons landing in the band (tol, 2*tol] are ambiguous: the verdict
// would flip under a modest change of tolerance. Those return a tolerance
// error instead of a bool, leaving the resolution to the caller.
func Equivalent(a, b Classification, tol float64) (bool, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if math.IsInf(tol, 0) || math.IsNaN(tol) {
		return false, core.NewConfigurationError("tolerance", "must be a finite real")
	}
	if len(a.Spectrum) != len(b.Spectrum) {
		return false, nil
	}

	worst := math.Abs(a.Rho - b.Rho)
	for i := range a.Spectrum {
		worst = math.Max(worst, relativeDeviation(a.Spectrum[i], b.Spectrum[i]))
	}
	switch {
	case worst <= tol:
		return true, nil
	case worst <= 2*tol:
		return false, core.NewToleranceAmbiguityError("spectral equivalence", worst, tol)
	default:
		return false, nil
	}
}

// relativeDeviation is |a-b| scaled by the larger magnitude, floored at 1
// so near-zero values compare absolutely.
func relativeDeviation(a, b float64) float64 {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		scale = 1
	}
	return math.Abs(a-b) / scale
}

// ModuliDimension is the dimension n(n+1)/2 of the space of symmetric
// interaction matrices over an n-element universe: n marginal degrees of
// freedom plus C(n,2) pairwise ones.
func ModuliDimension(n int) (int, error) {
	if n < 0 {
		return 0, core.NewConfigurationError("n", "must be nonnegative")
	}
	return n * (n + 1) / 2, nil
}

// ClassicalCodimension is the dimension C(n,2) = n(n-1)/2 of the pairwise
// stratum alone: the codimension of the purely additive (diagonal) locus
// inside the full moduli space.
func ClassicalCodimension(n int) (int, error) {
	if n < 0 {
		return 0, core.NewConfigurationError("n", "must be nonnegative")
	}
	return n * (n - 1) / 2, nil
}
