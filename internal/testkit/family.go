package testkit

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"goadmit/domain/core"
	"goadmit/domain/system"
	"goadmit/ports"
)

// PerturbedFamily generates probe samples by perturbing the cost table of a
// base spec with Gaussian noise and drawing a random interior/exterior
// split. Sample i is a pure function of (Seed, i): draws come from a
// per-index source, so parallel generation is reproducible regardless of
// evaluation order.
type PerturbedFamily struct {
	Base  system.Spec
	Iface system.InterfaceID
	Sigma float64 // noise standard deviation relative to each base cost
	Seed  int64
}

// NewPerturbedFamily builds a family around a base spec. sigma <= 0 is a
// configuration error: an unperturbed family degenerates to a single point.
func NewPerturbedFamily(base system.Spec, iface system.InterfaceID, sigma float64, seed int64) (*PerturbedFamily, error) {
	if sigma <= 0 {
		return nil, core.NewConfigurationError("sigma", fmt.Sprintf("must be positive, got %v", sigma))
	}
	if len(base.Distinctions) < 2 {
		return nil, core.NewConfigurationError("base", "family needs at least two distinctions")
	}
	return &PerturbedFamily{Base: base, Iface: iface, Sigma: sigma, Seed: seed}, nil
}

// Generate builds the i-th sample of the family.
func (f *PerturbedFamily) Generate(i int) (ports.Sample, error) {
	rng := rand.New(rand.NewSource(f.Seed + int64(i)*0x9E3779B9))

	spec := system.Spec{
		Distinctions:  f.Base.Distinctions,
		Interfaces:    f.Base.Interfaces,
		MarginalCosts: make([]system.MarginalCost, len(f.Base.MarginalCosts)),
		PairwiseCosts: make([]system.PairwiseCost, len(f.Base.PairwiseCosts)),
	}
	for j, mc := range f.Base.MarginalCosts {
		mc.Value = f.perturb(rng, mc.Value)
		spec.MarginalCosts[j] = mc
	}
	for j, pc := range f.Base.PairwiseCosts {
		pc.Value = f.perturb(rng, pc.Value)
		spec.PairwiseCosts[j] = pc
	}

	sys, err := system.New(spec)
	if err != nil {
		return ports.Sample{}, err
	}

	interior, exterior := randomSplit(rng, sys.Size())
	return ports.Sample{
		Sys:      sys,
		Iface:    f.Iface,
		Interior: interior,
		Exterior: exterior,
	}, nil
}

// perturb applies multiplicative Gaussian noise via inverse-CDF sampling,
// clamped at zero to keep the spec valid.
func (f *PerturbedFamily) perturb(rng *rand.Rand, base float64) float64 {
	normal := distuv.Normal{Mu: 1, Sigma: f.Sigma}
	v := base * normal.Quantile(rng.Float64())
	if v < 0 {
		return 0
	}
	return v
}

// randomSplit draws two disjoint nonempty subsets of an n-element universe.
func randomSplit(rng *rand.Rand, n int) (system.Subset, system.Subset) {
	for {
		var interior, exterior system.Subset
		for i := 0; i < n; i++ {
			switch rng.Intn(3) {
			case 0:
				interior = interior.With(i)
			case 1:
				exterior = exterior.With(i)
			}
		}
		if !interior.IsEmpty() && !exterior.IsEmpty() {
			return interior, exterior
		}
	}
}
