// Package testkit provides canonical fixtures for the analysis engines:
// uniform systems, the two-distinction witness scenario, and seeded
// perturbed system families for the genericity probe.
package testkit

import (
	"fmt"
	"math/rand"

	"goadmit/domain/system"
	"goadmit/ports"
)

// DefaultInterface is the interface id used by all generated fixtures.
const DefaultInterface system.InterfaceID = "iface"

// UniformSpec builds an n-distinction, single-interface spec with uniform
// marginal cost eps, uniform pairwise cost eta, and the given capacity.
// Distinctions are named d1..dn.
func UniformSpec(n int, eps, eta, capacity float64) system.Spec {
	spec := system.Spec{
		Interfaces: []system.Interface{{ID: DefaultInterface, Capacity: capacity}},
	}
	for i := 1; i <= n; i++ {
		spec.Distinctions = append(spec.Distinctions, system.DistinctionID(fmt.Sprintf("d%d", i)))
	}
	for i := 0; i < n; i++ {
		spec.MarginalCosts = append(spec.MarginalCosts, system.MarginalCost{
			Interface:   DefaultInterface,
			Distinction: spec.Distinctions[i],
			Value:       eps,
		})
		for j := i + 1; j < n; j++ {
			spec.PairwiseCosts = append(spec.PairwiseCosts, system.PairwiseCost{
				Interface: DefaultInterface,
				Pair:      [2]system.DistinctionID{spec.Distinctions[i], spec.Distinctions[j]},
				Value:     eta,
			})
		}
	}
	return spec
}

// MustUniformSystem builds a uniform system, panicking on invalid
// parameters. Fixture construction failures are programming errors.
func MustUniformSystem(n int, eps, eta, capacity float64) *system.System {
	sys, err := system.New(UniformSpec(n, eps, eta, capacity))
	if err != nil {
		panic(fmt.Sprintf("testkit: uniform system: %v", err))
	}
	return sys
}

// WitnessScenario is the canonical two-distinction non-closure system:
// eps = 1 for both distinctions, eta = 1.5, capacity 3. Each singleton
// costs 1 and is admissible; the pair costs 3.5 and is not, so ({d1},{d2})
// is the unique minimal witness.
func WitnessScenario() *system.System {
	return MustUniformSystem(2, 1, 1.5, 3)
}

// seededRNG adapts math/rand to the ports.RNG interface.
type seededRNG struct {
	r *rand.Rand
}

// SeededRNG returns a reproducible randomness source.
func SeededRNG(seed int64) ports.RNG {
	return &seededRNG{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
func (s *seededRNG) Intn(n int) int   { return s.r.Intn(n) }
