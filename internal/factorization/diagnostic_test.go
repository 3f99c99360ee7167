package factorization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goadmit/domain/core"
	"goadmit/domain/system"
	"goadmit/internal/testkit"
)

func TestMixedLoadIsCrossPairSum(t *testing.T) {
	sys := testkit.MustUniformSystem(4, 1, 0.5, 100)

	// Interior {d1,d2}, exterior {d3,d4}: four cross pairs at 0.5 each.
	mixed, err := MixedLoad(sys, testkit.DefaultInterface, system.SubsetOf(0, 1), system.SubsetOf(2, 3))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, mixed, 1e-12)
}

func TestMixedLoadOverlappingSubsets(t *testing.T) {
	sys := testkit.MustUniformSystem(3, 1, 0.5, 100)

	// Overlap on d2: only the (d1,d3) pair crosses the boundary.
	mixed, err := MixedLoad(sys, testkit.DefaultInterface, system.SubsetOf(0, 1), system.SubsetOf(1, 2))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mixed, 1e-12)
}

func TestZeroEtaAlwaysFactorizes(t *testing.T) {
	sys := testkit.MustUniformSystem(5, 2, 0, 100)

	ok, err := Test(sys, testkit.DefaultInterface, system.SubsetOf(0, 1), system.SubsetOf(2, 3, 4), 1e-9)
	require.NoError(t, err)
	assert.True(t, ok, "purely additive load factorizes across every split")
}

func TestNonzeroEtaDoesNotFactorize(t *testing.T) {
	sys := testkit.WitnessScenario()

	ok, err := Test(sys, testkit.DefaultInterface, system.SubsetOf(0), system.SubsetOf(1), 1e-9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToleranceBandIsAmbiguous(t *testing.T) {
	// Mixed load of exactly 1.5e-9 with tolerance 1e-9 lands in (tol, 2*tol].
	sys := testkit.MustUniformSystem(2, 1, 1.5e-9, 100)

	_, err := Test(sys, testkit.DefaultInterface, system.SubsetOf(0), system.SubsetOf(1), 1e-9)
	assert.ErrorIs(t, err, core.ErrNumericTolerance)
}

func TestNegativeToleranceSelectsDefault(t *testing.T) {
	// Mixed load of exactly 1e-12 sits under the 1e-9 default.
	sys := testkit.MustUniformSystem(2, 1, 1e-12, 100)

	ok, err := Test(sys, testkit.DefaultInterface, system.SubsetOf(0), system.SubsetOf(1), -1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestZeroToleranceIsExact(t *testing.T) {
	// A residual of 1e-12 passes the default tolerance but must fail an
	// exact test, with no ambiguity band in the way.
	coupled := testkit.MustUniformSystem(2, 1, 1e-12, 100)
	ok, err := Test(coupled, testkit.DefaultInterface, system.SubsetOf(0), system.SubsetOf(1), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	// An exactly zero mixed load still factorizes at tolerance 0.
	additive := testkit.MustUniformSystem(4, 2, 0, 100)
	ok, err = Test(additive, testkit.DefaultInterface, system.SubsetOf(0, 1), system.SubsetOf(2, 3), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProbeZeroEtaFamilyFactorizes(t *testing.T) {
	// Perturbation is multiplicative, so a zero-eta base stays zero-eta:
	// every sampled split must factorize.
	family, err := testkit.NewPerturbedFamily(
		testkit.UniformSpec(4, 1, 0, 100), testkit.DefaultInterface, 0.1, 7)
	require.NoError(t, err)

	res, err := Probe(context.Background(), family, ProbeConfig{Samples: 50, Tolerance: -1, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Samples)
	assert.Equal(t, 50, res.Factorizing)
	assert.InDelta(t, 1.0, res.Fraction, 1e-12)
	assert.Zero(t, res.StdError)
	assert.NotEmpty(t, res.ConfidenceNote)
}

func TestProbeCoupledFamilyDoesNotFactorize(t *testing.T) {
	family, err := testkit.NewPerturbedFamily(
		testkit.UniformSpec(4, 1, 1, 100), testkit.DefaultInterface, 0.1, 7)
	require.NoError(t, err)

	res, err := Probe(context.Background(), family, ProbeConfig{Samples: 50, Workers: 4})
	require.NoError(t, err)
	assert.Zero(t, res.Factorizing, "uniform eta=1 splits never factorize under small noise")
	assert.Zero(t, res.Fraction)
}

func TestProbeDeterministicAcrossWorkerCounts(t *testing.T) {
	spec := testkit.UniformSpec(4, 1, 1, 100)

	run := func(workers int) ProbeResult {
		family, err := testkit.NewPerturbedFamily(spec, testkit.DefaultInterface, 0.2, 99)
		require.NoError(t, err)
		res, err := Probe(context.Background(), family, ProbeConfig{Samples: 40, Workers: workers})
		require.NoError(t, err)
		return res
	}

	base := run(1)
	assert.Equal(t, base, run(4))
	assert.Equal(t, base, run(8))
}

func TestProbeRejectsBadConfig(t *testing.T) {
	family, err := testkit.NewPerturbedFamily(
		testkit.UniformSpec(3, 1, 1, 100), testkit.DefaultInterface, 0.1, 1)
	require.NoError(t, err)

	_, err = Probe(context.Background(), family, ProbeConfig{Samples: 0})
	assert.True(t, core.IsConfigurationError(err))
}
