package bounds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goadmit/domain/core"
	"goadmit/internal/testkit"
)

func TestLowerBoundTriangularGrowth(t *testing.T) {
	u := UniformCosts{Epsilon: 1, Eta: 1}

	// n + C(n,2): the triangular numbers.
	want := []float64{1, 3, 6, 10, 15}
	for n := 1; n <= 5; n++ {
		assert.InDelta(t, want[n-1], LowerBound(n, u), 1e-12, "n=%d", n)
	}
	assert.Zero(t, LowerBound(0, u))
	assert.Zero(t, LowerBound(-3, u))
}

func TestMaxCardinalityQuadraticRoot(t *testing.T) {
	nmax, err := MaxCardinality(UniformCosts{Epsilon: 1, Eta: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, nmax, "E(4)=10 fits exactly, E(5)=15 does not")
}

func TestMaxCardinalityZeroEta(t *testing.T) {
	nmax, err := MaxCardinality(UniformCosts{Epsilon: 2, Eta: 0}, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, nmax)
}

func TestMaxCardinalityFloorVerified(t *testing.T) {
	// Capacities sitting exactly on a bound are the float-sensitive cases:
	// the verified floor must land on the bound, never one off.
	for n := 1; n <= 30; n++ {
		u := UniformCosts{Epsilon: 1, Eta: 1}
		got, err := MaxCardinality(u, LowerBound(n, u))
		require.NoError(t, err)
		assert.Equal(t, n, got, "capacity exactly E(%d)", n)

		got, err = MaxCardinality(u, LowerBound(n, u)+0.5)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestMaxCardinalityRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name string
		u    UniformCosts
		c    float64
	}{
		{"zero epsilon", UniformCosts{Epsilon: 0, Eta: 1}, 10},
		{"negative epsilon", UniformCosts{Epsilon: -1, Eta: 1}, 10},
		{"negative eta", UniformCosts{Epsilon: 1, Eta: -1}, 10},
		{"zero capacity", UniformCosts{Epsilon: 1, Eta: 1}, 0},
		{"negative capacity", UniformCosts{Epsilon: 1, Eta: 1}, -5},
		{"nan capacity", UniformCosts{Epsilon: 1, Eta: 1}, math.NaN()},
		{"inf epsilon", UniformCosts{Epsilon: math.Inf(1), Eta: 1}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MaxCardinality(tt.u, tt.c)
			assert.True(t, core.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestInSaturationWindow(t *testing.T) {
	u := UniformCosts{Epsilon: 1, Eta: 1}

	// E(3)=6 <= 8 < E(4)=10: capacity 8 saturates at exactly 3 elements.
	in, err := InSaturationWindow(u, 8, 3)
	require.NoError(t, err)
	assert.True(t, in)

	in, err = InSaturationWindow(u, 8, 4)
	require.NoError(t, err)
	assert.False(t, in)

	in, err = InSaturationWindow(u, 8, 2)
	require.NoError(t, err)
	assert.False(t, in)

	_, err = InSaturationWindow(u, 8, -1)
	assert.True(t, core.IsConfigurationError(err))
}

func TestSaturationWindowConsistentWithMaxCardinality(t *testing.T) {
	u := UniformCosts{Epsilon: 0.5, Eta: 2}
	for _, c := range []float64{0.5, 1, 3, 7.25, 40, 100} {
		nmax, err := MaxCardinality(u, c)
		require.NoError(t, err)
		in, err := InSaturationWindow(u, c, nmax)
		require.NoError(t, err)
		assert.True(t, in, "capacity %v saturates at nmax=%d", c, nmax)
	}
}

func TestDeriveUniformTakesMinima(t *testing.T) {
	sys := testkit.MustUniformSystem(4, 2, 0.5, 10)

	u, err := DeriveUniform(sys, testkit.DefaultInterface)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, u.Epsilon, 1e-12)
	assert.InDelta(t, 0.5, u.Eta, 1e-12)
}

func TestDeriveUniformSingleDistinction(t *testing.T) {
	sys := testkit.MustUniformSystem(1, 3, 0, 10)

	u, err := DeriveUniform(sys, testkit.DefaultInterface)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, u.Epsilon, 1e-12)
	assert.Zero(t, u.Eta)
}

func TestEtaShareGrowsTowardOne(t *testing.T) {
	u := UniformCosts{Epsilon: 1, Eta: 1}
	prev := EtaShare(u, 1)
	assert.Zero(t, prev, "singletons carry no pairwise cost")
	for n := 2; n <= 40; n++ {
		share := EtaShare(u, n)
		assert.Greater(t, share, prev, "n=%d", n)
		assert.Less(t, share, 1.0)
		prev = share
	}
}

func TestRegimeScanComposablePrefix(t *testing.T) {
	u := UniformCosts{Epsilon: 1, Eta: 1}
	rep, err := RegimeScan(u, 8, 6)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, rep.Composable)
	assert.Equal(t, []int{4, 5, 6}, rep.Saturating)
	assert.Equal(t, 3, rep.MaxComposable)
	require.Len(t, rep.Points, 6)

	for _, p := range rep.Points {
		assert.InDelta(t, (8-p.Cost)/8, p.Kappa, 1e-12)
		assert.Equal(t, p.Headroom >= 0, p.Admissible)
	}

	_, err = RegimeScan(u, 8, 0)
	assert.True(t, core.IsConfigurationError(err))
}
