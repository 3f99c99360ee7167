package witness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goadmit/domain/core"
	"goadmit/domain/system"
	"goadmit/internal/testkit"
)

func TestIsAdmissible(t *testing.T) {
	sys := testkit.WitnessScenario() // eps=1 both, eta=1.5, capacity 3

	ok, err := IsAdmissible(sys, system.SubsetOf(0))
	require.NoError(t, err)
	assert.True(t, ok, "singleton costs 1, within capacity 3")

	ok, err = IsAdmissible(sys, system.SubsetOf(0, 1))
	require.NoError(t, err)
	assert.False(t, ok, "pair costs 3.5, over capacity 3")

	ok, err = IsAdmissible(sys, system.EmptySet)
	require.NoError(t, err)
	assert.True(t, ok, "empty set costs 0")
}

func TestFindReturnsCanonicalWitness(t *testing.T) {
	sys := testkit.WitnessScenario()

	w, stats, err := Find(context.Background(), sys, Budget{MaxSetSize: 1})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.Equal(t, system.SubsetOf(0), w.S)
	assert.Equal(t, system.SubsetOf(1), w.T)
	assert.Equal(t, testkit.DefaultInterface, w.Violated)
	assert.InDelta(t, 3.5, w.UnionCost, 1e-12)
	assert.InDelta(t, 3.0, w.Capacity, 1e-12)
	assert.Equal(t, []system.DistinctionID{"d1"}, w.S.Labels(sys))
	assert.Equal(t, []system.DistinctionID{"d2"}, w.T.Labels(sys))
	assert.Greater(t, stats.Candidates, 0)
}

func TestFindNoWitnessAfterExhaustiveSearch(t *testing.T) {
	// Generous capacity: every union stays admissible.
	sys := testkit.MustUniformSystem(3, 1, 0, 100)

	w, stats, err := Find(context.Background(), sys, Budget{MaxSetSize: 2})
	assert.Nil(t, w)
	assert.ErrorIs(t, err, core.ErrNoWitness)
	assert.True(t, stats.Exhausted)
	assert.Equal(t, 6, stats.Candidates, "n=3, maxSize=2 enumerates 6 pairs")
}

func TestFindBudgetExceededIsNotNoWitness(t *testing.T) {
	sys := testkit.MustUniformSystem(3, 1, 0, 100)

	w, stats, err := Find(context.Background(), sys, Budget{MaxSetSize: 2, MaxCandidates: 3})
	assert.Nil(t, w)
	assert.ErrorIs(t, err, core.ErrSearchBudgetExceeded)
	assert.False(t, core.IsNegativeResult(err))
	assert.False(t, stats.Exhausted)
	assert.Equal(t, 3, stats.Candidates)
}

func TestFindRejectsNonPositiveMaxSetSize(t *testing.T) {
	sys := testkit.WitnessScenario()

	_, _, err := Find(context.Background(), sys, Budget{})
	assert.True(t, core.IsConfigurationError(err))
}

func TestFindHonorsContextCancellation(t *testing.T) {
	sys := testkit.MustUniformSystem(3, 1, 0, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Find(ctx, sys, Budget{MaxSetSize: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindParallelMatchesSequential(t *testing.T) {
	// Capacity 2 makes every singleton pair a witness, so a racy search
	// could surface any of them. The ordered collector must still return
	// the first one.
	sys := testkit.MustUniformSystem(6, 1, 1, 2)

	sequential, _, err := Find(context.Background(), sys, Budget{MaxSetSize: 2, Workers: 1})
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		parallel, _, err := Find(context.Background(), sys, Budget{MaxSetSize: 2, Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel, "workers=%d", workers)
	}
}

func TestIsWitnessRequiresDisjointNonempty(t *testing.T) {
	sys := testkit.WitnessScenario()

	ok, err := IsWitness(sys, system.EmptySet, system.SubsetOf(1))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsWitness(sys, system.SubsetOf(0), system.SubsetOf(0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsWitness(sys, system.SubsetOf(0), system.SubsetOf(1))
	require.NoError(t, err)
	assert.True(t, ok)
}

// shrinkableSystem has a witness with a removable element: only the (a, b)
// pair carries interaction cost, so c is dead weight on the T side.
func shrinkableSystem(t *testing.T) *system.System {
	t.Helper()
	sys, err := system.New(system.Spec{
		Distinctions: []system.DistinctionID{"a", "b", "c"},
		Interfaces:   []system.Interface{{ID: "main", Capacity: 3}},
		MarginalCosts: []system.MarginalCost{
			{Interface: "main", Distinction: "a", Value: 1},
			{Interface: "main", Distinction: "b", Value: 1},
			{Interface: "main", Distinction: "c", Value: 1},
		},
		PairwiseCosts: []system.PairwiseCost{
			{Interface: "main", Pair: [2]system.DistinctionID{"a", "b"}, Value: 5},
		},
	})
	require.NoError(t, err)
	return sys
}

func TestMinimizeDropsRedundantElements(t *testing.T) {
	sys := shrinkableSystem(t)

	big := Witness{S: system.SubsetOf(0), T: system.SubsetOf(1, 2)}
	ok, err := IsWitness(sys, big.S, big.T)
	require.NoError(t, err)
	require.True(t, ok)

	min, err := Minimize(sys, big)
	require.NoError(t, err)
	assert.Equal(t, system.SubsetOf(0), min.S)
	assert.Equal(t, system.SubsetOf(1), min.T, "c carries no interaction and must be dropped")
}

func TestMinimizeIdempotent(t *testing.T) {
	sys := shrinkableSystem(t)

	once, err := Minimize(sys, Witness{S: system.SubsetOf(0), T: system.SubsetOf(1, 2)})
	require.NoError(t, err)
	twice, err := Minimize(sys, *once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestMinimizeRejectsNonWitness(t *testing.T) {
	sys := testkit.MustUniformSystem(3, 1, 0, 100)

	_, err := Minimize(sys, Witness{S: system.SubsetOf(0), T: system.SubsetOf(1)})
	assert.True(t, core.IsConfigurationError(err))
}

func TestEnumerateOrderAndUniqueness(t *testing.T) {
	type pair struct{ s, t system.Subset }
	var got []pair
	enumerate(4, 2, func(s, t system.Subset) bool {
		got = append(got, pair{s, t})
		return true
	})

	seen := make(map[pair]bool)
	prevTotal := 0
	for _, p := range got {
		require.False(t, p.s.IsEmpty())
		require.False(t, p.t.IsEmpty())
		require.True(t, p.s.Disjoint(p.t))
		require.LessOrEqual(t, p.s.Size(), p.t.Size())

		// Each unordered pair appears exactly once, in either orientation.
		require.False(t, seen[p] || seen[pair{p.t, p.s}], "duplicate pair %v/%v", p.s, p.t)
		seen[p] = true

		// Total size never decreases.
		require.GreaterOrEqual(t, p.s.Size()+p.t.Size(), prevTotal)
		prevTotal = p.s.Size() + p.t.Size()
	}

	// First candidate is the smallest lexicographic singleton pair.
	require.NotEmpty(t, got)
	assert.Equal(t, pair{system.SubsetOf(0), system.SubsetOf(1)}, got[0])
}
