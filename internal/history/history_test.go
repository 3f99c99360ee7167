package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goadmit/domain/system"
	"goadmit/internal/testkit"
)

func TestTransitionCostSymmetricAndNonnegative(t *testing.T) {
	sys := testkit.MustUniformSystem(4, 1, 0.5, 100)

	a := system.SubsetOf(0)
	b := system.SubsetOf(0, 1, 2)

	ab, err := TransitionCost(sys, a, b)
	require.NoError(t, err)
	ba, err := TransitionCost(sys, b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-12)
	assert.Greater(t, ab, 0.0)

	// E({0}) = 1, E({0,1,2}) = 3 + 3*0.5 = 4.5.
	assert.InDelta(t, 3.5, ab, 1e-12)

	same, err := TransitionCost(sys, b, b)
	require.NoError(t, err)
	assert.Zero(t, same)
}

func TestHistoryActionIsMonotone(t *testing.T) {
	sys := testkit.MustUniformSystem(4, 1, 0.5, 100)

	h, err := New(sys, system.EmptySet)
	require.NoError(t, err)
	assert.Zero(t, h.Action())
	assert.Zero(t, h.Steps())

	trajectory := []system.Subset{
		system.SubsetOf(0),
		system.SubsetOf(0, 1),
		system.SubsetOf(1),
		system.SubsetOf(1), // no-op step costs nothing
	}
	prev := 0.0
	for _, next := range trajectory {
		step, err := h.Append(next)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, step, 0.0)
		assert.GreaterOrEqual(t, h.Action(), prev)
		prev = h.Action()
	}

	assert.Equal(t, 4, h.Steps())
	assert.Equal(t, system.SubsetOf(1), h.Current())
	assert.Len(t, h.States(), 5)
}

func TestHistoryRejectsOutOfUniverseStates(t *testing.T) {
	sys := testkit.MustUniformSystem(2, 1, 0, 10)

	_, err := New(sys, system.SubsetOf(5))
	assert.Error(t, err)

	h, err := New(sys, system.EmptySet)
	require.NoError(t, err)
	_, err = h.Append(system.SubsetOf(5))
	assert.Error(t, err)
	assert.Zero(t, h.Steps(), "failed append must not advance the history")
}

func TestMinimumActionQuantum(t *testing.T) {
	sys, err := system.New(system.Spec{
		Distinctions: []system.DistinctionID{"a", "b", "c"},
		Interfaces:   []system.Interface{{ID: "main", Capacity: 10}},
		MarginalCosts: []system.MarginalCost{
			{Interface: "main", Distinction: "a", Value: 2},
			{Interface: "main", Distinction: "b", Value: 0.25},
			// c defaults to zero and must not count as the quantum.
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, MinimumActionQuantum(sys), 1e-12)
}

func TestMinimumActionQuantumAllZero(t *testing.T) {
	sys, err := system.New(system.Spec{
		Distinctions: []system.DistinctionID{"a"},
		Interfaces:   []system.Interface{{ID: "main", Capacity: 1}},
	})
	require.NoError(t, err)
	assert.Zero(t, MinimumActionQuantum(sys))
}
