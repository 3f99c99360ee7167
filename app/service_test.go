package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goadmit/domain/core"
	"goadmit/domain/system"
	"goadmit/internal/bounds"
	"goadmit/internal/testkit"
	"goadmit/internal/witness"
)

func newTestService(repo *testkit.InMemoryRunRepository) *Service {
	if repo == nil {
		return NewService(nil, nil, nil)
	}
	return NewService(nil, repo, nil)
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		negative bool
		want     int
	}{
		{"success", nil, false, ExitSuccess},
		{"negative result", nil, true, ExitNegative},
		{"no witness", core.ErrNoWitness, false, ExitNegative},
		{"config error", core.NewConfigurationError("field", "bad"), false, ExitConfigError},
		{"budget exceeded", core.ErrSearchBudgetExceeded, false, ExitBudgetExhaust},
		{"arithmetic domain", core.ErrArithmeticDomain, false, ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err, tt.negative))
		})
	}
}

func TestCheckAdmissibleRecordsRun(t *testing.T) {
	repo := testkit.NewInMemoryRunRepository()
	svc := newTestService(repo)
	sys := testkit.WitnessScenario()

	result, err := svc.CheckAdmissible(context.Background(), sys, []system.DistinctionID{"d1"})
	require.NoError(t, err)
	assert.True(t, result.Admissible)
	require.Len(t, result.Loads, 1)
	assert.InDelta(t, 1.0, result.Loads[0].Load, 1e-12)

	result, err = svc.CheckAdmissible(context.Background(), sys, []system.DistinctionID{"d1", "d2"})
	require.NoError(t, err)
	assert.False(t, result.Admissible)

	assert.Equal(t, 2, repo.Len())

	runs, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "check-admissible", runs[0].Kind)
}

func TestFindWitnessReturnsMinimizedLabels(t *testing.T) {
	svc := newTestService(nil)
	sys := testkit.WitnessScenario()

	result, err := svc.FindWitness(context.Background(), sys, witness.Budget{MaxSetSize: 1})
	require.NoError(t, err)
	assert.Equal(t, []system.DistinctionID{"d1"}, result.S)
	assert.Equal(t, []system.DistinctionID{"d2"}, result.T)
	assert.Equal(t, testkit.DefaultInterface, result.Violated)
}

func TestFindWitnessNegativeStatusRecorded(t *testing.T) {
	repo := testkit.NewInMemoryRunRepository()
	svc := newTestService(repo)
	sys := testkit.MustUniformSystem(3, 1, 0, 100)

	_, err := svc.FindWitness(context.Background(), sys, witness.Budget{MaxSetSize: 2})
	assert.ErrorIs(t, err, core.ErrNoWitness)

	runs, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.RunStatusNegative, runs[0].Status)
}

func TestComputeNmax(t *testing.T) {
	svc := newTestService(nil)

	result, err := svc.ComputeNmax(context.Background(), bounds.UniformCosts{Epsilon: 1, Eta: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Nmax)
	assert.InDelta(t, 10.0, result.Bound, 1e-12)
	assert.Zero(t, result.Headroom)
}

func TestClassifyThroughService(t *testing.T) {
	svc := newTestService(nil)
	sys := testkit.WitnessScenario()

	cls, err := svc.Classify(context.Background(), sys)
	require.NoError(t, err)
	require.Len(t, cls, 1)
	assert.InDelta(t, 1.5, cls[0].Rho, 1e-9)
}

func TestTestFactorizationThroughService(t *testing.T) {
	svc := newTestService(nil)
	sys := testkit.MustUniformSystem(3, 1, 0, 100)

	result, err := svc.TestFactorization(context.Background(), sys, testkit.DefaultInterface,
		[]system.DistinctionID{"d1"}, []system.DistinctionID{"d2", "d3"}, 0)
	require.NoError(t, err)
	assert.True(t, result.Factorizes)
	assert.Zero(t, result.MixedLoad)
}

func TestGetRunWithoutRepository(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}
