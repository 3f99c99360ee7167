package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Search.MaxSetSize)
	assert.Equal(t, 250000, cfg.Search.MaxCandidates)
	assert.Equal(t, 1000, cfg.Search.ProbeSamples)
	assert.InDelta(t, 1e-9, cfg.Search.Tolerance, 0)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GOADMIT_PORT", "9090")
	t.Setenv("GOADMIT_MAX_SET_SIZE", "6")
	t.Setenv("GOADMIT_TOLERANCE", "1e-6")
	t.Setenv("GOADMIT_SYSTEM_FILE", "system.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 6, cfg.Search.MaxSetSize)
	assert.InDelta(t, 1e-6, cfg.Search.Tolerance, 0)
	assert.Equal(t, "system.json", cfg.Paths.SystemFile)
}

func TestLoadRejectsInvalidBudgets(t *testing.T) {
	t.Setenv("GOADMIT_MAX_SET_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}
