package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorDefaults(t *testing.T) {
	assert.LessOrEqual(t, DefaultMinDepth, DefaultMaxDepth)
	assert.LessOrEqual(t, DefaultMinSwitchArity, DefaultMaxSwitchArity)
	assert.GreaterOrEqual(t, DefaultMinSwitchArity, 2, "a switch needs at least one case plus a default")
	assert.InDelta(t, 0.15, DefaultMergeShareProbability, 1e-9)
	assert.InDelta(t, 0.2, DefaultBreakContinueProbability, 1e-9)
}

func TestBatchDefaults(t *testing.T) {
	assert.Equal(t, 5, DefaultBatchTimeBudgetSeconds)
	assert.Greater(t, DefaultBatchWorkers, 0)
}

func TestHarnessDefaults(t *testing.T) {
	assert.Equal(t, 0, DefaultOptLevel)
	assert.NotEmpty(t, DefaultOutputFolder)
	assert.Greater(t, DefaultRunnerTimeoutSeconds, 0)
}
