package oracle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomWalk_IfElse_AgreesWithExpectedPath(t *testing.T) {
	g := buildIfElse(t)
	rng := rand.New(rand.NewSource(1))

	directions, path, err := RandomWalk(rng, g, 100)
	require.NoError(t, err)

	recomputed, err := ExpectedPath(g, directions)
	require.NoError(t, err)
	assert.Equal(t, recomputed, path)
}

func TestRandomWalk_Loop_TerminatesWithinBound(t *testing.T) {
	g := buildLoop(t)
	rng := rand.New(rand.NewSource(42))

	_, path, err := RandomWalk(rng, g, 500)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestRandomWalk_ExceedingMaxStepsErrors(t *testing.T) {
	g := buildLoop(t)
	rng := rand.New(rand.NewSource(7))

	_, _, err := RandomWalk(rng, g, 0)
	assert.Error(t, err)
}
