package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flesh-fuzz/flesh/internal/cfg"
)

// buildIfElse: entry(header) -> {false=2, true=3} -> merge(4) -> exit(5).
func buildIfElse(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.NewGraph()
	entry, _ := g.AddBlock() // 1
	thenB, _ := g.AddBlock() // 2
	elseB, _ := g.AddBlock() // 3
	merge, _ := g.AddBlock() // 4
	exit, _ := g.AddBlock()  // 5

	require.NoError(t, g.SetAttr(entry, cfg.AttrSelectionHeader))
	require.NoError(t, g.AddEdge(entry, thenB))
	require.NoError(t, g.AddEdge(entry, elseB))
	require.NoError(t, g.AddEdge(thenB, merge))
	require.NoError(t, g.AddEdge(elseB, merge))
	require.NoError(t, g.AddEdge(merge, exit))
	require.NoError(t, g.SetMerge(entry, merge))
	require.NoError(t, g.Freeze())
	return g
}

// buildLoop: entry(loop header) -> {merge=3, body=2} ; body -> continue(entry).
func buildLoop(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.NewGraph()
	entry, _ := g.AddBlock() // 1
	body, _ := g.AddBlock()  // 2
	merge, _ := g.AddBlock() // 3

	require.NoError(t, g.SetAttr(entry, cfg.AttrSelectionHeader))
	require.NoError(t, g.SetAttr(entry, cfg.AttrLoopHeader))
	require.NoError(t, g.AddEdge(entry, merge))
	require.NoError(t, g.AddEdge(entry, body))
	require.NoError(t, g.AddEdge(body, entry))
	require.NoError(t, g.SetMerge(entry, merge))
	require.NoError(t, g.Freeze())
	return g
}

func TestExpectedPath_IfElse_TakesFalseBranch(t *testing.T) {
	g := buildIfElse(t)
	path, err := ExpectedPath(g, []uint32{0})
	require.NoError(t, err)
	assert.Equal(t, []cfg.BlockID{1, 2, 4, 5}, path)
}

func TestExpectedPath_IfElse_TakesTrueBranch(t *testing.T) {
	g := buildIfElse(t)
	path, err := ExpectedPath(g, []uint32{1})
	require.NoError(t, err)
	assert.Equal(t, []cfg.BlockID{1, 3, 4, 5}, path)
}

func TestExpectedPath_Loop_TwoIterationsThenExit(t *testing.T) {
	g := buildLoop(t)
	// direction 1 = body, 1 = body, 0 = merge -> exit.
	path, err := ExpectedPath(g, []uint32{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []cfg.BlockID{1, 2, 1, 2, 1, 3}, path)
}

func TestExpectedPath_DirectionsExhausted(t *testing.T) {
	g := buildIfElse(t)
	_, err := ExpectedPath(g, []uint32{})
	assert.Error(t, err)
}

func TestExpectedPath_UnknownEdgeIndex(t *testing.T) {
	g := buildIfElse(t)
	_, err := ExpectedPath(g, []uint32{7})
	assert.Error(t, err)
}
