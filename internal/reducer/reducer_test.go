package reducer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flesh-fuzz/flesh/internal/cfg"
)

func TestReduceDirections_FindsShortestStillFailing(t *testing.T) {
	target := []uint32{9, 9, 1, 2, 9, 9}
	fails := func(d []uint32) bool {
		count := 0
		for _, v := range d {
			if v == 1 || v == 2 {
				count++
			}
		}
		return count >= 2
	}
	got := ReduceDirections(target, fails)
	assert.True(t, fails(got))
	assert.LessOrEqual(t, len(got), len(target))
}

func TestReduceDirections_AlreadyNotFailingReturnsInput(t *testing.T) {
	input := []uint32{1, 2, 3}
	got := ReduceDirections(input, func(d []uint32) bool { return false })
	assert.Equal(t, input, got)
}

func buildChainRecord(t *testing.T) cfg.Record {
	t.Helper()
	g := cfg.NewGraph()
	entry, _ := g.AddBlock()
	a, _ := g.AddBlock()
	b, _ := g.AddBlock()
	exit, _ := g.AddBlock()
	require.NoError(t, g.SetAttr(entry, cfg.AttrEntry))
	require.NoError(t, g.AddEdge(entry, a))
	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, exit))
	require.NoError(t, g.Freeze())
	return g.MarshalRecord()
}

func TestReduceGraph_CollapsesBasicChainWhenStillFailing(t *testing.T) {
	rec := buildChainRecord(t)
	originalSize := len(rec.Nodes)

	fails := func(r cfg.Record, d []uint32) bool {
		return true
	}
	reduced := ReduceGraph(rec, nil, fails)
	assert.Less(t, len(reduced.Nodes), originalSize)

	g, err := cfg.UnmarshalRecord(reduced)
	require.NoError(t, err)
	assert.True(t, g.Frozen())
}

func TestReduceGraph_StopsWhenNoLongerFailing(t *testing.T) {
	rec := buildChainRecord(t)
	calls := 0
	fails := func(r cfg.Record, d []uint32) bool {
		calls++
		return calls == 1 // fails only on the initial check, not on any splice
	}
	reduced := ReduceGraph(rec, nil, fails)
	assert.Equal(t, len(rec.Nodes), len(reduced.Nodes))
}
