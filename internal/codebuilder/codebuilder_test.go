package codebuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/lang"
)

// buildIfElse: entry(header) -> {false=2, true=3} -> merge(4) -> exit(5).
func buildIfElse(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.NewGraph()
	entry, _ := g.AddBlock()
	falseB, _ := g.AddBlock()
	trueB, _ := g.AddBlock()
	merge, _ := g.AddBlock()
	exit, _ := g.AddBlock()

	require.NoError(t, g.SetAttr(entry, cfg.AttrSelectionHeader))
	require.NoError(t, g.AddEdge(entry, falseB))
	require.NoError(t, g.AddEdge(entry, trueB))
	require.NoError(t, g.AddEdge(falseB, merge))
	require.NoError(t, g.AddEdge(trueB, merge))
	require.NoError(t, g.AddEdge(merge, exit))
	require.NoError(t, g.SetMerge(entry, merge))
	require.NoError(t, g.Freeze())
	return g
}

// buildLoop: entry(loop header) -> {merge=3, body=2} ; body -> entry.
func buildLoop(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.NewGraph()
	entry, _ := g.AddBlock()
	body, _ := g.AddBlock()
	merge, _ := g.AddBlock()

	require.NoError(t, g.SetAttr(entry, cfg.AttrSelectionHeader))
	require.NoError(t, g.SetAttr(entry, cfg.AttrLoopHeader))
	require.NoError(t, g.AddEdge(entry, merge))
	require.NoError(t, g.AddEdge(entry, body))
	require.NoError(t, g.AddEdge(body, entry))
	require.NoError(t, g.SetMerge(entry, merge))
	require.NoError(t, g.Freeze())
	return g
}

// buildFallthroughSwitch: header(1, switch) -> [case0(2), default(3)];
// case0 -> default (wired fallthrough); default -> merge(4) -> exit(5).
func buildFallthroughSwitch(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.NewGraph()
	header, _ := g.AddBlock()
	case0, _ := g.AddBlock()
	def, _ := g.AddBlock()
	merge, _ := g.AddBlock()
	exit, _ := g.AddBlock()

	require.NoError(t, g.SetAttr(header, cfg.AttrSelectionHeader))
	require.NoError(t, g.SetAttr(header, cfg.AttrSwitchBlock))
	require.NoError(t, g.AddEdge(header, case0))
	require.NoError(t, g.AddEdge(header, def))
	require.NoError(t, g.AddEdge(case0, def))
	require.NoError(t, g.AddEdge(def, merge))
	require.NoError(t, g.AddEdge(merge, exit))
	require.NoError(t, g.SetMerge(header, merge))
	require.NoError(t, g.Freeze())
	return g
}

func TestBuild_IfElse_WebAssembly_GlobalArray(t *testing.T) {
	g := buildIfElse(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.WebAssembly), lang.GlobalArray, []uint32{1})
	require.NoError(t, err)
	assert.Contains(t, out, "i32.const 2")
	assert.Contains(t, out, "i32.const 3")
}

func TestBuild_Loop_WGSL_LocalArray(t *testing.T) {
	g := buildLoop(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.WGSL), lang.LocalArray, []uint32{1, 1, 0})
	require.NoError(t, err)
	assert.Contains(t, out, "loop {")
	// The real directions vector must be baked in, not a disconnected
	// zero-valued placeholder, and declared exactly once even though the
	// header it backs executes on every loop iteration.
	assert.Contains(t, out, "array<u32, 3>(1u, 1u, 0u)")
	assert.Equal(t, 1, strings.Count(out, "local_directions: array"))
}

func TestBuild_IfElse_WebAssembly_LocalArray_EmbedsRealDirections(t *testing.T) {
	g := buildIfElse(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.WebAssembly), lang.LocalArray, []uint32{1})
	require.NoError(t, err)
	assert.Contains(t, out, "local_directions[0] = 1")
	assert.NotContains(t, out, "$dcursor")
}

func TestBuild_IfElse_GLSL_LocalArray_EmbedsRealDirections(t *testing.T) {
	g := buildIfElse(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.GLSL), lang.LocalArray, []uint32{1})
	require.NoError(t, err)
	assert.Contains(t, out, "uint local_directions[1] = uint[1](1u)")
}

func TestBuild_HeaderGuard_EmbedsConstants(t *testing.T) {
	g := buildIfElse(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.GLSL), lang.HeaderGuard, []uint32{1})
	require.NoError(t, err)
	assert.Contains(t, out, "h1_ctl")
}

func TestBuild_RejectsUnfrozenGraph(t *testing.T) {
	g := cfg.NewGraph()
	_, _ = g.AddBlock()
	_, err := NewBuilder().Build(g, lang.ForTarget(lang.WebAssembly), lang.GlobalArray, nil)
	assert.Error(t, err)
}

func TestBuild_FallthroughForbiddenUnderWGSL(t *testing.T) {
	g := buildFallthroughSwitch(t)
	_, err := NewBuilder().Build(g, lang.ForTarget(lang.WGSL), lang.GlobalArray, []uint32{0})
	assert.Error(t, err)
}

func TestBuild_FallthroughAllowedUnderWebAssembly(t *testing.T) {
	g := buildFallthroughSwitch(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.WebAssembly), lang.GlobalArray, []uint32{0})
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "case 0"))
}

func TestBuild_EachBlockEmittedOnce(t *testing.T) {
	g := buildIfElse(t)
	out, err := NewBuilder().Build(g, lang.ForTarget(lang.WebAssembly), lang.GlobalArray, []uint32{0})
	require.NoError(t, err)
	// Block 4 is the merge; it must be emitted exactly once even though
	// both branches funnel into it. Its full observable-record emission
	// (address stride 4, block id 4) is a distinctive literal.
	merge4 := "(i32.store (i32.mul (local.get $cursor) (i32.const 4)) (i32.const 4))"
	assert.Equal(t, 1, strings.Count(out, merge4))
}
