package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/internal/oracle"
	"github.com/flesh-fuzz/flesh/service"
)

// buildIfElse is spec.md §8 scenario 1: edges [(1,2),(1,3),(2,4),(3,4)],
// 1: SelectionHeader, Merge=4, plus 4→5 to an exit block 5.
func buildIfElse(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.NewGraph()
	for i := 0; i < 5; i++ {
		_, _ = g.AddBlock()
	}
	require.NoError(t, g.SetAttr(1, cfg.AttrSelectionHeader))
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(1, 3))
	require.NoError(t, g.AddEdge(2, 4))
	require.NoError(t, g.AddEdge(3, 4))
	require.NoError(t, g.AddEdge(4, 5))
	require.NoError(t, g.SetMerge(1, 4))
	require.NoError(t, g.Freeze())
	return g
}

// exactPathRunner is a FakeRunner that always reports exactly the path
// internal/oracle predicts — exercising the round-trip property (spec
// §8) without needing a real compiler/runtime backend.
func exactPathRunner(g *cfg.Graph) *service.FakeRunner {
	return service.NewFakeRunner(func(req service.RunRequest) ([]uint32, error) {
		path, err := oracle.ExpectedPath(g, req.Directions)
		if err != nil {
			return nil, err
		}
		out := make([]uint32, len(path))
		for i, id := range path {
			out[i] = uint32(id)
		}
		return out, nil
	})
}

func TestRunUseCase_IfElse_RoundTripMatches(t *testing.T) {
	g := buildIfElse(t)
	uc := NewRunUseCase(exactPathRunner(g))

	reports, err := uc.Execute(context.Background(), RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: 4,
		Target:    lang.WebAssembly,
		CodeType:  lang.GlobalArray,
		Seed:      1,
	})
	require.NoError(t, err)
	assert.Empty(t, reports, "exact-path fake runner must never produce a mismatch report")
}

func TestRunUseCase_MismatchingRunnerProducesPathMismatchReport(t *testing.T) {
	g := buildIfElse(t)
	wrongRunner := service.NewFakeRunner(func(req service.RunRequest) ([]uint32, error) {
		return []uint32{99, 99}, nil
	})
	uc := NewRunUseCase(wrongRunner)

	reports, err := uc.Execute(context.Background(), RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: 1,
		Target:    lang.WebAssembly,
		CodeType:  lang.GlobalArray,
		Seed:      1,
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "PATH_MISMATCH", reports[0].Kind)
}

func TestRunUseCase_NullRunnerProducesRuntimeFailureReport(t *testing.T) {
	g := buildIfElse(t)
	uc := NewRunUseCase(nil)

	reports, err := uc.Execute(context.Background(), RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: 1,
		Target:    lang.WGSL,
		CodeType:  lang.GlobalArray,
		Seed:      1,
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "RUNTIME_FAILURE", reports[0].Kind)
}

func TestRunUseCase_GLSL_SuccessfulRunProducesNoPathMismatchReport(t *testing.T) {
	// A GLSL/shadertrap runner only ever signals pass/fail via the error
	// return (the script's own ASSERT_EQUAL does the comparison); a nil
	// error must never be second-guessed by a Go-side path compare.
	g := buildIfElse(t)
	uc := NewRunUseCase(service.NewFakeRunner(func(req service.RunRequest) ([]uint32, error) {
		assert.Contains(t, req.Source, "ASSERT_EQUAL")
		return nil, nil
	}))

	reports, err := uc.Execute(context.Background(), RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: 2,
		Target:    lang.GLSL,
		CodeType:  lang.GlobalArray,
		Seed:      1,
	})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestRunUseCase_GLSL_AssertionFailureProducesRuntimeFailureReport(t *testing.T) {
	g := buildIfElse(t)
	uc := NewRunUseCase(service.NewFakeRunner(func(req service.RunRequest) ([]uint32, error) {
		return nil, fmt.Errorf("shadertrap: assertion ASSERT_EQUAL failed")
	}))

	reports, err := uc.Execute(context.Background(), RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: 1,
		Target:    lang.GLSL,
		CodeType:  lang.GlobalArray,
		Seed:      1,
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "RUNTIME_FAILURE", reports[0].Kind)
}

func TestRunUseCase_FallthroughForbiddenUnderWGSLReturnsUnsupportedFeatureError(t *testing.T) {
	// spec.md §8 scenario 4's switch-fallthrough CFG, but run under WGSL
	// which cannot express fallthrough.
	g := cfg.NewGraph()
	for i := 0; i < 4; i++ {
		_, _ = g.AddBlock()
	}
	require.NoError(t, g.SetAttr(1, cfg.AttrSelectionHeader))
	require.NoError(t, g.SetAttr(1, cfg.AttrSwitchBlock))
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(1, 3))
	require.NoError(t, g.AddEdge(2, 3))
	require.NoError(t, g.AddEdge(3, 4))
	require.NoError(t, g.SetMerge(1, 4))
	require.NoError(t, g.Freeze())

	uc := NewRunUseCase(exactPathRunner(g))
	reports, err := uc.Execute(context.Background(), RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: 1,
		Target:    lang.WGSL,
		CodeType:  lang.GlobalArray,
		Seed:      1,
	})
	// Case 0 (block 2) reaches case 1 (block 3) without passing a loop
	// header, so the builder rejects the switch whatever the directions
	// are, and Execute returns that error instead of a report.
	require.Error(t, err)
	assert.Equal(t, domain.KindUnsupportedFeature, domain.KindOf(err))
	assert.Empty(t, reports)
}
