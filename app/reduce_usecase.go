package app

import (
	"context"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/codebuilder"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/internal/oracle"
	"github.com/flesh-fuzz/flesh/internal/program"
	"github.com/flesh-fuzz/flesh/internal/reducer"
	"github.com/flesh-fuzz/flesh/service"
)

// ReduceRequest configures minimisation of a known-failing (CFG,
// directions) pair down to a smaller one that still reproduces the bug.
type ReduceRequest struct {
	Graph      *cfg.Graph
	Directions []uint32
	Target     lang.Target
	CodeType   lang.CodeType
}

// ReduceUseCase wraps internal/reducer with a StillFails predicate built
// from a real Runner: build source, run it, report true exactly when the
// observed path diverges from the oracle's (or the run otherwise fails).
// Supplemented feature (SPEC_FULL §12) — no spec.md analogue.
type ReduceUseCase struct {
	builder *codebuilder.Builder
	runner  service.Runner
}

func NewReduceUseCase(runner service.Runner) *ReduceUseCase {
	if runner == nil {
		runner = service.NewNullRunner()
	}
	return &ReduceUseCase{builder: codebuilder.NewBuilder(), runner: runner}
}

// Execute returns the minimised graph record and directions.
func (uc *ReduceUseCase) Execute(ctx context.Context, req ReduceRequest) (cfg.Record, []uint32, error) {
	desc := lang.ForTarget(req.Target)

	fails := func(rec cfg.Record, directions []uint32) bool {
		g, err := cfg.UnmarshalRecord(rec)
		if err != nil {
			return false
		}
		expected, err := oracle.ExpectedPath(g, directions)
		if err != nil {
			return false
		}
		body, err := uc.builder.Build(g, desc, req.CodeType, directions)
		if err != nil {
			return true
		}
		source := program.Assemble(desc, req.CodeType, body, directions)
		observed, err := uc.runner.Run(ctx, service.RunRequest{
			Target:     req.Target,
			Source:     source,
			Directions: directions,
		})
		if err != nil {
			return true
		}
		equal, _ := domain.ComparePaths(blockIDsToUint32(expected), observed)
		return !equal
	}

	rec := req.Graph.MarshalRecord()
	reducedRec := reducer.ReduceGraph(rec, req.Directions, fails)
	reducedDirections := reducer.ReduceDirections(req.Directions, func(d []uint32) bool {
		return fails(reducedRec, d)
	})
	return reducedRec, reducedDirections, nil
}
