package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/codebuilder"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/internal/oracle"
	"github.com/flesh-fuzz/flesh/internal/program"
	"github.com/flesh-fuzz/flesh/internal/reporter"
	"github.com/flesh-fuzz/flesh/service"
)

// RunRequest configures a differential-testing pass over already
// generated (or freshly generated) CFGs.
type RunRequest struct {
	Graphs       []*cfg.Graph
	NoOfPaths    int // directions vectors tried per graph
	Target       lang.Target
	CodeType     lang.CodeType
	Seed         int64
	RunnerTimeout time.Duration
	OutputFolder string
	OutputFormat domain.OutputFormat
}

// RunUseCase builds source for each (CFG, directions) pair, hands it to
// a Runner, and compares the observed path against internal/oracle's
// prediction — spec.md's core round-trip property, wired end to end.
type RunUseCase struct {
	builder *codebuilder.Builder
	runner  service.Runner
	writer  *reporter.BugReportWriter
}

// NewRunUseCase creates a RunUseCase. A nil runner defaults to
// service.NullRunner (every run reports RuntimeFailure, never a false
// pass).
func NewRunUseCase(runner service.Runner) *RunUseCase {
	if runner == nil {
		runner = service.NewNullRunner()
	}
	return &RunUseCase{
		builder: codebuilder.NewBuilder(),
		runner:  runner,
		writer:  reporter.NewBugReportWriter(),
	}
}

// Execute runs req.NoOfPaths random directions vectors against each of
// req.Graphs, returning one domain.BugReport per disagreement (a
// CompileFailure/RuntimeFailure/PathMismatch from the runner or the
// builder). An error from the random walk, or any other builder error
// such as UnsupportedFeature for a construct the target cannot express,
// ends Execute and is returned together with the reports collected so far.
func (uc *RunUseCase) Execute(ctx context.Context, req RunRequest) ([]*domain.BugReport, error) {
	desc := lang.ForTarget(req.Target)
	rng := rand.New(rand.NewSource(req.Seed))
	var reports []*domain.BugReport

	for graphIdx, g := range req.Graphs {
		for pathIdx := 0; pathIdx < req.NoOfPaths; pathIdx++ {
			directions, expected, err := oracle.RandomWalk(rng, g, 10_000)
			if err != nil {
				return reports, err
			}

			body, err := uc.builder.Build(g, desc, req.CodeType, directions)
			if err != nil {
				if domain.IsRunnerFailure(err) {
					reports = append(reports, uc.reportFromBuildError(req, g, directions, err))
					continue
				}
				return reports, err
			}

			expectedU32 := blockIDsToUint32(expected)

			// GLSL runs through shadertrap, whose script asserts
			// expected-vs-actual internally (ASSERT_EQUAL BUFFERS): the
			// comparison happens inside the script, not in Go, so a
			// successful run already implies path agreement.
			var source string
			selfAsserting := req.Target == lang.GLSL
			if selfAsserting {
				expectedInt := make([]int, len(expected))
				for i, id := range expected {
					expectedInt[i] = int(id)
				}
				source = program.AssembleGLSLTest(desc, req.CodeType, body, directions, expectedInt)
			} else {
				source = program.Assemble(desc, req.CodeType, body, directions)
			}

			runCtx := ctx
			var cancel context.CancelFunc
			if req.RunnerTimeout > 0 {
				runCtx, cancel = context.WithTimeout(ctx, req.RunnerTimeout)
			}
			observed, runErr := uc.runner.Run(runCtx, service.RunRequest{
				Target:     req.Target,
				Source:     source,
				Directions: directions,
			})
			if cancel != nil {
				cancel()
			}

			if runErr != nil {
				reports = append(reports, uc.reportFromBuildError(req, g, directions, runErr))
				continue
			}
			if selfAsserting {
				continue
			}

			if equal, mismatchIdx := domain.ComparePaths(expectedU32, observed); !equal {
				reports = append(reports, &domain.BugReport{
					ID:            uuid.NewString(),
					Kind:          domain.KindPathMismatch,
					Target:        req.Target.String(),
					CodeType:      req.CodeType.String(),
					Seed:          req.Seed,
					Directions:    directions,
					Expected:      expectedU32,
					Observed:      observed,
					MismatchIndex: mismatchIdx,
					Message:       fmt.Sprintf("graph %d path %d: observed path diverges from oracle", graphIdx, pathIdx),
					Source:        source,
					CreatedAt:     time.Now(),
				})
			}
		}
	}

	if req.OutputFolder != "" && len(reports) > 0 {
		if err := uc.writeReports(reports, req); err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (uc *RunUseCase) reportFromBuildError(req RunRequest, g *cfg.Graph, directions []uint32, err error) *domain.BugReport {
	kind := domain.KindOf(err)
	if kind == "" {
		kind = domain.KindRuntimeFailure
	}
	return &domain.BugReport{
		ID:         uuid.NewString(),
		Kind:       kind,
		Target:     req.Target.String(),
		CodeType:   req.CodeType.String(),
		Seed:       req.Seed,
		Directions: directions,
		Message:    err.Error(),
		CreatedAt:  time.Now(),
	}
}

func blockIDsToUint32(ids []cfg.BlockID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

func (uc *RunUseCase) writeReports(reports []*domain.BugReport, req RunRequest) error {
	dir := filepath.Join(req.OutputFolder, "bugreports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create %s", dir), err)
	}
	format := req.OutputFormat
	if format == "" {
		format = domain.OutputFormatJSON
	}
	for _, r := range reports {
		ext := "json"
		switch format {
		case domain.OutputFormatYAML:
			ext = "yaml"
		case domain.OutputFormatSARIF:
			ext = "sarif"
		}
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", r.ID, ext))
		f, err := os.Create(path)
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create %s", path), err)
		}
		err = uc.writer.Write(f, r, format)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
