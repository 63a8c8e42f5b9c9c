package service

import (
	"context"
	"fmt"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/lang"
)

// RunRequest carries one emitted program through a Runner: its source
// text, the directions vector it was built against, and the target it
// was emitted for.
type RunRequest struct {
	Target     lang.Target
	Source     string
	Directions []uint32
}

// Runner executes an emitted program against a compiler/runtime and
// returns the block-id sequence it actually visited, for comparison
// against internal/oracle.ExpectedPath (spec.md §1/§12's "external
// runner" boundary — compiling/running real WASM or GPU code stays out
// of scope for this repo; real implementations live outside it).
type Runner interface {
	Run(ctx context.Context, req RunRequest) (observed []uint32, err error)
}

// NullRunner never actually compiles or executes anything: every call
// fails with KindRuntimeFailure, clearly flagging "no runner configured"
// rather than silently reporting false matches. It exists so
// app/run_usecase.go has a safe default when the caller hasn't wired in
// a real backend.
type NullRunner struct{}

func NewNullRunner() *NullRunner { return &NullRunner{} }

func (r *NullRunner) Run(ctx context.Context, req RunRequest) ([]uint32, error) {
	return nil, domain.NewRuntimeFailureError(
		fmt.Sprintf("no runner configured for target %s", req.Target), nil)
}

// FakeRunner is a deterministic stand-in for a real compiler/runtime,
// used by the round-trip property tests (spec.md §8): it is handed the
// path it should "observe" directly, rather than executing anything.
// Grounded on original_source/evaluation/run_test_programs.py's runner
// boundary, reworked as a first-class Go interface per SPEC_FULL §12.
type FakeRunner struct {
	// Observe computes the path to report for a request. If nil, Run
	// reports a PathMismatch error so an unconfigured FakeRunner fails
	// loudly rather than silently matching.
	Observe func(req RunRequest) ([]uint32, error)
}

func NewFakeRunner(observe func(req RunRequest) ([]uint32, error)) *FakeRunner {
	return &FakeRunner{Observe: observe}
}

func (r *FakeRunner) Run(ctx context.Context, req RunRequest) ([]uint32, error) {
	if r.Observe == nil {
		return nil, domain.NewPathMismatchError("fake runner has no configured observation")
	}
	select {
	case <-ctx.Done():
		return nil, domain.NewRuntimeFailureError("run canceled", ctx.Err())
	default:
	}
	return r.Observe(req)
}

// MultiRunner dispatches to a per-target Runner, letting a harness wire
// real backends in independently for wasm/wgsl/glsl (or leave a target
// on NullRunner).
type MultiRunner struct {
	byTarget map[lang.Target]Runner
}

func NewMultiRunner() *MultiRunner {
	return &MultiRunner{byTarget: make(map[lang.Target]Runner)}
}

// Register wires r in to handle req.Target == t.
func (m *MultiRunner) Register(t lang.Target, r Runner) *MultiRunner {
	m.byTarget[t] = r
	return m
}

func (m *MultiRunner) Run(ctx context.Context, req RunRequest) ([]uint32, error) {
	r, ok := m.byTarget[req.Target]
	if !ok {
		r = NewNullRunner()
	}
	return r.Run(ctx, req)
}
