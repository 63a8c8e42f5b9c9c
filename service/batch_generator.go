// Package service implements flesh's use-case-adjacent infrastructure:
// parallel batch generation, runner dispatch, bug-report writing, and
// output-folder tidying.
package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/generator"
)

// BatchGeneratorConfig configures BatchGenerator.Generate.
type BatchGeneratorConfig struct {
	N                int
	Workers          int
	TimeBudget       time.Duration
	SeedStart        int64
	GeneratorOptions generator.Options
}

// BatchGenerator fans generator.Generate out across a bounded worker
// pool (spec.md §5's "externally-synchronized shared state": a single
// mutex around the dedup set, one independent seed stream per worker).
// Grounded on jscan's errgroup-bounded parallel-walk pattern — the pack
// repo that pulls in golang.org/x/sync.
type BatchGenerator struct {
	progress domain.ProgressManager
}

// NewBatchGenerator creates a BatchGenerator. progress may be nil, in
// which case no progress is reported.
func NewBatchGenerator(progress domain.ProgressManager) *BatchGenerator {
	return &BatchGenerator{progress: progress}
}

// Generate runs cfgg.Workers workers (at least 1), each trying its own disjoint seed stream
// (seed = SeedStart + workerIndex, then += Workers each retry), until N
// distinct CFGs (by cfg.Hash) have been collected or TimeBudget elapses
// since the last distinct CFG was found across all workers. Never
// returns an error — unreachable/pathological generator options simply
// yield fewer than N graphs, matching generator.GenerateBatch's
// single-threaded contract.
func (b *BatchGenerator) Generate(ctx context.Context, cfgg BatchGeneratorConfig) []*cfg.Graph {
	workers := cfgg.Workers
	if workers < 1 {
		workers = 1
	}
	if b.progress != nil {
		b.progress.Initialize(cfgg.N)
		b.progress.StartTask("generate")
		defer b.progress.CompleteTask("generate", true)
	}

	var mu sync.Mutex
	seen := make(map[uint64]bool)
	var out []*cfg.Graph
	lastNew := time.Now()

	deadlineExceeded := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return time.Since(lastNew) > cfgg.TimeBudget
	}
	haveEnough := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(out) >= cfgg.N
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			seed := cfgg.SeedStart + int64(w)
			for {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				if haveEnough() || deadlineExceeded() {
					return nil
				}

				graph, err := generator.Generate(seed, cfgg.GeneratorOptions)
				seed += int64(workers)
				if err != nil {
					continue
				}

				h := graph.Hash()
				mu.Lock()
				if seen[h] {
					mu.Unlock()
					continue
				}
				if len(out) >= cfgg.N {
					mu.Unlock()
					return nil
				}
				seen[h] = true
				out = append(out, graph)
				n := len(out)
				lastNew = time.Now()
				mu.Unlock()

				if b.progress != nil {
					b.progress.UpdateProgress("generate", n, cfgg.N)
				}
			}
		})
	}
	_ = g.Wait()

	mu.Lock()
	defer mu.Unlock()
	return out
}
