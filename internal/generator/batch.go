package generator

import (
	"time"

	"github.com/flesh-fuzz/flesh/internal/cfg"
)

// BatchOptions configures GenerateBatch.
type BatchOptions struct {
	N                 int
	TimeBudget         time.Duration
	GeneratorOptions Options
	// SeedStart is the first seed attempted; seeds increment sequentially
	// so a batch run is itself reproducible.
	SeedStart int64
}

// GenerateBatch produces up to N distinct CFGs (by cfg.Hash), trying
// sequential seeds starting at SeedStart. After TimeBudget elapses without
// discovering a new distinct CFG, it returns whatever was collected —
// never an error, per spec.md's "return what was collected".
func GenerateBatch(opts BatchOptions) []*cfg.Graph {
	seen := make(map[uint64]bool)
	var out []*cfg.Graph
	lastNew := time.Now()
	seed := opts.SeedStart

	for len(out) < opts.N {
		if time.Since(lastNew) > opts.TimeBudget {
			break
		}
		g, err := Generate(seed, opts.GeneratorOptions)
		seed++
		if err != nil {
			continue
		}
		h := g.Hash()
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, g)
		lastNew = time.Now()
	}
	return out
}
