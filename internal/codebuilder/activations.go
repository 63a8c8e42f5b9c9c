package codebuilder

import (
	"fmt"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
)

// precomputeActivations replays the same walk internal/oracle.ExpectedPath
// performs, but instead of returning the visited path it records, per
// header block, the ordered sequence of direction values consumed each
// time that header is reached — lang.HeaderGuard's "growing sequence of
// control values, one per activation" (spec.md §4.5).
func precomputeActivations(g *cfg.Graph, directions []uint32) (map[cfg.BlockID][]uint32, error) {
	acts := make(map[cfg.BlockID][]uint32)
	cur := g.Entry()
	next := 0
	steps := 0

	for {
		if g.IsExit(cur) {
			return acts, nil
		}
		if g.IsBasic(cur) {
			dst, err := g.EdgeIndexToDst(cur, 0)
			if err != nil {
				return nil, err
			}
			cur = dst
			steps++
			continue
		}

		if next >= len(directions) {
			return nil, domain.NewDirectionsExhaustedError(
				fmt.Sprintf("directions exhausted at block %d after %d steps", cur, steps))
		}
		idx := int(directions[next])
		acts[cur] = append(acts[cur], directions[next])
		next++

		dst, err := g.EdgeIndexToDst(cur, idx)
		if err != nil {
			return nil, err
		}
		cur = dst
		steps++
	}
}
