// Package oracle computes the expected execution path of a CFG given a
// directions vector, independent of any target language.
package oracle

import (
	"fmt"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
)

// ExpectedPath walks g from its entry block, consuming one element of
// directions per non-trivial branch (a basic block consumes nothing — it
// has only one successor to follow). It returns the full sequence of
// block ids visited, including repeats from loop iteration.
//
// Both this function and internal/codebuilder go through
// Graph.EdgeIndexToDst for every branch decision, so the path the oracle
// predicts and the path the code builder's emitted control flow can
// produce are structurally guaranteed to agree (spec's DESIGN NOTES).
func ExpectedPath(g *cfg.Graph, directions []uint32) ([]cfg.BlockID, error) {
	var path []cfg.BlockID
	cur := g.Entry()
	next := 0

	for {
		path = append(path, cur)

		if g.IsExit(cur) {
			return path, nil
		}

		if g.IsBasic(cur) {
			dst, err := g.EdgeIndexToDst(cur, 0)
			if err != nil {
				return nil, err
			}
			cur = dst
			continue
		}

		if next >= len(directions) {
			return nil, domain.NewDirectionsExhaustedError(
				fmt.Sprintf("directions exhausted at block %d after %d steps", cur, len(path)))
		}
		idx := int(directions[next])
		next++

		dst, err := g.EdgeIndexToDst(cur, idx)
		if err != nil {
			return nil, err
		}
		cur = dst
	}
}
