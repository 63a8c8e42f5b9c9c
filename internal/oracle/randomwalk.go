package oracle

import (
	"fmt"
	"math/rand"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
)

// RandomWalk picks a uniformly random direction at every branch as it
// walks g from entry, recording the choices made and the path taken. It
// can never be DirectionsExhausted by construction (unlike ExpectedPath
// fed a fixed vector) since each direction is generated on demand; it
// still bounds total steps at maxSteps so a generator bug that produces
// an infinite loop (escaping the invariant that every loop's merge
// reaches an exit) can't hang a caller.
func RandomWalk(rng *rand.Rand, g *cfg.Graph, maxSteps int) ([]uint32, []cfg.BlockID, error) {
	var directions []uint32
	var path []cfg.BlockID
	cur := g.Entry()

	for step := 0; ; step++ {
		path = append(path, cur)
		if g.IsExit(cur) {
			return directions, path, nil
		}
		if step >= maxSteps {
			return nil, nil, domain.NewInternalError(
				fmt.Sprintf("random walk exceeded %d steps without reaching an exit block", maxSteps), nil)
		}

		if g.IsBasic(cur) {
			dst, err := g.EdgeIndexToDst(cur, 0)
			if err != nil {
				return nil, nil, err
			}
			cur = dst
			continue
		}

		n := g.OutDegree(cur)
		idx := rng.Intn(n)
		directions = append(directions, uint32(idx))

		dst, err := g.EdgeIndexToDst(cur, idx)
		if err != nil {
			return nil, nil, err
		}
		cur = dst
	}
}
