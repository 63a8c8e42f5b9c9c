// Package reducer implements delta-debugging minimisation of a failing
// (CFG, directions) pair — a supplemented feature with no spec.md
// analogue, grounded on original_source/evaluation/wgsl_bug_reduction's
// manual reduce_cfg.py/reduce_directions.py scripts.
package reducer

import (
	"github.com/flesh-fuzz/flesh/internal/cfg"
)

// StillFails reports whether the (record, directions) pair still
// reproduces whatever bug the caller is minimising (typically: run the
// emitted program through a runner and compare against the oracle).
type StillFails func(rec cfg.Record, directions []uint32) bool

// ReduceDirections shortens directions to a smaller sequence that still
// satisfies fails, using the same "remove N consecutive elements, shrink
// N on failure to find a failing cut, recurse into every failing cut"
// search as reduce_directions.py's calc_failing_subsequences. Unlike the
// Python original (which collects every failing subsequence found),
// this returns only the shortest one discovered, since that is what a
// minimisation caller actually wants.
func ReduceDirections(directions []uint32, fails func(d []uint32) bool) []uint32 {
	if !fails(directions) {
		return directions
	}
	best := directions
	tried := map[string]bool{}

	var recurse func(d []uint32, chunk int)
	recurse = func(d []uint32, chunk int) {
		if chunk == 0 || chunk > len(d) {
			return
		}
		found := false
		for _, cand := range removeConsecutive(d, chunk) {
			key := sliceKey(cand)
			if tried[key] {
				continue
			}
			tried[key] = true
			if fails(cand) {
				found = true
				if len(cand) < len(best) {
					best = cand
				}
				recurse(cand, chunk)
			}
		}
		if !found {
			recurse(d, chunk-1)
		}
	}
	recurse(directions, len(directions)-1)
	return best
}

func removeConsecutive(d []uint32, n int) [][]uint32 {
	if n <= 0 || n > len(d) {
		return nil
	}
	out := make([][]uint32, 0, len(d)-n+1)
	for i := 0; i+n <= len(d); i++ {
		cand := make([]uint32, 0, len(d)-n)
		cand = append(cand, d[:i]...)
		cand = append(cand, d[i+n:]...)
		out = append(out, cand)
	}
	return out
}

func sliceKey(d []uint32) string {
	b := make([]byte, 0, len(d)*2)
	for _, v := range d {
		b = append(b, byte(v), ',')
	}
	return string(b)
}

// ReduceGraph repeatedly tries splicing out a non-header block whose
// single predecessor has exactly one out-edge (i.e. a basic-to-basic
// chain link, reduce_cfg.py's "combine blocks" step), keeping the
// splice only when fails still holds on the resulting record and
// directions. It makes repeated passes until no candidate collapses,
// matching the original's iterate-to-fixed-point reduction style.
func ReduceGraph(rec cfg.Record, directions []uint32, fails StillFails) cfg.Record {
	if !fails(rec, directions) {
		return rec
	}
	current := rec
	for {
		next, changed := collapseOneChainLink(current, directions, fails)
		if !changed {
			return current
		}
		current = next
	}
}

func collapseOneChainLink(rec cfg.Record, directions []uint32, fails StillFails) (cfg.Record, bool) {
	outDeg := map[cfg.BlockID]int{}
	inDeg := map[cfg.BlockID]int{}
	preds := map[cfg.BlockID][]cfg.BlockID{}
	headerAttrs := map[cfg.BlockID]bool{}

	for _, n := range rec.Nodes {
		for _, a := range n.Attrs {
			if a == "entry" || a == "selection_header" || a == "loop_header" || a == "switch_block" {
				headerAttrs[n.ID] = true
			}
		}
	}
	for _, e := range rec.Edges {
		outDeg[e.From]++
		inDeg[e.To]++
		preds[e.To] = append(preds[e.To], e.From)
	}

	for _, n := range rec.Nodes {
		b := n.ID
		if headerAttrs[b] || outDeg[b] != 1 || inDeg[b] != 1 {
			continue
		}
		p := preds[b][0]
		if outDeg[p] != 1 || headerAttrs[p] {
			continue
		}

		cand := spliceOut(rec, p, b)
		if fails(cand, directions) {
			return cand, true
		}
	}
	return rec, false
}

// spliceOut removes block victim by rewiring its sole predecessor's
// out-edge directly to victim's sole successor.
func spliceOut(rec cfg.Record, pred, victim cfg.BlockID) cfg.Record {
	var succ cfg.BlockID
	for _, e := range rec.Edges {
		if e.From == victim {
			succ = e.To
			break
		}
	}

	out := cfg.Record{}
	for _, n := range rec.Nodes {
		if n.ID != victim {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range rec.Edges {
		if e.From == victim {
			continue
		}
		if e.From == pred && e.To == victim {
			e.To = succ
		}
		out.Edges = append(out.Edges, e)
	}
	return out
}
