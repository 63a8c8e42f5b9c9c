package cfg

import "github.com/flesh-fuzz/flesh/domain"

// Validate checks invariants 1-9 (spec §3). It is safe to call on a
// frozen graph (deserialization re-validates unconditionally) or on one
// still under construction.
func (g *Graph) Validate() error {
	if err := g.validateSingleEntry(); err != nil {
		return err
	}
	if err := g.validateReachableFromEntry(); err != nil {
		return err
	}
	if err := g.validateReachesExit(); err != nil {
		return err
	}
	if err := g.validateHeaders(); err != nil {
		return err
	}
	if err := g.validateBreakContinue(); err != nil {
		return err
	}
	return nil
}

func (g *Graph) validateSingleEntry() error {
	count := 0
	for _, b := range g.blocks {
		if b.hasAttr(AttrEntry) {
			count++
		}
	}
	if count != 1 {
		return domain.NewInvalidCFGError(
			"graph must have exactly one entry block", nil)
	}
	if _, ok := g.blocks[g.entry]; !ok {
		return domain.NewInvalidCFGError("entry block is not a member of the graph", nil)
	}
	return nil
}

func (g *Graph) validateReachableFromEntry() error {
	seen := map[BlockID]bool{g.entry: true}
	queue := []BlockID{g.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range g.blocks[cur].out {
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	if len(seen) != len(g.blocks) {
		return domain.NewInvalidCFGError(
			"graph contains a block unreachable from entry", nil)
	}
	return nil
}

// validateReachesExit requires every block to reach some exit block
// (out-degree 0). Loop bodies satisfy this transitively through their
// header's merge edge, so no separate loop-aware case is needed.
func (g *Graph) validateReachesExit() error {
	canReach := make(map[BlockID]bool)
	queue := []BlockID{}
	for id, b := range g.blocks {
		if len(b.out) == 0 {
			canReach[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, pred := range g.blocks[cur].in {
			if !canReach[pred] {
				canReach[pred] = true
				queue = append(queue, pred)
			}
		}
	}
	for id := range g.blocks {
		if !canReach[id] {
			return domain.NewInvalidCFGError(
				"graph contains a block that cannot reach any exit", nil)
		}
	}
	return nil
}

func (g *Graph) validateHeaders() error {
	for id, b := range g.blocks {
		isHeader := b.hasAttr(AttrSelectionHeader)
		if !isHeader {
			continue
		}
		if !b.hasMerge {
			return domain.NewInvalidCFGError(
				"header block must carry a merge", nil)
		}
		if b.merge == id {
			return domain.NewInvalidCFGError(
				"header's merge cannot equal itself", nil)
		}
		if !g.reachableFrom(id, b.merge) {
			return domain.NewInvalidCFGError(
				"header's merge must be reachable from the header", nil)
		}

		if b.hasAttr(AttrLoopHeader) {
			if len(b.out) != 2 || b.out[0] != b.merge {
				return domain.NewInvalidCFGError(
					"loop header out-edges must be exactly [merge, body]", nil)
			}
		}
		if b.hasAttr(AttrSwitchBlock) {
			if len(b.out) < 2 {
				return domain.NewInvalidCFGError(
					"switch block must have at least one case plus a default", nil)
			}
		}
	}
	return nil
}

func (g *Graph) validateBreakContinue() error {
	for id, b := range g.blocks {
		if b.hasAttr(AttrContinueBlock) {
			if len(b.out) != 1 {
				return domain.NewInvalidCFGError(
					"continue block must have exactly one successor", nil)
			}
			loop, ok := g.innermostEnclosingLoop(id)
			if !ok || b.out[0] != loop {
				return domain.NewInvalidCFGError(
					"continue block's successor must be its innermost enclosing loop header", nil)
			}
		}
		if b.hasAttr(AttrBreakBlock) {
			if len(b.out) != 1 {
				return domain.NewInvalidCFGError(
					"break block must have exactly one successor", nil)
			}
			loop, ok := g.innermostEnclosingLoop(id)
			if !ok || b.out[0] != g.blocks[loop].merge {
				return domain.NewInvalidCFGError(
					"break block's successor must be its innermost enclosing loop's merge", nil)
			}
		}
	}
	return nil
}

// innermostEnclosingLoop returns the loop header whose body directly
// scopes target — not just any ancestor loop. A nested loop's own region
// excludes an outer loop's remaining body once traversal crosses into the
// inner header, so target belongs to at most one loop's region; checking
// membership in "some" loop's merge/header set (as an earlier version of
// this validator did) would accept a BreakBlock/ContinueBlock wired to
// the wrong (outer) loop from inside a nested one.
func (g *Graph) innermostEnclosingLoop(target BlockID) (BlockID, bool) {
	for id, b := range g.blocks {
		if !b.hasAttr(AttrLoopHeader) || !b.hasMerge || len(b.out) != 2 {
			continue
		}
		if g.loopBodyRegion(id, b.merge, b.out[1])[target] {
			return id, true
		}
	}
	return 0, false
}

// loopBodyRegion returns the blocks reachable from a loop's body without
// crossing that loop's own merge/header or entering another loop's header.
func (g *Graph) loopBodyRegion(header, merge, body BlockID) map[BlockID]bool {
	seen := map[BlockID]bool{}
	queue := []BlockID{body}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] || cur == merge || cur == header {
			continue
		}
		if cur != body && g.blocks[cur].hasAttr(AttrLoopHeader) {
			continue
		}
		seen[cur] = true
		for _, s := range g.blocks[cur].out {
			if !seen[s] {
				queue = append(queue, s)
			}
		}
	}
	return seen
}

// reachableFrom is a small forward BFS used only by validation (the
// generator-facing traversal helpers live in internal/oracle and
// internal/codebuilder, which need directions-driven walks, not a plain
// reachability check).
func (g *Graph) reachableFrom(from, to BlockID) bool {
	if from == to {
		return true
	}
	seen := map[BlockID]bool{from: true}
	queue := []BlockID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, succ := range g.blocks[cur].out {
			if succ == to {
				return true
			}
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return false
}
