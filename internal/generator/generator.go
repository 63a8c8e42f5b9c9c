// Package generator implements flesh's structured CFG generator (C3): a
// recursive construct-expansion procedure building only CFGs whose
// reducibility and single-merge properties guarantee they can be emitted
// as well-formed structured source.
package generator

import (
	"math/rand"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/lang"
)

// Options configures one generation run. A seed plus an Options value
// fully determines the resulting CFG.
type Options struct {
	AllowBasic              bool
	AllowSelection          bool
	AllowSwitchDefault      bool
	AllowSwitchFallthrough  bool
	AllowLoop               bool
	AllowBreak              bool
	AllowContinue           bool

	MinDepth int
	MaxDepth int

	MinSucc int // minimum switch arity (cases + default)
	MaxSucc int // maximum switch arity

	MergeShareProb    float64
	BreakContinueProb float64
}

// DefaultOptions returns the construct set enabled by domain's defaults,
// with every construct switched on.
func DefaultOptions() Options {
	return Options{
		AllowBasic:             true,
		AllowSelection:         true,
		AllowSwitchDefault:     true,
		AllowSwitchFallthrough: true,
		AllowLoop:              true,
		AllowBreak:             true,
		AllowContinue:          true,
		MinDepth:               domain.DefaultMinDepth,
		MaxDepth:               domain.DefaultMaxDepth,
		MinSucc:                domain.DefaultMinSwitchArity,
		MaxSucc:                domain.DefaultMaxSwitchArity,
		MergeShareProb:         domain.DefaultMergeShareProbability,
		BreakContinueProb:      domain.DefaultBreakContinueProbability,
	}
}

// Swarm samples the construct flags uniformly (spec's "swarm mode"),
// forcing at least one construct flag true to guarantee progress, and
// constrains AllowSwitchFallthrough to what the target language permits.
func Swarm(rng *rand.Rand, caps lang.Capabilities) Options {
	o := DefaultOptions()
	o.AllowBasic = rng.Intn(2) == 1
	o.AllowSelection = rng.Intn(2) == 1
	o.AllowSwitchDefault = rng.Intn(2) == 1
	o.AllowLoop = rng.Intn(2) == 1
	o.AllowBreak = rng.Intn(2) == 1
	o.AllowContinue = rng.Intn(2) == 1
	if !o.AllowBasic && !o.AllowSelection && !o.AllowSwitchDefault && !o.AllowLoop {
		o.AllowBasic = true
	}
	o.AllowSwitchFallthrough = caps.AllowsSwitchFallthrough && rng.Intn(2) == 1
	return o
}

// construct tags which rewrite a chosen open block gets.
type construct int

const (
	constructBasic construct = iota
	constructSelection
	constructSwitch
	constructLoop
)

// openTask is a chain node awaiting construct assignment: b currently has
// exactly one out-edge, pointing at end. loopMerges is the stack of
// enclosing loop headers' merge blocks, innermost last, used by the
// merge-sharing policy (the decoration pass works from gn.loops instead).
type openTask struct {
	b          cfg.BlockID
	end        cfg.BlockID
	depth      int
	loopMerges []cfg.BlockID
}

// loopRecord remembers a generated loop so the decoration pass can walk
// its body after the whole graph has been built.
type loopRecord struct {
	header cfg.BlockID
	merge  cfg.BlockID
	body   cfg.BlockID
}

type generation struct {
	g        *cfg.Graph
	rng      *rand.Rand
	opts     Options
	maxDepth int
	loops    []loopRecord
}

// Generate builds one structured CFG deterministically from seed and opts.
func Generate(seed int64, opts Options) (*cfg.Graph, error) {
	rng := rand.New(rand.NewSource(seed))
	g := cfg.NewGraph()

	entry, err := g.AddBlock()
	if err != nil {
		return nil, err
	}
	exit, err := g.AddBlock()
	if err != nil {
		return nil, err
	}
	if err := g.AddEdge(entry, exit); err != nil {
		return nil, err
	}

	spread := opts.MaxDepth - opts.MinDepth
	if spread < 0 {
		spread = 0
	}
	gen := &generation{
		g:        g,
		rng:      rng,
		opts:     opts,
		maxDepth: opts.MinDepth + rng.Intn(spread+1),
	}

	queue := []openTask{{b: entry, end: exit, depth: 0}}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		more, err := gen.expand(t)
		if err != nil {
			return nil, err
		}
		queue = append(queue, more...)
	}

	if err := gen.decorateBreakContinue(); err != nil {
		return nil, err
	}

	if err := g.Freeze(); err != nil {
		return nil, err
	}
	return g, nil
}

// enabledConstructs lists the constructs expand may pick among at depth.
func (gn *generation) enabledConstructs() []construct {
	var cs []construct
	if gn.opts.AllowBasic {
		cs = append(cs, constructBasic)
	}
	if gn.opts.AllowSelection {
		cs = append(cs, constructSelection)
	}
	if gn.opts.AllowSwitchDefault {
		cs = append(cs, constructSwitch)
	}
	if gn.opts.AllowLoop {
		cs = append(cs, constructLoop)
	}
	return cs
}

// expand assigns a construct to t.b, or leaves it as a terminal basic edge
// to t.end if depth has been reached or no construct is enabled.
func (gn *generation) expand(t openTask) ([]openTask, error) {
	if t.depth >= gn.maxDepth {
		return nil, nil
	}
	cs := gn.enabledConstructs()
	if len(cs) == 0 {
		return nil, nil
	}
	switch cs[gn.rng.Intn(len(cs))] {
	case constructBasic:
		return gn.expandBasic(t)
	case constructSelection:
		return gn.expandSelection(t)
	case constructSwitch:
		return gn.expandSwitch(t)
	case constructLoop:
		return gn.expandLoop(t)
	default:
		return nil, nil
	}
}

func (gn *generation) expandBasic(t openTask) ([]openTask, error) {
	n, err := gn.g.AddBlock()
	if err != nil {
		return nil, err
	}
	if err := gn.g.RemoveEdge(t.b, t.end); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(t.b, n); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(n, t.end); err != nil {
		return nil, err
	}
	return []openTask{{b: n, end: t.end, depth: t.depth + 1, loopMerges: t.loopMerges}}, nil
}

// resolveMerge decides whether this construct's merge is freshly minted or
// shared with an enclosing loop's merge. Sharing is only safe (never
// strands t.end) when t.end already equals the candidate loop merge, so
// "sharing" degrades to "reuse the id already in scope" rather than
// rewiring an already-resolved block's successors.
func (gn *generation) resolveMerge(t openTask) (m cfg.BlockID, shared bool, err error) {
	if len(t.loopMerges) > 0 && gn.rng.Float64() < gn.opts.MergeShareProb {
		candidate := t.loopMerges[len(t.loopMerges)-1]
		if candidate == t.end {
			return candidate, true, nil
		}
	}
	m, err = gn.g.AddBlock()
	return m, false, err
}

func (gn *generation) expandSelection(t openTask) ([]openTask, error) {
	m, shared, err := gn.resolveMerge(t)
	if err != nil {
		return nil, err
	}
	falseB, err := gn.g.AddBlock()
	if err != nil {
		return nil, err
	}
	trueB, err := gn.g.AddBlock()
	if err != nil {
		return nil, err
	}

	if err := gn.g.RemoveEdge(t.b, t.end); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(t.b, falseB); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(t.b, trueB); err != nil {
		return nil, err
	}
	if err := gn.g.SetAttr(t.b, cfg.AttrSelectionHeader); err != nil {
		return nil, err
	}
	if err := gn.g.SetMerge(t.b, m); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(falseB, m); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(trueB, m); err != nil {
		return nil, err
	}

	tasks := []openTask{
		{b: falseB, end: m, depth: t.depth + 1, loopMerges: t.loopMerges},
		{b: trueB, end: m, depth: t.depth + 1, loopMerges: t.loopMerges},
	}
	if !shared {
		if err := gn.g.AddEdge(m, t.end); err != nil {
			return nil, err
		}
		tasks = append(tasks, openTask{b: m, end: t.end, depth: t.depth, loopMerges: t.loopMerges})
	}
	return tasks, nil
}

func (gn *generation) expandSwitch(t openTask) ([]openTask, error) {
	m, shared, err := gn.resolveMerge(t)
	if err != nil {
		return nil, err
	}

	spread := gn.opts.MaxSucc - gn.opts.MinSucc
	if spread < 0 {
		spread = 0
	}
	k := gn.opts.MinSucc + gn.rng.Intn(spread+1)
	if k < 2 {
		k = 2
	}

	dests := make([]cfg.BlockID, k)
	for i := range dests {
		id, err := gn.g.AddBlock()
		if err != nil {
			return nil, err
		}
		dests[i] = id
	}

	if err := gn.g.RemoveEdge(t.b, t.end); err != nil {
		return nil, err
	}
	for _, d := range dests {
		if err := gn.g.AddEdge(t.b, d); err != nil {
			return nil, err
		}
	}
	if err := gn.g.SetAttr(t.b, cfg.AttrSelectionHeader); err != nil {
		return nil, err
	}
	if err := gn.g.SetAttr(t.b, cfg.AttrSwitchBlock); err != nil {
		return nil, err
	}
	if err := gn.g.SetMerge(t.b, m); err != nil {
		return nil, err
	}

	var tasks []openTask
	defaultIdx := k - 1
	for i, d := range dests {
		if i == defaultIdx {
			if err := gn.g.AddEdge(d, m); err != nil {
				return nil, err
			}
			tasks = append(tasks, openTask{b: d, end: m, depth: t.depth + 1, loopMerges: t.loopMerges})
			continue
		}
		next := dests[i+1]
		target := m
		if gn.opts.AllowSwitchFallthrough && gn.rng.Intn(2) == 1 {
			target = next
		}
		if err := gn.g.AddEdge(d, target); err != nil {
			return nil, err
		}
		tasks = append(tasks, openTask{b: d, end: target, depth: t.depth + 1, loopMerges: t.loopMerges})
	}

	if !shared {
		if err := gn.g.AddEdge(m, t.end); err != nil {
			return nil, err
		}
		tasks = append(tasks, openTask{b: m, end: t.end, depth: t.depth, loopMerges: t.loopMerges})
	}
	return tasks, nil
}

func (gn *generation) expandLoop(t openTask) ([]openTask, error) {
	m, shared, err := gn.resolveMerge(t)
	if err != nil {
		return nil, err
	}
	body, err := gn.g.AddBlock()
	if err != nil {
		return nil, err
	}

	if err := gn.g.RemoveEdge(t.b, t.end); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(t.b, m); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(t.b, body); err != nil {
		return nil, err
	}
	if err := gn.g.SetAttr(t.b, cfg.AttrSelectionHeader); err != nil {
		return nil, err
	}
	if err := gn.g.SetAttr(t.b, cfg.AttrLoopHeader); err != nil {
		return nil, err
	}
	if err := gn.g.SetMerge(t.b, m); err != nil {
		return nil, err
	}
	if err := gn.g.AddEdge(body, t.b); err != nil {
		return nil, err
	}

	gn.loops = append(gn.loops, loopRecord{header: t.b, merge: m, body: body})

	tasks := []openTask{
		{b: body, end: t.b, depth: t.depth + 1, loopMerges: append(append([]cfg.BlockID{}, t.loopMerges...), m)},
	}
	if !shared {
		if err := gn.g.AddEdge(m, t.end); err != nil {
			return nil, err
		}
		tasks = append(tasks, openTask{b: m, end: t.end, depth: t.depth, loopMerges: t.loopMerges})
	}
	return tasks, nil
}

// decorateBreakContinue walks each generated loop's body and rewrites
// eligible blocks into BreakBlock/ContinueBlock per spec.md §4.3.
func (gn *generation) decorateBreakContinue() error {
	if !gn.opts.AllowBreak && !gn.opts.AllowContinue {
		return nil
	}
	for _, lr := range gn.loops {
		candidates := gn.reachableBeforeMergeOrHeader(lr.body, lr.merge, lr.header)
		for _, b := range candidates {
			if gn.rng.Float64() >= gn.opts.BreakContinueProb {
				continue
			}
			if err := gn.maybeDecorate(b, lr); err != nil {
				return err
			}
		}
	}
	return nil
}

// reachableBeforeMergeOrHeader returns blocks reachable from start without
// crossing merge, re-entering header (the loop's own back-edge target),
// or entering any other loop's header — spec.md §4.3's "reachable from
// the body before either the merge or another loop header is
// encountered." Stopping only at this loop's own merge/header would let
// a nested loop's body get decorated with a BreakBlock/ContinueBlock
// aimed at the wrong (outer) loop.
func (gn *generation) reachableBeforeMergeOrHeader(start, merge, header cfg.BlockID) []cfg.BlockID {
	seen := map[cfg.BlockID]bool{}
	var order []cfg.BlockID
	queue := []cfg.BlockID{start}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if seen[b] || b == merge || b == header {
			continue
		}
		if b != start && gn.g.IsLoopHeader(b) {
			continue
		}
		seen[b] = true
		order = append(order, b)
		for _, s := range gn.g.OutEdges(b) {
			if !seen[s] {
				queue = append(queue, s)
			}
		}
	}
	return order
}

func (gn *generation) maybeDecorate(b cfg.BlockID, lr loopRecord) error {
	if gn.g.IsHeader(b) {
		return nil
	}
	if !gn.g.IsBasic(b) {
		return nil
	}
	succ, err := gn.g.EdgeIndexToDst(b, 0)
	if err != nil {
		return err
	}
	if succ == lr.header {
		return nil
	}
	if gn.g.InDegree(succ) == 1 {
		// b is succ's sole predecessor; rewriting would strand succ.
		return nil
	}

	var choices []cfg.Attr
	if gn.opts.AllowBreak {
		choices = append(choices, cfg.AttrBreakBlock)
	}
	if gn.opts.AllowContinue {
		choices = append(choices, cfg.AttrContinueBlock)
	}
	if len(choices) == 0 {
		return nil
	}
	chosen := choices[gn.rng.Intn(len(choices))]

	if err := gn.g.RemoveEdge(b, succ); err != nil {
		return err
	}
	if chosen == cfg.AttrBreakBlock {
		if err := gn.g.AddEdge(b, lr.merge); err != nil {
			return err
		}
	} else {
		if err := gn.g.AddEdge(b, lr.header); err != nil {
			return err
		}
	}
	return gn.g.SetAttr(b, chosen)
}
