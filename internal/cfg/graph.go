// Package cfg implements flesh's structured control-flow graph: an
// arena-of-blocks model with stable integer ids so a block can be the
// shared merge of several headers without any header owning it.
package cfg

import (
	"fmt"
	"sort"

	"github.com/flesh-fuzz/flesh/domain"
)

// BlockID identifies a block within a single Graph. The entry block is
// conventionally id 1.
type BlockID int

// Attr is a boolean block attribute. A block may carry several.
type Attr int

const (
	AttrEntry Attr = iota
	AttrSelectionHeader
	AttrLoopHeader
	AttrSwitchBlock
	AttrBreakBlock
	AttrContinueBlock
)

func (a Attr) String() string {
	switch a {
	case AttrEntry:
		return "entry"
	case AttrSelectionHeader:
		return "selection_header"
	case AttrLoopHeader:
		return "loop_header"
	case AttrSwitchBlock:
		return "switch_block"
	case AttrBreakBlock:
		return "break_block"
	case AttrContinueBlock:
		return "continue_block"
	default:
		return "unknown"
	}
}

func attrFromString(s string) (Attr, error) {
	switch s {
	case "entry":
		return AttrEntry, nil
	case "selection_header":
		return AttrSelectionHeader, nil
	case "loop_header":
		return AttrLoopHeader, nil
	case "switch_block":
		return AttrSwitchBlock, nil
	case "break_block":
		return AttrBreakBlock, nil
	case "continue_block":
		return AttrContinueBlock, nil
	default:
		return 0, domain.NewInvalidCFGError(fmt.Sprintf("unknown attribute %q", s), nil)
	}
}

// Block is one node of the graph. Out is ordered — the slice index IS the
// branch numbering the directions vector indexes into.
type Block struct {
	ID       BlockID
	attrs    map[Attr]struct{}
	merge    BlockID
	hasMerge bool
	out      []BlockID
	in       []BlockID
}

func newBlock(id BlockID) *Block {
	return &Block{ID: id, attrs: make(map[Attr]struct{})}
}

func (b *Block) hasAttr(a Attr) bool {
	_, ok := b.attrs[a]
	return ok
}

// Graph is a mutable-until-frozen control-flow graph.
type Graph struct {
	blocks map[BlockID]*Block
	entry  BlockID
	nextID BlockID
	frozen bool
}

// NewGraph returns an empty, mutable graph.
func NewGraph() *Graph {
	return &Graph{blocks: make(map[BlockID]*Block), nextID: 1}
}

// AddBlock allocates a new block and returns its id. The first block ever
// added to a Graph is marked AttrEntry and becomes Entry().
func (g *Graph) AddBlock() (BlockID, error) {
	if g.frozen {
		return 0, domain.NewInvalidCFGError("cannot add a block to a frozen graph", nil)
	}
	id := g.nextID
	g.nextID++
	b := newBlock(id)
	if len(g.blocks) == 0 {
		b.attrs[AttrEntry] = struct{}{}
		g.entry = id
	}
	g.blocks[id] = b
	return id, nil
}

func (g *Graph) block(id BlockID) (*Block, error) {
	b, ok := g.blocks[id]
	if !ok {
		return nil, domain.NewUnknownBlockError(fmt.Sprintf("no such block: %d", id))
	}
	return b, nil
}

// AddEdge appends a new out-edge from -> to. Self-loops and duplicate
// edges to the same ordered pair are rejected (canonical-form invariant).
func (g *Graph) AddEdge(from, to BlockID) error {
	if g.frozen {
		return domain.NewInvalidCFGError("cannot add an edge to a frozen graph", nil)
	}
	if from == to {
		return domain.NewInvalidCFGError(fmt.Sprintf("self-loop rejected at block %d", from), nil)
	}
	fb, err := g.block(from)
	if err != nil {
		return err
	}
	tb, err := g.block(to)
	if err != nil {
		return err
	}
	for _, existing := range fb.out {
		if existing == to {
			return domain.NewInvalidCFGError(
				fmt.Sprintf("duplicate edge %d -> %d", from, to), nil)
		}
	}
	fb.out = append(fb.out, to)
	tb.in = append(tb.in, from)
	return nil
}

// RemoveEdge removes the out-edge from -> to.
func (g *Graph) RemoveEdge(from, to BlockID) error {
	if g.frozen {
		return domain.NewInvalidCFGError("cannot remove an edge from a frozen graph", nil)
	}
	fb, err := g.block(from)
	if err != nil {
		return err
	}
	tb, err := g.block(to)
	if err != nil {
		return err
	}
	idx := -1
	for i, d := range fb.out {
		if d == to {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.NewUnknownEdgeError(fmt.Sprintf("no edge %d -> %d", from, to))
	}
	fb.out = append(fb.out[:idx], fb.out[idx+1:]...)

	jdx := -1
	for i, s := range tb.in {
		if s == from {
			jdx = i
			break
		}
	}
	if jdx != -1 {
		tb.in = append(tb.in[:jdx], tb.in[jdx+1:]...)
	}
	return nil
}

// SetAttr marks b with attr. Returns domain.KindDuplicateAttribute if
// already set.
func (g *Graph) SetAttr(b BlockID, attr Attr) error {
	if g.frozen {
		return domain.NewInvalidCFGError("cannot set an attribute on a frozen graph", nil)
	}
	blk, err := g.block(b)
	if err != nil {
		return err
	}
	if blk.hasAttr(attr) {
		return domain.NewDuplicateAttributeError(
			fmt.Sprintf("block %d already carries attribute %s", b, attr))
	}
	blk.attrs[attr] = struct{}{}
	return nil
}

// UnsetAttr clears attr from b. A no-op if not set.
func (g *Graph) UnsetAttr(b BlockID, attr Attr) error {
	if g.frozen {
		return domain.NewInvalidCFGError("cannot unset an attribute on a frozen graph", nil)
	}
	blk, err := g.block(b)
	if err != nil {
		return err
	}
	delete(blk.attrs, attr)
	return nil
}

// SetMerge records b's merge block. b must carry AttrSelectionHeader.
func (g *Graph) SetMerge(b, merge BlockID) error {
	if g.frozen {
		return domain.NewInvalidCFGError("cannot set merge on a frozen graph", nil)
	}
	blk, err := g.block(b)
	if err != nil {
		return err
	}
	if !blk.hasAttr(AttrSelectionHeader) {
		return domain.NewInvalidCFGError(
			fmt.Sprintf("block %d is not a header, cannot carry a merge", b), nil)
	}
	if _, err := g.block(merge); err != nil {
		return err
	}
	if merge == b {
		return domain.NewInvalidCFGError("merge cannot equal its own header", nil)
	}
	blk.merge = merge
	blk.hasMerge = true
	return nil
}

// Entry returns the graph's single entry block.
func (g *Graph) Entry() BlockID { return g.entry }

// OutEdges returns a copy of b's ordered successor list.
func (g *Graph) OutEdges(b BlockID) []BlockID {
	blk, ok := g.blocks[b]
	if !ok {
		return nil
	}
	out := make([]BlockID, len(blk.out))
	copy(out, blk.out)
	return out
}

// OutDegree returns len(OutEdges(b)).
func (g *Graph) OutDegree(b BlockID) int {
	blk, ok := g.blocks[b]
	if !ok {
		return 0
	}
	return len(blk.out)
}

// InDegree returns the number of edges pointing at b.
func (g *Graph) InDegree(b BlockID) int {
	blk, ok := g.blocks[b]
	if !ok {
		return 0
	}
	return len(blk.in)
}

// IsBasic reports whether b has exactly one successor.
func (g *Graph) IsBasic(b BlockID) bool { return g.OutDegree(b) == 1 }

// IsExit reports whether b has no successors.
func (g *Graph) IsExit(b BlockID) bool { return g.OutDegree(b) == 0 }

// IsSelectionHeader reports whether b carries AttrSelectionHeader.
func (g *Graph) IsSelectionHeader(b BlockID) bool { return g.hasAttr(b, AttrSelectionHeader) }

// IsHeader is an alias for IsSelectionHeader (every header carries it).
func (g *Graph) IsHeader(b BlockID) bool { return g.IsSelectionHeader(b) }

// IsLoopHeader reports whether b carries AttrLoopHeader.
func (g *Graph) IsLoopHeader(b BlockID) bool { return g.hasAttr(b, AttrLoopHeader) }

// IsSwitch reports whether b carries AttrSwitchBlock.
func (g *Graph) IsSwitch(b BlockID) bool { return g.hasAttr(b, AttrSwitchBlock) }

// IsBreak reports whether b carries AttrBreakBlock.
func (g *Graph) IsBreak(b BlockID) bool { return g.hasAttr(b, AttrBreakBlock) }

// IsContinue reports whether b carries AttrContinueBlock.
func (g *Graph) IsContinue(b BlockID) bool { return g.hasAttr(b, AttrContinueBlock) }

func (g *Graph) hasAttr(b BlockID, attr Attr) bool {
	blk, ok := g.blocks[b]
	if !ok {
		return false
	}
	return blk.hasAttr(attr)
}

// Merge returns b's merge block, or ok=false if b carries no merge.
func (g *Graph) Merge(b BlockID) (BlockID, bool) {
	blk, ok := g.blocks[b]
	if !ok {
		return 0, false
	}
	return blk.merge, blk.hasMerge
}

// EdgeIndexToDst resolves out-edge i of b. Both the path oracle and the
// code builder go through this single predicate so they can never
// disagree about which destination an edge index names.
func (g *Graph) EdgeIndexToDst(b BlockID, i int) (BlockID, error) {
	blk, err := g.block(b)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(blk.out) {
		return 0, domain.NewUnknownEdgeError(
			fmt.Sprintf("block %d has no out-edge at index %d", b, i))
	}
	return blk.out[i], nil
}

// BlockIDs returns all block ids in ascending order.
func (g *Graph) BlockIDs() []BlockID {
	ids := make([]BlockID, 0, len(g.blocks))
	for id := range g.blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Size returns the number of blocks in the graph.
func (g *Graph) Size() int { return len(g.blocks) }

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

// Freeze validates all CFG invariants and marks the graph immutable.
func (g *Graph) Freeze() error {
	if err := g.Validate(); err != nil {
		return err
	}
	g.frozen = true
	return nil
}
