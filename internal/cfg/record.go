package cfg

import (
	"fmt"
	"sort"

	"github.com/flesh-fuzz/flesh/domain"
)

// NodeRecord is the wire form of one Block (spec §6.1: "nodes: [(id, attrs)]").
type NodeRecord struct {
	ID    BlockID  `json:"id" yaml:"id"`
	Attrs []string `json:"attrs" yaml:"attrs"`
	Merge *BlockID `json:"merge,omitempty" yaml:"merge,omitempty"`
}

// EdgeRecord is the wire form of one edge (spec §6.1: "edges: [(src, dst, key, attrs)]").
// Key is the edge's position in From's out-edge order — the branch index
// the directions vector indexes into — so it is reconstructed on load
// rather than carried as a separate field.
type EdgeRecord struct {
	From BlockID `json:"from" yaml:"from"`
	To   BlockID `json:"to" yaml:"to"`
}

// Record is the full serializable form of a Graph.
type Record struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges []EdgeRecord `json:"edges" yaml:"edges"`
}

// MarshalRecord produces the wire form of g. Edges are emitted grouped by
// From block in out-edge order, so re-ingesting via UnmarshalRecord
// reproduces identical branch numbering.
func (g *Graph) MarshalRecord() Record {
	ids := g.BlockIDs()
	rec := Record{
		Nodes: make([]NodeRecord, 0, len(ids)),
		Edges: make([]EdgeRecord, 0),
	}
	for _, id := range ids {
		b := g.blocks[id]
		names := make([]string, 0, len(b.attrs))
		for a := range b.attrs {
			names = append(names, a.String())
		}
		sort.Strings(names)

		nr := NodeRecord{ID: id, Attrs: names}
		if b.hasMerge {
			m := b.merge
			nr.Merge = &m
		}
		rec.Nodes = append(rec.Nodes, nr)

		for _, dst := range b.out {
			rec.Edges = append(rec.Edges, EdgeRecord{From: id, To: dst})
		}
	}
	return rec
}

// UnmarshalRecord reconstructs a Graph from its wire form and re-validates
// it — re-validation on load is not optional (spec §6.1).
func UnmarshalRecord(rec Record) (*Graph, error) {
	g := &Graph{blocks: make(map[BlockID]*Block)}
	var maxID BlockID
	haveEntry := false

	for _, n := range rec.Nodes {
		if _, exists := g.blocks[n.ID]; exists {
			return nil, domain.NewInvalidCFGError(
				fmt.Sprintf("duplicate node id %d in record", n.ID), nil)
		}
		b := newBlock(n.ID)
		for _, name := range n.Attrs {
			attr, err := attrFromString(name)
			if err != nil {
				return nil, err
			}
			b.attrs[attr] = struct{}{}
		}
		if n.Merge != nil {
			b.merge = *n.Merge
			b.hasMerge = true
		}
		g.blocks[n.ID] = b
		if n.ID > maxID {
			maxID = n.ID
		}
		if b.hasAttr(AttrEntry) {
			if haveEntry {
				return nil, domain.NewInvalidCFGError("record carries more than one entry block", nil)
			}
			g.entry = n.ID
			haveEntry = true
		}
	}
	if !haveEntry {
		return nil, domain.NewInvalidCFGError("record carries no entry block", nil)
	}
	g.nextID = maxID + 1

	for _, e := range rec.Edges {
		from, ok := g.blocks[e.From]
		if !ok {
			return nil, domain.NewUnknownBlockError(fmt.Sprintf("edge references unknown block %d", e.From))
		}
		to, ok := g.blocks[e.To]
		if !ok {
			return nil, domain.NewUnknownBlockError(fmt.Sprintf("edge references unknown block %d", e.To))
		}
		from.out = append(from.out, e.To)
		to.in = append(to.in, e.From)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.frozen = true
	return g, nil
}
