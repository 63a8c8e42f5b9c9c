package cfg

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Equal reports whether g and other have identical block-attribute maps
// (including merge) and identical ordered edge lists.
func (g *Graph) Equal(other *Graph) bool {
	if other == nil {
		return false
	}
	if len(g.blocks) != len(other.blocks) {
		return false
	}
	if g.entry != other.entry {
		return false
	}
	for id, b := range g.blocks {
		ob, ok := other.blocks[id]
		if !ok {
			return false
		}
		if !sameAttrs(b.attrs, ob.attrs) {
			return false
		}
		if b.hasMerge != ob.hasMerge || (b.hasMerge && b.merge != ob.merge) {
			return false
		}
		if len(b.out) != len(ob.out) {
			return false
		}
		for i := range b.out {
			if b.out[i] != ob.out[i] {
				return false
			}
		}
	}
	return true
}

func sameAttrs(a, b map[Attr]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// Hash is an FNV-1a hash over a canonical encoding of the graph: ascending
// block ids, each with its sorted attribute names, merge (if any), and
// ordered out-edges. Grounded on the teacher's hash/fnv use in its MinHash
// signature computation.
func (g *Graph) Hash() uint64 {
	h := fnv.New64a()
	for _, id := range g.BlockIDs() {
		b := g.blocks[id]
		fmt.Fprintf(h, "b%d:", id)

		names := make([]string, 0, len(b.attrs))
		for a := range b.attrs {
			names = append(names, a.String())
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(h, "%s,", n)
		}

		if b.hasMerge {
			fmt.Fprintf(h, "m%d;", b.merge)
		}
		for _, d := range b.out {
			fmt.Fprintf(h, "%d,", d)
		}
		h.Write([]byte{';'})
	}
	return h.Sum64()
}
