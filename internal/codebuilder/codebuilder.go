// Package codebuilder implements flesh's code builder (C5): it turns a
// frozen, validated CFG into a single source string whose execution
// visits exactly the block sequence internal/oracle predicts for the
// same directions vector.
package codebuilder

import (
	"fmt"
	"strings"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/lang"
)

// Builder produces source text for one (graph, descriptor, code type)
// combination. It carries no state across Build calls.
type Builder struct{}

// NewBuilder returns a ready-to-use Builder.
func NewBuilder() *Builder { return &Builder{} }

type mergeFrame struct {
	merge  cfg.BlockID
	header cfg.BlockID
}

// buildCtx is per-Build working state: which blocks have been emitted
// already (each block is emitted at most once — a contract violation
// otherwise), the enclosing-construct merge stack, and — only under
// lang.HeaderGuard — each header's precomputed activation sequence.
type buildCtx struct {
	g    *cfg.Graph
	desc lang.Descriptor
	ct   lang.CodeType

	added       map[cfg.BlockID]bool
	mergeStack  []mergeFrame
	switchLabel int

	activations map[cfg.BlockID][]uint32

	// directions backs lang.LocalArray: the whole vector is baked into
	// source as one constant array, declared once at its first read.
	directions     []uint32
	localArrayRead bool
}

// localArrayName is the constant-array identifier LocalArray mode
// declares in the emitted body, shared by every header's controlRead.
const localArrayName = "local_directions"

// Build emits the control-flow body for g under desc/ct — the part of
// the source specific to this CFG, not yet wrapped in the target's
// program skeleton (that wrapping is internal/program's job, spec.md's
// Program Assembly). directions is required under lang.HeaderGuard (to
// precompute per-header constants) and under lang.LocalArray (embedded as
// a constant array in the body); it is unused for GlobalArray, which reads
// the directions from the program's input buffer.
func (b *Builder) Build(g *cfg.Graph, desc lang.Descriptor, ct lang.CodeType, directions []uint32) (string, error) {
	if !g.Frozen() {
		return "", domain.NewInvalidCFGError("code builder requires a frozen graph", nil)
	}

	bc := &buildCtx{
		g:          g,
		desc:       desc,
		ct:         ct,
		added:      make(map[cfg.BlockID]bool),
		directions: directions,
	}

	if ct == lang.HeaderGuard {
		acts, err := precomputeActivations(g, directions)
		if err != nil {
			return "", err
		}
		bc.activations = acts
	}

	return bc.emit(g.Entry(), 0)
}

// emit is the traversal's main step (spec.md §4.5). end is 0 when there is
// no region boundary (i.e. stop only on reaching an exit block or an
// already-emitted block).
func (bc *buildCtx) emit(current, end cfg.BlockID) (string, error) {
	if current == 0 || current == end || bc.added[current] {
		return "", nil
	}

	for len(bc.mergeStack) > 0 && bc.mergeStack[len(bc.mergeStack)-1].merge == current {
		bc.mergeStack = bc.mergeStack[:len(bc.mergeStack)-1]
	}
	if bc.g.IsHeader(current) {
		m, _ := bc.g.Merge(current)
		bc.mergeStack = append(bc.mergeStack, mergeFrame{merge: m, header: current})
	}

	bc.added[current] = true
	var sb strings.Builder
	if !bc.g.IsLoopHeader(current) {
		sb.WriteString(bc.desc.BlockEmit(int(current)))
	}

	switch {
	case bc.g.IsExit(current):
		sb.WriteString(bc.desc.ExitCode())
		return sb.String(), nil

	case bc.g.IsBasic(current):
		if bc.g.IsBreak(current) {
			sb.WriteString(bc.desc.BreakCode())
			return sb.String(), nil
		}
		if bc.g.IsContinue(current) {
			sb.WriteString(bc.desc.ContinueCode())
			return sb.String(), nil
		}
		succ, err := bc.g.EdgeIndexToDst(current, 0)
		if err != nil {
			return "", err
		}
		rest, err := bc.emit(succ, end)
		if err != nil {
			return "", err
		}
		sb.WriteString(rest)
		return sb.String(), nil

	case bc.g.IsLoopHeader(current):
		code, err := bc.emitLoop(current)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)

	case bc.g.IsSwitch(current):
		code, err := bc.emitSwitch(current)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)

	default:
		code, err := bc.emitSelection(current)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)
	}

	// Continue past the merge. If merge == end (including the case where
	// end is the enclosing switch's next_case_block), emit's own guard
	// above returns empty on that recursive call, so no explicit check
	// is needed here.
	m, _ := bc.g.Merge(current)
	rest, err := bc.emit(m, end)
	if err != nil {
		return "", err
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// controlRead returns the statement(s) that assign the shared "control"
// variable before a header's branch is evaluated. Under GlobalArray this
// is a runtime external-buffer read. Under LocalArray it is a read from
// the whole directions vector baked into source as one constant array,
// declared once — at whichever header's controlRead runs first — and
// merely read thereafter. Under HeaderGuard it is a constant-array
// lookup seeded from the header's own precomputed activation sequence,
// declared once per header for the same reason (each block is emitted at
// most once, however many times it executes at runtime).
func (bc *buildCtx) controlRead(header cfg.BlockID) (string, error) {
	switch bc.ct {
	case lang.HeaderGuard:
		name := fmt.Sprintf("h%d_ctl", int(header))
		decl := bc.desc.ConstArrayDecl(name, bc.activations[header])
		return decl + bc.desc.ReadConstArray(name), nil
	case lang.LocalArray:
		if bc.localArrayRead {
			return bc.desc.ReadConstArray(localArrayName), nil
		}
		bc.localArrayRead = true
		decl := bc.desc.ConstArrayDecl(localArrayName, bc.directions)
		return decl + bc.desc.ReadConstArray(localArrayName), nil
	default:
		return bc.desc.SetAndIncControl(), nil
	}
}

func (bc *buildCtx) emitSelection(header cfg.BlockID) (string, error) {
	dst := bc.g.OutEdges(header)
	if len(dst) != 2 {
		return "", domain.NewInvalidCFGError(
			fmt.Sprintf("selection header %d does not have exactly two out-edges", header), nil)
	}
	falseB, trueB := dst[0], dst[1]
	m, _ := bc.g.Merge(header)

	read, err := bc.controlRead(header)
	if err != nil {
		return "", err
	}

	trueBody, err := bc.emit(trueB, m)
	if err != nil {
		return "", err
	}
	result := bc.desc.SelectionTemplate(bc.desc.ControlVarRef(), trueBody)

	if falseB != m {
		falseBody, err := bc.emit(falseB, m)
		if err != nil {
			return "", err
		}
		result = bc.desc.ElseTemplate(result, falseBody)
	}
	return read + result, nil
}

func (bc *buildCtx) emitLoop(header cfg.BlockID) (string, error) {
	dst := bc.g.OutEdges(header)
	if len(dst) != 2 {
		return "", domain.NewInvalidCFGError(
			fmt.Sprintf("loop header %d does not have exactly two out-edges", header), nil)
	}
	body := dst[1]

	headerEmit := bc.desc.BlockEmit(int(header))
	read, err := bc.controlRead(header)
	if err != nil {
		return "", err
	}
	headerEmit += read

	bodyCode, err := bc.emit(body, header)
	if err != nil {
		return "", err
	}

	iterCount := len(bc.activations[header])
	return bc.desc.LoopTemplate(bc.ct, headerEmit, bodyCode, iterCount), nil
}

func (bc *buildCtx) emitSwitch(header cfg.BlockID) (string, error) {
	dst := bc.g.OutEdges(header)
	if len(dst) < 2 {
		return "", domain.NewInvalidCFGError(
			fmt.Sprintf("switch header %d needs at least two out-edges", header), nil)
	}
	m, _ := bc.g.Merge(header)
	defaultIdx := len(dst) - 1
	enclosingLoop := bc.closestEnclosingLoop()

	read, err := bc.controlRead(header)
	if err != nil {
		return "", err
	}

	bc.switchLabel++
	label := bc.switchLabel

	var cases strings.Builder
	for i, caseBlock := range dst {
		isDefault := i == defaultIdx

		var endBlock cfg.BlockID
		fallthroughActive := false
		if isDefault {
			// "default is the surrounding merge" (a tree-like switch with
			// no real default body): continue past the innermost enclosing
			// loop header instead of m.
			if caseBlock == bc.topMerge() {
				endBlock = enclosingLoop
			} else {
				endBlock = m
			}
		} else {
			next := dst[i+1]
			fallthroughActive = bc.hasPathNotUsingLoop(caseBlock, next, enclosingLoop)
			if fallthroughActive && !bc.desc.AllowsSwitchFallthrough {
				return "", domain.NewUnsupportedFeatureError(
					fmt.Sprintf("case %d of switch %d requires fallthrough, forbidden by target", i, header))
			}
			if fallthroughActive {
				endBlock = next
			} else {
				endBlock = m
			}
		}

		body, err := bc.emit(caseBlock, endBlock)
		if err != nil {
			return "", err
		}
		if !fallthroughActive && !bc.g.IsExit(caseBlock) && !bc.g.IsBreak(caseBlock) && !bc.g.IsContinue(caseBlock) {
			body += bc.desc.SwitchBreak(label)
		}

		if isDefault {
			cases.WriteString(bc.desc.SwitchDefaultTemplate(body))
		} else {
			cases.WriteString(bc.desc.SwitchCaseTemplate(i, body))
		}
	}

	return read + bc.desc.SwitchFullTemplate(label, cases.String()), nil
}

func (bc *buildCtx) topMerge() cfg.BlockID {
	if len(bc.mergeStack) == 0 {
		return 0
	}
	return bc.mergeStack[len(bc.mergeStack)-1].merge
}

func (bc *buildCtx) closestEnclosingLoop() cfg.BlockID {
	for i := len(bc.mergeStack) - 1; i >= 0; i-- {
		if bc.g.IsLoopHeader(bc.mergeStack[i].header) {
			return bc.mergeStack[i].header
		}
	}
	return 0
}

// hasPathNotUsingLoop reports whether there is a path from -> to in the
// CFG that never crosses loopHeader (spec's there_is_path_not_using_loop).
func (bc *buildCtx) hasPathNotUsingLoop(from, to, loopHeader cfg.BlockID) bool {
	seen := map[cfg.BlockID]bool{}
	queue := []cfg.BlockID{from}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if b == to {
			return true
		}
		if seen[b] || b == loopHeader {
			continue
		}
		seen[b] = true
		queue = append(queue, bc.g.OutEdges(b)...)
	}
	return false
}
