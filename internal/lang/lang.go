// Package lang holds flesh's per-target language descriptors: the
// strings and rules the code builder needs to turn a CFG traversal into
// source text, modeled as a tagged variant rather than the teacher's
// duck-typed-string style (per spec's design notes on polymorphism).
package lang

import "fmt"

// Target is one of flesh's three emission targets.
type Target int

const (
	WebAssembly Target = iota
	WGSL
	GLSL
)

func (t Target) String() string {
	switch t {
	case WebAssembly:
		return "wasm"
	case WGSL:
		return "wgsl"
	case GLSL:
		return "glsl"
	default:
		return "unknown"
	}
}

// ParseTarget resolves a CLI/config string to a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "wasm", "wat", "webassembly":
		return WebAssembly, nil
	case "wgsl":
		return WGSL, nil
	case "glsl":
		return GLSL, nil
	default:
		return 0, fmt.Errorf("unknown target %q", s)
	}
}

// CodeType selects where the directions vector lives in the emitted program.
type CodeType int

const (
	// GlobalArray reads directions from an external input buffer.
	GlobalArray CodeType = iota
	// LocalArray embeds directions as a program-local constant array.
	LocalArray
	// HeaderGuard compiles every decision away into constants.
	HeaderGuard
)

func (c CodeType) String() string {
	switch c {
	case GlobalArray:
		return "global_array"
	case LocalArray:
		return "local_array"
	case HeaderGuard:
		return "header_guard"
	default:
		return "unknown"
	}
}

// ParseCodeType resolves a CLI/config string to a CodeType.
func ParseCodeType(s string) (CodeType, error) {
	switch s {
	case "global_array":
		return GlobalArray, nil
	case "local_array":
		return LocalArray, nil
	case "header_guard":
		return HeaderGuard, nil
	default:
		return 0, fmt.Errorf("unknown code_type %q", s)
	}
}

// Descriptor is the per-target record of templates and capabilities the
// code builder dispatches through. One value exists per Target, built by
// ForTarget — never via dynamic method lookup or string-typed dispatch.
type Descriptor struct {
	Target                  Target
	AllowsSwitchFallthrough bool
	Extension               string

	BlockEmit         func(blockID int) string
	SetAndIncControl  func() string
	// ControlVarRef is the expression referring to the already-assigned
	// control variable, used as the comparand in selection/switch
	// templates regardless of how it was last assigned.
	ControlVarRef     func() string
	ContinueCode      func() string
	BreakCode         func() string
	ExitCode          func() string
	SelectionTemplate func(cond, thenBody string) string
	ElseTemplate      func(ifPart, elseBody string) string
	LoopTemplate      func(ct CodeType, headerEmit, body string, iterCount int) string
	SwitchCaseTemplate    func(caseIndex int, body string) string
	SwitchDefaultTemplate func(body string) string
	SwitchFullTemplate    func(label int, cases string) string
	SwitchBreak           func(label int) string
	FullProgram           func(ct CodeType, body string, numInputs int) string
	FormatCode            func(code string) string

	// ConstArrayDecl and ReadConstArray back LocalArray mode (the whole
	// directions vector) and HeaderGuard mode (a header's precomputed
	// activation sequence): the values are embedded as a named constant
	// array plus a counter variable, advanced by one read per activation.
	ConstArrayDecl func(name string, values []uint32) string
	ReadConstArray func(name string) string
}

// Capabilities is the subset of a Descriptor the generator needs to know
// about before any code is built, so it never proposes a CFG shape a
// target cannot express (e.g. switch fallthrough under WGSL).
type Capabilities struct {
	AllowsSwitchFallthrough bool
}

// CapabilitiesFor reports what t can express.
func CapabilitiesFor(t Target) Capabilities {
	return Capabilities{AllowsSwitchFallthrough: ForTarget(t).AllowsSwitchFallthrough}
}

// ForTarget builds the Descriptor for t.
func ForTarget(t Target) Descriptor {
	switch t {
	case WebAssembly:
		return wasmDescriptor()
	case WGSL:
		return wgslDescriptor()
	case GLSL:
		return glslDescriptor()
	default:
		panic(fmt.Sprintf("lang: no descriptor for target %d", t))
	}
}
