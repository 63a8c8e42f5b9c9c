package lang

import (
	"fmt"
	"strings"
)

// wgslDescriptor targets WGSL compute shaders. WGSL switch statements do
// not fall through between cases, so AllowsSwitchFallthrough is false —
// the generator must not request it, and the code builder asserts none
// is needed (spec's UnsupportedFeature kind).
func wgslDescriptor() Descriptor {
	return Descriptor{
		Target:                  WGSL,
		AllowsSwitchFallthrough: false,
		Extension:               "wgsl",

		BlockEmit: func(blockID int) string {
			return fmt.Sprintf("output_data[cursor] = %d; cursor = cursor + 1u;\n", blockID)
		},
		SetAndIncControl: func() string {
			return "control = input_data[dcursor]; dcursor = dcursor + 1u;\n"
		},
		ControlVarRef: func() string { return "control" },
		ContinueCode: func() string { return "continue;\n" },
		BreakCode:    func() string { return "break;\n" },
		ExitCode:     func() string { return "return;\n" },

		SelectionTemplate: func(cond, thenBody string) string {
			return fmt.Sprintf("if (%s == 1u) {\n%s}\n", cond, indentLines(thenBody))
		},
		ElseTemplate: func(ifPart, elseBody string) string {
			trimmed := ifPart
			if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\n' {
				trimmed = trimmed[:len(trimmed)-1]
			}
			return fmt.Sprintf("%s else {\n%s}\n", trimmed, indentLines(elseBody))
		},
		LoopTemplate: func(ct CodeType, headerEmit, body string, iterCount int) string {
			if ct == HeaderGuard {
				return fmt.Sprintf(
					"for (var iter: u32 = 0u; iter < %du; iter = iter + 1u) {\n%s%s}\n",
					iterCount, indentLines(headerEmit), indentLines(body))
			}
			return fmt.Sprintf("loop {\n%s%s}\n", indentLines(headerEmit), indentLines(body))
		},
		SwitchCaseTemplate: func(caseIndex int, body string) string {
			return fmt.Sprintf("case %d: {\n%s}\n", caseIndex, indentLines(body))
		},
		SwitchDefaultTemplate: func(body string) string {
			return fmt.Sprintf("default: {\n%s}\n", indentLines(body))
		},
		SwitchFullTemplate: func(label int, cases string) string {
			return fmt.Sprintf("switch (control) {\n%s}\n", indentLines(cases))
		},
		SwitchBreak: func(label int) string {
			// WGSL cases never fall through — control falls out of the
			// switch automatically, so there is nothing to emit.
			return ""
		},

		FullProgram: func(ct CodeType, body string, numInputs int) string {
			bindings := "@group(0) @binding(0) var<storage, read_write> output_data: array<u32>;\n"
			if ct == GlobalArray {
				bindings += "@group(0) @binding(1) var<storage, read> input_data: array<u32>;\n"
			}
			// LocalArray/HeaderGuard bake their own constant arrays into
			// body at the point controlRead first needs them.
			return fmt.Sprintf(
				"%s\n@compute @workgroup_size(1, 1, 1)\nfn main() {\n"+
					"  var cursor: u32 = 0u;\n  var dcursor: u32 = 0u;\n  var control: u32 = 0u;\n"+
					"%s}\n", bindings, indentLines(body))
		},
		FormatCode: indentLines,

		ConstArrayDecl: func(name string, values []uint32) string {
			strs := make([]string, len(values))
			for i, v := range values {
				strs[i] = fmt.Sprintf("%du", v)
			}
			return fmt.Sprintf("const %s: array<u32, %d> = array<u32, %d>(%s);\nvar %s_i: u32 = 0u;\n",
				name, len(values), len(values), strings.Join(strs, ", "), name)
		},
		ReadConstArray: func(name string) string {
			return fmt.Sprintf("control = %s[%s_i]; %s_i = %s_i + 1u;\n", name, name, name, name)
		},
	}
}
