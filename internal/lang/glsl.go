package lang

import (
	"fmt"
	"strings"
)

// glslDescriptor targets GLSL compute shaders. GLSL switch cases do fall
// through, same as WebAssembly. Its SwitchBreak intentionally returns
// the same "break;" statement a GLSL loop's own break would emit — spec's
// design notes reproduce this as intended rather than patched, since the
// code builder never emits a SwitchBreak for a block already carrying
// BreakBlock/ContinueBlock (those cases are excluded upstream).
func glslDescriptor() Descriptor {
	return Descriptor{
		Target:                  GLSL,
		AllowsSwitchFallthrough: true,
		Extension:               "comp",

		BlockEmit: func(blockID int) string {
			return fmt.Sprintf("output_data.data[cursor] = %d; cursor = cursor + 1;\n", blockID)
		},
		SetAndIncControl: func() string {
			return "control = input_data.data[dcursor]; dcursor = dcursor + 1;\n"
		},
		ControlVarRef: func() string { return "control" },
		ContinueCode: func() string { return "continue;\n" },
		BreakCode:    func() string { return "break;\n" },
		ExitCode:     func() string { return "return;\n" },

		SelectionTemplate: func(cond, thenBody string) string {
			return fmt.Sprintf("if (%s == 1) {\n%s}\n", cond, indentLines(thenBody))
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
					"for (int iter = 0; iter < %d; iter++) {\n%s%s}\n",
					iterCount, indentLines(headerEmit), indentLines(body))
			}
			return fmt.Sprintf("while (true) {\n%s%s}\n", indentLines(headerEmit), indentLines(body))
		},
		SwitchCaseTemplate: func(caseIndex int, body string) string {
			return fmt.Sprintf("case %d:\n%s", caseIndex, indentLines(body))
		},
		SwitchDefaultTemplate: func(body string) string {
			return fmt.Sprintf("default:\n%s", indentLines(body))
		},
		SwitchFullTemplate: func(label int, cases string) string {
			return fmt.Sprintf("switch (int(control)) {\n%s}\n", indentLines(cases))
		},
		SwitchBreak: func(label int) string {
			return "break;\n"
		},

		FullProgram: func(ct CodeType, body string, numInputs int) string {
			bindings := "layout(std430, binding = 0) buffer OutputBuf { uint data[]; } output_data;\n"
			if ct == GlobalArray {
				bindings += "layout(std430, binding = 1) readonly buffer InputBuf { uint data[]; } input_data;\n"
			}
			// LocalArray/HeaderGuard bake their own constant arrays into
			// body at the point controlRead first needs them.
			return fmt.Sprintf(
				"#version 310 es\nlayout(local_size_x = 1, local_size_y = 1, local_size_z = 1) in;\n\n"+
					"%s\nvoid main() {\n  uint cursor = 0u;\n  uint dcursor = 0u;\n  uint control = 0u;\n"+
					"%s}\n", bindings, indentLines(body))
		},
		FormatCode: indentLines,

		ConstArrayDecl: func(name string, values []uint32) string {
			strs := make([]string, len(values))
			for i, v := range values {
				strs[i] = fmt.Sprintf("%du", v)
			}
			return fmt.Sprintf("const uint %s[%d] = uint[%d](%s);\nuint %s_i = 0u;\n",
				name, len(values), len(values), strings.Join(strs, ", "), name)
		},
		ReadConstArray: func(name string) string {
			return fmt.Sprintf("control = %s[%s_i]; %s_i = %s_i + 1u;\n", name, name, name, name)
		},
	}
}
