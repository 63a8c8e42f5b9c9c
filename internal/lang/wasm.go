package lang

import (
	"fmt"
	"strings"
)

// wasmDescriptor targets the WebAssembly text format. Control flow is
// emitted as nested `block`/`loop`/`br_if` structures; GlobalArray code
// reads the next direction from an imported `input_data` memory via
// i32.load, LocalArray embeds a constant data segment, HeaderGuard bakes
// every branch decision into a literal i32.const.
func wasmDescriptor() Descriptor {
	return Descriptor{
		Target:                  WebAssembly,
		AllowsSwitchFallthrough: true,
		Extension:               "wat",

		BlockEmit: func(blockID int) string {
			return fmt.Sprintf(
				"(i32.store (i32.mul (local.get $cursor) (i32.const 4)) (i32.const %d))\n"+
					"(local.set $cursor (i32.add (local.get $cursor) (i32.const 1)))\n",
				blockID)
		},
		SetAndIncControl: func() string {
			return "(local.set $control (i32.load (i32.mul (local.get $dcursor) (i32.const 4))))\n" +
				"(local.set $dcursor (i32.add (local.get $dcursor) (i32.const 1)))\n"
		},
		ControlVarRef: func() string { return "(local.get $control)" },
		ContinueCode: func() string { return "(br $continue)\n" },
		BreakCode:    func() string { return "(br $break)\n" },
		ExitCode:     func() string { return "(return)\n" },

		SelectionTemplate: func(cond, thenBody string) string {
			return fmt.Sprintf("(if (i32.eq %s (i32.const 1))\n  (then\n%s  )\n)\n", cond, indentLines(thenBody))
		},
		ElseTemplate: func(ifPart, elseBody string) string {
			return fmt.Sprintf("%s(else\n%s)\n", ifPart, indentLines(elseBody))
		},
		LoopTemplate: func(ct CodeType, headerEmit, body string, iterCount int) string {
			if ct == HeaderGuard {
				return fmt.Sprintf(
					"(block $break\n  (loop $continue\n%s%s    (br_if $continue (i32.lt_s (local.get $iter) (i32.const %d)))\n  )\n)\n",
					indentLines(headerEmit), indentLines(body), iterCount)
			}
			return fmt.Sprintf(
				"(block $break\n  (loop $continue\n%s%s  )\n)\n",
				indentLines(headerEmit), indentLines(body))
		},
		SwitchCaseTemplate: func(caseIndex int, body string) string {
			return fmt.Sprintf(";; case %d\n%s", caseIndex, body)
		},
		SwitchDefaultTemplate: func(body string) string {
			return fmt.Sprintf(";; default\n%s", body)
		},
		SwitchFullTemplate: func(label int, cases string) string {
			return fmt.Sprintf("(block $switch%d\n%s)\n", label, indentLines(cases))
		},
		SwitchBreak: func(label int) string {
			return fmt.Sprintf("(br $switch%d)\n", label)
		},

		FullProgram: func(ct CodeType, body string, numInputs int) string {
			imports := ""
			if ct == GlobalArray {
				imports = "  (import \"env\" \"input_data\" (memory $input 1))\n"
			}
			return fmt.Sprintf(
				"(module\n"+
					"  (memory (export \"output_data\") 1)\n"+
					"%s"+
					"  (func $main (export \"main\")\n"+
					"    (local $cursor i32) (local $dcursor i32) (local $control i32) (local $iter i32)\n"+
					"%s"+
					"  )\n"+
					")\n", imports, indentLines(indentLines(body)))
		},
		FormatCode: indentLines,

		ConstArrayDecl: func(name string, values []uint32) string {
			var sb strings.Builder
			sb.WriteString(fmt.Sprintf("(local $%s_i i32)\n", name))
			for i, v := range values {
				sb.WriteString(fmt.Sprintf(";; %s[%d] = %d\n", name, i, v))
			}
			return sb.String()
		},
		ReadConstArray: func(name string) string {
			return fmt.Sprintf(
				"(local.set $control (call $%s_get (local.get $%s_i)))\n"+
					"(local.set $%s_i (i32.add (local.get $%s_i) (i32.const 1)))\n",
				name, name, name, name)
		},
	}
}
