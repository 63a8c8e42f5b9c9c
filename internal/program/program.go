// Package program implements flesh's Program Assembly (C6): wrapping a
// code builder's emitted body in the target's full program skeleton —
// buffer bindings, entry point, and (for GlobalArray) the directions
// input buffer.
package program

import (
	"github.com/flesh-fuzz/flesh/internal/lang"
)

// Assemble wraps body in desc's module skeleton for codeType and returns
// formatted source text ready to write to disk. len(directions) is passed
// to desc.FullProgram, whose skeletons do not use it; directions are not
// embedded here (LocalArray/HeaderGuard bake their own constants into body).
func Assemble(desc lang.Descriptor, codeType lang.CodeType, body string, directions []uint32) string {
	full := desc.FullProgram(codeType, body, len(directions))
	return desc.FormatCode(full)
}

// AssembleGLSLTest wraps body in desc's full GLSL program skeleton and
// embeds that as the compute shader of a shadertrap script asserting the
// runtime-visited block sequence equals expectedPath. desc must be the
// lang.GLSL descriptor; other targets have no shadertrap runner.
func AssembleGLSLTest(desc lang.Descriptor, codeType lang.CodeType, body string, directions []uint32, expectedPath []int) string {
	shader := desc.FormatCode(desc.FullProgram(codeType, body, len(directions)))
	return AssembleShaderTest(shader, directions, expectedPath)
}
