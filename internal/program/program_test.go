package program

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flesh-fuzz/flesh/internal/lang"
)

func TestAssemble_WebAssembly_WrapsBodyInModule(t *testing.T) {
	desc := lang.ForTarget(lang.WebAssembly)
	out := Assemble(desc, lang.GlobalArray, "(i32.const 1)\n", []uint32{1, 0})
	assert.Contains(t, out, "module")
	assert.Contains(t, out, "(i32.const 1)")
}

func TestAssemble_WGSL_WrapsBodyInComputeEntryPoint(t *testing.T) {
	desc := lang.ForTarget(lang.WGSL)
	out := Assemble(desc, lang.LocalArray, "control = 1u;\n", []uint32{1})
	assert.Contains(t, out, "@compute")
}

func TestAssembleShaderTest_EmbedsDirectionsAndExpectedPath(t *testing.T) {
	out := AssembleShaderTest("void main() {}\n", []uint32{1, 0, 1}, []int{1, 2, 4, 5})
	assert.Contains(t, out, "CREATE_BUFFER directions")
	assert.Contains(t, out, "CREATE_BUFFER actual_path")
	assert.Contains(t, out, "CREATE_BUFFER expected_path")
	assert.Contains(t, out, "1 2 4 5 0")
	assert.Contains(t, out, "1 0 1")
	assert.Contains(t, out, "RUN_COMPUTE")
	assert.Contains(t, out, "ASSERT_EQUAL BUFFERS expected_path actual_path")
}

func TestAssembleShaderTest_ActualPathBufferIsZeroInitialized(t *testing.T) {
	out := AssembleShaderTest("void main() {}\n", nil, []int{3, 3})
	idx := strings.Index(out, "CREATE_BUFFER actual_path")
	snippet := out[idx : idx+120]
	assert.Contains(t, snippet, "0 0 0")
}

func TestAssembleGLSLTest_EmbedsFullProgramAsShaderBody(t *testing.T) {
	desc := lang.ForTarget(lang.GLSL)
	out := AssembleGLSLTest(desc, lang.GlobalArray, "control = input_data.data[dcursor];\n", []uint32{1}, []int{0, 1})
	assert.Contains(t, out, "DECLARE_SHADER")
	assert.Contains(t, out, "#version 310 es")
	assert.Contains(t, out, "BIND_SHADER_STORAGE_BUFFER BUFFER actual_path BINDING 0")
	assert.Contains(t, out, "BIND_SHADER_STORAGE_BUFFER BUFFER directions BINDING 1")
}
