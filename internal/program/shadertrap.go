package program

import (
	"fmt"
	"strings"
)

// AssembleShaderTest builds a GLSL ".shadertrap" script (spec.md §6.3):
// buffer setup for directions/actual_path/expected_path, the compute
// shader body, a 1x1x1 dispatch, and a byte-equality assertion between
// expected_path and actual_path. expectedPath is padded with zeros to
// len(expectedPath)+1 so a program overrunning its predicted length is
// caught rather than silently matching a truncated prefix.
func AssembleShaderTest(shaderBody string, directions []uint32, expectedPath []int) string {
	pathBufSize := len(expectedPath) + 1
	pathBytes := pathBufSize * 4
	dirBytes := len(directions) * 4

	padded := make([]int, pathBufSize)
	copy(padded, expectedPath)

	var sb strings.Builder
	sb.WriteString("GL 4.5\n\n")
	fmt.Fprintf(&sb, "CREATE_BUFFER directions SIZE_BYTES %d INIT_VALUES uint %s\n\n",
		dirBytes, joinUint32(directions))
	fmt.Fprintf(&sb, "CREATE_BUFFER actual_path SIZE_BYTES %d INIT_VALUES\n    uint %s\n\n",
		pathBytes, joinZeros(pathBufSize))
	fmt.Fprintf(&sb, "CREATE_BUFFER expected_path SIZE_BYTES %d INIT_VALUES\n    uint %s\n\n",
		pathBytes, joinInt(padded))
	// Binding numbers follow lang.GLSL's FullProgram convention: the
	// output buffer (here, actual_path) is binding 0, the directions
	// input buffer is binding 1.
	sb.WriteString("BIND_SHADER_STORAGE_BUFFER BUFFER actual_path BINDING 0\n")
	sb.WriteString("BIND_SHADER_STORAGE_BUFFER BUFFER directions BINDING 1\n\n")
	sb.WriteString("DECLARE_SHADER control_flow KIND COMPUTE\n")
	sb.WriteString(shaderBody)
	sb.WriteString("\nEND\n\n")
	sb.WriteString("COMPILE_SHADER control_flow_compiled SHADER control_flow\n")
	sb.WriteString("CREATE_PROGRAM control_flow_prog SHADERS control_flow_compiled\n\n")
	sb.WriteString("RUN_COMPUTE\n    PROGRAM control_flow_prog\n    NUM_GROUPS 1 1 1\n\n")
	sb.WriteString("ASSERT_EQUAL BUFFERS expected_path actual_path\n")
	return sb.String()
}

func joinUint32(vs []uint32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " ")
}

func joinInt(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " ")
}

func joinZeros(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "0"
	}
	return strings.Join(parts, " ")
}
