package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	cases := map[string]Target{"wasm": WebAssembly, "wgsl": WGSL, "glsl": GLSL}
	for s, want := range cases {
		got, err := ParseTarget(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTarget("cobol")
	assert.Error(t, err)
}

func TestParseCodeType(t *testing.T) {
	cases := map[string]CodeType{
		"global_array": GlobalArray,
		"local_array":  LocalArray,
		"header_guard": HeaderGuard,
	}
	for s, want := range cases {
		got, err := ParseCodeType(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCodeType("bogus")
	assert.Error(t, err)
}

func TestForTarget_AllThreeBuild(t *testing.T) {
	for _, target := range []Target{WebAssembly, WGSL, GLSL} {
		desc := ForTarget(target)
		assert.Equal(t, target, desc.Target)
		assert.NotEmpty(t, desc.Extension)
		assert.NotNil(t, desc.BlockEmit)
		assert.NotEmpty(t, desc.BlockEmit(1))
	}
}

func TestWGSL_ForbidsSwitchFallthrough(t *testing.T) {
	assert.False(t, ForTarget(WGSL).AllowsSwitchFallthrough)
}

func TestWasmAndGLSL_AllowSwitchFallthrough(t *testing.T) {
	assert.True(t, ForTarget(WebAssembly).AllowsSwitchFallthrough)
	assert.True(t, ForTarget(GLSL).AllowsSwitchFallthrough)
}

func TestGLSL_SwitchBreakMatchesLoopBreak(t *testing.T) {
	desc := ForTarget(GLSL)
	assert.Equal(t, desc.BreakCode(), desc.SwitchBreak(0))
}
