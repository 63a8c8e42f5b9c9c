package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "wasm", cfg.Harness.Language)
	assert.Equal(t, "global_array", cfg.Harness.CodeType)
	assert.Equal(t, "random", cfg.Harness.CfgSource)
	assert.Equal(t, 2, cfg.Generator.MinDepth)
	assert.Equal(t, 6, cfg.Generator.MaxDepth)
}

func TestValidate_RejectsBadDepthRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generator.MinDepth = 8
	cfg.Generator.MaxDepth = 4
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsUnknownLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Harness.Language = "fortran"
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsUnknownCodeType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Harness.CodeType = "bogus"
	assert.Error(t, Validate(cfg))
}

func TestValidate_RejectsZeroWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batch.Workers = 0
	assert.Error(t, Validate(cfg))
}

func TestWriteFile_RefusesToClobberByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flesh.toml")
	require.NoError(t, os.WriteFile(path, []byte("seed = 1\n"), 0o644))

	err := WriteFile(DefaultConfig(), path, false)
	assert.Error(t, err)
}

func TestWriteFileAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flesh.toml")

	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Harness.Language = "wgsl"
	require.NoError(t, WriteFile(cfg, path, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), loaded.Seed)
	assert.Equal(t, "wgsl", loaded.Harness.Language)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Harness.Language, cfg.Harness.Language)
}

func TestMergeFlags_OnlyExplicitFlagsOverride(t *testing.T) {
	base := DefaultConfig()
	flagValues := DefaultConfig()
	flagValues.Harness.Language = "glsl"
	flagValues.Generator.MaxDepth = 10

	tracker := NewFlagTracker()
	tracker.Set("language")

	merged := MergeFlags(base, tracker, flagValues)
	assert.Equal(t, "glsl", merged.Harness.Language)
	assert.Equal(t, base.Generator.MaxDepth, merged.Generator.MaxDepth)
}
