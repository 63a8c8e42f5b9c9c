package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_RejectsUnknownLanguage(t *testing.T) {
	cmd := NewRunCmd()
	cmd.SetArgs([]string{"fortran", "1", "1", "random", "global_array"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestRunCmd_RejectsNonPositiveGraphCount(t *testing.T) {
	cmd := NewRunCmd()
	cmd.SetArgs([]string{"wasm", "0", "1", "random", "global_array"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestRunCmd_GeneratesAndRunsWithDefaults(t *testing.T) {
	dir := t.TempDir()
	cmd := NewRunCmd()
	cmd.SetArgs([]string{"wasm", "2", "1", "random", "global_array", "--output_folder", dir})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "generated")
	assert.Contains(t, out.String(), "bug report")
}

func TestGenerateCmd_WritesCFGRecords(t *testing.T) {
	dir := t.TempDir()
	cmd := NewGenerateCmd()
	cmd.SetArgs([]string{"3", "--output_folder", dir})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrote")
}

func TestVersionCmd_ShortPrintsVersionOnly(t *testing.T) {
	cmd := NewVersionCmd()
	cmd.SetArgs([]string{"--short"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, out.String())
}

func TestInitCmd_WritesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cmd := NewInitCmd()
	cmd.SetArgs([]string{"--config", dir + "/flesh.toml"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Created")
}

func TestTidyCmd_DryRunReportsWithoutDeleting(t *testing.T) {
	dir := t.TempDir()
	cmd := NewTidyCmd()
	cmd.SetArgs([]string{dir, "--dry_run"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
}
