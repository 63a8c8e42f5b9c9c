package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTidy_GlobModeRemovesMatching(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wat"), "x")
	writeFile(t, filepath.Join(dir, "keep.txt"), "x")

	removed, err := NewTidy().Clean(TidyOptions{
		OutputFolder: dir,
		Mode:         TidyModeGlob,
		Patterns:     []string{"*.wat"},
	})
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	_, err = os.Stat(filepath.Join(dir, "a.wat"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}

func TestTidy_IgnoreFileModeSkipsKeptFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wat"), "x")
	writeFile(t, filepath.Join(dir, "precious.wat"), "x")
	writeFile(t, filepath.Join(dir, ".fleshignore"), "precious.wat\n")

	removed, err := NewTidy().Clean(TidyOptions{
		OutputFolder: dir,
		Mode:         TidyModeIgnoreFile,
		Patterns:     []string{"*.wat"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.wat")}, removed)

	_, err = os.Stat(filepath.Join(dir, "precious.wat"))
	assert.NoError(t, err)
}

func TestTidy_DryRunDoesNotRemove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wat"), "x")

	removed, err := NewTidy().Clean(TidyOptions{
		OutputFolder: dir,
		Mode:         TidyModeGlob,
		Patterns:     []string{"*.wat"},
		DryRun:       true,
	})
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	_, err = os.Stat(filepath.Join(dir, "a.wat"))
	assert.NoError(t, err)
}
