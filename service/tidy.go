package service

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// TidyMode selects how Tidy decides which files in an output folder are
// stale artifacts safe to remove.
type TidyMode string

const (
	// TidyModeGlob removes everything matching Patterns, full stop.
	TidyModeGlob TidyMode = "glob"
	// TidyModeIgnoreFile removes files matching Patterns UNLESS a
	// .fleshignore in the output folder says to keep them.
	TidyModeIgnoreFile TidyMode = "ignorefile"
)

// TidyOptions configures Tidy.Clean.
type TidyOptions struct {
	OutputFolder string
	Mode         TidyMode
	// Patterns are doublestar glob patterns (e.g. "*.wat", "**/*.shadertrap")
	// selecting candidate artifacts for removal.
	Patterns []string
	// DryRun reports what would be removed without touching the filesystem.
	DryRun bool
}

// Tidy implements `flesh run --tidy`: cleaning stale generated artifacts
// out of --output_folder between runs. Grounded on jscan's
// app.FileHelper gitignore-aware walk (doublestar glob matching +
// go-gitignore exclusion), repointed at artifact cleanup instead of
// source-file collection.
type Tidy struct{}

func NewTidy() *Tidy { return &Tidy{} }

// Clean walks opts.OutputFolder and removes every regular file matching
// opts.Patterns, honoring a .fleshignore exclusion list when Mode is
// TidyModeIgnoreFile. It returns the list of paths removed (or, under
// DryRun, that would have been removed).
func (t *Tidy) Clean(opts TidyOptions) ([]string, error) {
	var keep *ignore.GitIgnore
	if opts.Mode == TidyModeIgnoreFile {
		keep = loadFleshIgnore(opts.OutputFolder)
	}

	var removed []string
	err := filepath.WalkDir(opts.OutputFolder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(opts.OutputFolder, path)
		if relErr != nil {
			rel = path
		}

		if keep != nil && keep.MatchesPath(rel) {
			return nil
		}
		if !matchesAny(opts.Patterns, rel, d.Name()) {
			return nil
		}

		removed = append(removed, path)
		if !opts.DryRun {
			if rmErr := os.Remove(path); rmErr != nil {
				return rmErr
			}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}

func matchesAny(patterns []string, rel, base string) bool {
	for _, p := range patterns {
		if matched, _ := doublestar.Match(p, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(p, base); matched {
			return true
		}
	}
	return false
}

// loadFleshIgnore loads a .fleshignore file from root, returning nil if
// it does not exist or cannot be read (identical contract to jscan's
// loadGitIgnore, just pointed at flesh's own ignore-file name).
func loadFleshIgnore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".fleshignore"))
	if err != nil {
		return nil
	}
	return gi
}
