package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flesh-fuzz/flesh/internal/generator"
)

type fakeProgress struct {
	started, completed bool
	lastProcessed       int
}

func (f *fakeProgress) Initialize(total int)                            {}
func (f *fakeProgress) StartTask(name string)                           { f.started = true }
func (f *fakeProgress) UpdateProgress(name string, processed, total int) { f.lastProcessed = processed }
func (f *fakeProgress) CompleteTask(name string, success bool)          { f.completed = success }
func (f *fakeProgress) SetWriter(w io.Writer)                           {}
func (f *fakeProgress) IsInteractive() bool                             { return false }
func (f *fakeProgress) Close()                                          {}

func TestBatchGenerator_CollectsNDistinctGraphs(t *testing.T) {
	progress := &fakeProgress{}
	bg := NewBatchGenerator(progress)
	out := bg.Generate(context.Background(), BatchGeneratorConfig{
		N:                5,
		Workers:          3,
		TimeBudget:       2 * time.Second,
		SeedStart:        1,
		GeneratorOptions: generator.DefaultOptions(),
	})
	assert.LessOrEqual(t, len(out), 5)
	assert.NotEmpty(t, out)
	assert.True(t, progress.started)
	assert.True(t, progress.completed)

	seen := map[uint64]bool{}
	for _, g := range out {
		h := g.Hash()
		assert.False(t, seen[h], "duplicate graph in batch output")
		seen[h] = true
	}
}

func TestBatchGenerator_RespectsTimeBudgetWithImpossibleN(t *testing.T) {
	bg := NewBatchGenerator(nil)
	start := time.Now()
	out := bg.Generate(context.Background(), BatchGeneratorConfig{
		N:                1_000_000,
		Workers:          2,
		TimeBudget:       100 * time.Millisecond,
		SeedStart:        1,
		GeneratorOptions: generator.DefaultOptions(),
	})
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Less(t, len(out), 1_000_000)
}
