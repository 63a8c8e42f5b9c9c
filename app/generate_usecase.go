// Package app wires flesh's core and service packages into the
// workflows cmd/flesh exposes as subcommands, one file per verb —
// grounded on the teacher's app/*_usecase.go convention.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/generator"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/service"
)

// GenerateRequest configures one `flesh run`-style batch-generation step.
type GenerateRequest struct {
	NoOfGraphs   int
	CfgSource    string // "random" or "swarm"
	Target       lang.Target
	Seed         int64
	GeneratorOpt generator.Options
	Workers      int
	TimeBudget   int // seconds
	OutputFolder string
}

// GenerateUseCase produces and persists a batch of distinct CFGs.
type GenerateUseCase struct {
	batch    *service.BatchGenerator
	progress domain.ProgressManager
}

// NewGenerateUseCase creates a GenerateUseCase. progress may be nil.
func NewGenerateUseCase(progress domain.ProgressManager) *GenerateUseCase {
	return &GenerateUseCase{
		batch:    service.NewBatchGenerator(progress),
		progress: progress,
	}
}

// Execute produces req.NoOfGraphs distinct CFGs (or swarm-sampled ones,
// per req.CfgSource) and writes one JSON record per graph under
// req.OutputFolder/cfg/.
func (uc *GenerateUseCase) Execute(ctx context.Context, req GenerateRequest) ([]*cfg.Graph, error) {
	if req.NoOfGraphs <= 0 {
		return nil, domain.NewConfigError("no_of_graphs must be positive", nil)
	}

	opts := req.GeneratorOpt
	if req.CfgSource == "swarm" {
		rng := rand.New(rand.NewSource(req.Seed))
		opts = generator.Swarm(rng, lang.CapabilitiesFor(req.Target))
	}

	timeBudget := time.Duration(req.TimeBudget) * time.Second
	if req.TimeBudget <= 0 {
		timeBudget = time.Duration(domain.DefaultBatchTimeBudgetSeconds) * time.Second
	}
	graphs := uc.batch.Generate(ctx, service.BatchGeneratorConfig{
		N:                req.NoOfGraphs,
		Workers:          req.Workers,
		TimeBudget:       timeBudget,
		SeedStart:        req.Seed,
		GeneratorOptions: opts,
	})

	if req.OutputFolder != "" {
		if err := writeGraphRecords(graphs, filepath.Join(req.OutputFolder, "cfg")); err != nil {
			return graphs, err
		}
	}
	return graphs, nil
}

func writeGraphRecords(graphs []*cfg.Graph, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create %s", dir), err)
	}
	for i, g := range graphs {
		rec := g.MarshalRecord()
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return domain.NewOutputError("failed to marshal cfg record", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("graph_%03d.json", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
		}
	}
	return nil
}

// LoadGraphRecord reads a previously-written CFG record (JSON or YAML,
// by extension) and reconstructs a validated, frozen graph.
func LoadGraphRecord(path string) (*cfg.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewOutputError(fmt.Sprintf("failed to read %s", path), err)
	}
	var rec cfg.Record
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, domain.NewInvalidCFGError(fmt.Sprintf("failed to parse %s", path), err)
		}
	default:
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, domain.NewInvalidCFGError(fmt.Sprintf("failed to parse %s", path), err)
		}
	}
	return cfg.UnmarshalRecord(rec)
}
