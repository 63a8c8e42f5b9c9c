package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/app"
	"github.com/flesh-fuzz/flesh/internal/generator"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/service"
)

// GenerateCommand produces CFGs without running them, for inspection or
// for passing a saved record to `flesh reduce` later.
type GenerateCommand struct {
	seed         int64
	cfgSource    string
	language     string
	workers      int
	timeBudget   int
	outputFolder string
}

func NewGenerateCommand() *GenerateCommand {
	return &GenerateCommand{
		cfgSource:    "random",
		language:     "wasm",
		workers:      1,
		timeBudget:   5,
		outputFolder: "flesh-out",
	}
}

func (g *GenerateCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <no_of_graphs>",
		Short: "Generate and persist CFGs without running them",
		Long: `Generate no_of_graphs distinct structured control-flow graphs and write
one JSON record per graph under output_folder/cfg/, without emitting
source or running a target. Useful for inspecting generator output or
passing a saved record to flesh reduce later.

Examples:
  flesh generate 20
  flesh generate 50 --cfg_source swarm --language wgsl`,
		Args: cobra.ExactArgs(1),
		RunE: g.run,
	}
	cmd.Flags().Int64Var(&g.seed, "seed", 0, "Starting seed")
	cmd.Flags().StringVar(&g.cfgSource, "cfg_source", "random", "random | swarm")
	cmd.Flags().StringVar(&g.language, "language", "wasm", "wasm | wgsl | glsl (bounds swarm sampling)")
	cmd.Flags().IntVar(&g.workers, "workers", 1, "Parallel generator workers")
	cmd.Flags().IntVar(&g.timeBudget, "time_budget", 5, "Seconds without a new distinct CFG before stopping")
	cmd.Flags().StringVar(&g.outputFolder, "output_folder", "flesh-out", "Directory to write cfg/*.json into")
	return cmd
}

func (g *GenerateCommand) run(cmd *cobra.Command, args []string) error {
	n, err := parsePositiveInt(args[0], "no_of_graphs")
	if err != nil {
		return err
	}
	target, err := lang.ParseTarget(g.language)
	if err != nil {
		return err
	}

	uc := app.NewGenerateUseCase(service.NewProgressManager())
	graphs, err := uc.Execute(cmd.Context(), app.GenerateRequest{
		NoOfGraphs:   n,
		CfgSource:    g.cfgSource,
		Target:       target,
		Seed:         g.seed,
		GeneratorOpt: generator.DefaultOptions(),
		Workers:      g.workers,
		TimeBudget:   g.timeBudget,
		OutputFolder: g.outputFolder,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d CFG(s) to %s/cfg\n", len(graphs), g.outputFolder)
	return nil
}

func NewGenerateCmd() *cobra.Command {
	return NewGenerateCommand().CreateCobraCommand()
}
