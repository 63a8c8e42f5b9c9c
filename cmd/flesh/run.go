package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/app"
	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/config"
	"github.com/flesh-fuzz/flesh/internal/generator"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/service"
)

// RunCommand is flesh's core harness: generate CFGs, emit source, run
// them against a Runner, and compare to the path oracle. Positional
// arguments mirror spec.md §6.4 exactly: <language> <no_of_graphs>
// <no_of_paths> <cfg_source> <code_type>.
type RunCommand struct {
	seed         int64
	minDepth     int
	maxDepth     int
	outputFolder string
	optLevel     int
	verbose      bool
	tidy         bool
	tidyMode     string
	configPath   string
}

func NewRunCommand() *RunCommand {
	return &RunCommand{}
}

func (r *RunCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <language> <no_of_graphs> <no_of_paths> <cfg_source> <code_type>",
		Short: "Generate CFGs and differentially test them against a target",
		Long: `Generate structured control-flow graphs, emit them as source for the
given target, run them, and compare the observed path to the oracle's
prediction. Exit status is always 0 regardless of test outcome — bug
reports capture failures (spec.md §6.4/§7); they never abort the run.

No compiler or GPU backend is wired into this binary: every attempt goes
through the null runner and is reported as a RUNTIME_FAILURE. Wire a real
Runner in service/runner.go to exercise an actual target.

Arguments:
  language     wasm | wgsl | glsl
  no_of_graphs number of distinct CFGs to generate
  no_of_paths  number of random directions vectors to try per CFG
  cfg_source   random | swarm
  code_type    global_array | local_array | header_guard

Examples:
  flesh run wasm 10 5 random global_array
  flesh run wgsl 20 3 swarm header_guard --seed 42 --output_folder out`,
		Args: cobra.ExactArgs(5),
		RunE: r.run,
	}
	cmd.Flags().Int64Var(&r.seed, "seed", 0, "Starting seed")
	cmd.Flags().IntVar(&r.minDepth, "min_depth", 0, "Minimum construct-nesting depth (0 = config default)")
	cmd.Flags().IntVar(&r.maxDepth, "max_depth", 0, "Maximum construct-nesting depth (0 = config default)")
	cmd.Flags().StringVar(&r.outputFolder, "output_folder", "", "Directory for bug reports and generated CFGs (default: config)")
	cmd.Flags().IntVar(&r.optLevel, "opt_level", 0, "WebAssembly optimisation level")
	cmd.Flags().BoolVarP(&r.verbose, "verbose", "v", false, "Verbose progress output")
	cmd.Flags().BoolVar(&r.tidy, "tidy", false, "Clean output_folder after the run")
	cmd.Flags().StringVar(&r.tidyMode, "tidy_mode", "", "glob | ignore_file (default: config)")
	cmd.Flags().StringVarP(&r.configPath, "config", "c", "", "Configuration file path")
	return cmd
}

func (r *RunCommand) run(cmd *cobra.Command, args []string) error {
	target, err := lang.ParseTarget(args[0])
	if err != nil {
		return err
	}
	noOfGraphs, err := parsePositiveInt(args[1], "no_of_graphs")
	if err != nil {
		return err
	}
	noOfPaths, err := parsePositiveInt(args[2], "no_of_paths")
	if err != nil {
		return err
	}
	cfgSource := args[3]
	if cfgSource != "random" && cfgSource != "swarm" {
		return fmt.Errorf("unknown cfg_source %q", cfgSource)
	}
	codeType, err := lang.ParseCodeType(args[4])
	if err != nil {
		return err
	}

	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}
	flags := trackedFlags(cmd, "seed", "min_depth", "max_depth", "output_folder", "opt_level", "verbose", "tidy", "tidy_mode")
	tracker := newFlagTracker(flags)
	flagValues := *cfg
	flagValues.Seed = r.seed
	flagValues.Generator.MinDepth = r.minDepth
	flagValues.Generator.MaxDepth = r.maxDepth
	flagValues.Harness.OutputFolder = r.outputFolder
	flagValues.Harness.OptLevel = r.optLevel
	flagValues.Harness.Verbose = r.verbose
	flagValues.Harness.Tidy = r.tidy
	flagValues.Harness.TidyMode = r.tidyMode
	merged := config.MergeFlags(cfg, tracker, &flagValues)

	genOpts := generator.DefaultOptions()
	genOpts.MinDepth = merged.Generator.MinDepth
	genOpts.MaxDepth = merged.Generator.MaxDepth

	var progress domain.ProgressManager
	if merged.Harness.Verbose {
		progress = service.NewProgressManager()
	}

	genUC := app.NewGenerateUseCase(progress)
	graphs, err := genUC.Execute(cmd.Context(), app.GenerateRequest{
		NoOfGraphs:   noOfGraphs,
		CfgSource:    cfgSource,
		Target:       target,
		Seed:         merged.Seed,
		GeneratorOpt: genOpts,
		Workers:      merged.Batch.Workers,
		TimeBudget:   merged.Batch.TimeBudgetSeconds,
		OutputFolder: merged.Harness.OutputFolder,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d CFG(s)\n", len(graphs))

	runUC := app.NewRunUseCase(service.NewNullRunner())
	reports, err := runUC.Execute(cmd.Context(), app.RunRequest{
		Graphs:       graphs,
		NoOfPaths:    noOfPaths,
		Target:       target,
		CodeType:     codeType,
		Seed:         merged.Seed,
		OutputFolder: merged.Harness.OutputFolder,
		OutputFormat: domain.OutputFormatJSON,
	})
	if err != nil {
		return err
	}
	summary := color.New(color.FgGreen).SprintFunc()("PASS")
	if len(reports) > 0 {
		summary = color.New(color.FgRed).SprintFunc()("FAIL")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bug report(s) written\n", summary, len(reports))

	if merged.Harness.Tidy {
		tidyMode := service.TidyModeGlob
		if merged.Harness.TidyMode == "ignore_file" {
			tidyMode = service.TidyModeIgnoreFile
		}
		removed, err := service.NewTidy().Clean(service.TidyOptions{
			OutputFolder: merged.Harness.OutputFolder,
			Mode:         tidyMode,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tidy removed %d file(s)\n", len(removed))
	}

	return nil
}

func parsePositiveInt(s, name string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return n, nil
}

func trackedFlags(cmd *cobra.Command, names ...string) map[string]bool {
	set := make(map[string]bool)
	for _, name := range names {
		set[name] = cmd.Flags().Changed(name)
	}
	return set
}

func newFlagTracker(flags map[string]bool) *config.FlagTracker {
	return config.NewFlagTrackerWithFlags(flags)
}

func NewRunCmd() *cobra.Command {
	return NewRunCommand().CreateCobraCommand()
}
