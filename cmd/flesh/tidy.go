package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/service"
)

// TidyCommand cleans stray artifacts out of an output folder.
type TidyCommand struct {
	mode     string
	patterns []string
	dryRun   bool
}

func NewTidyCommand() *TidyCommand {
	return &TidyCommand{mode: "glob"}
}

func (t *TidyCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tidy <output_folder>",
		Short: "Remove stray artifacts from a run's output folder",
		Long: `Remove files under output_folder that match the --pattern glob set.
With --mode ignore_file, files listed in a .fleshignore in output_folder
are kept even when they match. Without --pattern nothing is removed.

Examples:
  flesh tidy flesh-out --pattern '*.wat' --pattern '*.tmp'
  flesh tidy flesh-out --mode ignore_file --pattern '*.wat' --dry_run`,
		Args: cobra.ExactArgs(1),
		RunE: t.run,
	}
	cmd.Flags().StringVar(&t.mode, "mode", "glob", "glob | ignore_file")
	cmd.Flags().StringSliceVar(&t.patterns, "pattern", nil, "Glob pattern to remove (repeatable)")
	cmd.Flags().BoolVar(&t.dryRun, "dry_run", false, "List what would be removed without deleting")
	return cmd
}

func (t *TidyCommand) run(cmd *cobra.Command, args []string) error {
	mode := service.TidyModeGlob
	if t.mode == "ignore_file" {
		mode = service.TidyModeIgnoreFile
	}
	removed, err := service.NewTidy().Clean(service.TidyOptions{
		OutputFolder: args[0],
		Mode:         mode,
		Patterns:     t.patterns,
		DryRun:       t.dryRun,
	})
	if err != nil {
		return err
	}
	verb := "removed"
	if t.dryRun {
		verb = "would remove"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d file(s)\n", verb, len(removed))
	for _, f := range removed {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
	}
	return nil
}

func NewTidyCmd() *cobra.Command {
	return NewTidyCommand().CreateCobraCommand()
}
