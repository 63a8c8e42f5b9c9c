package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/internal/version"
)

// VersionCommand prints build/version information.
type VersionCommand struct {
	short bool
}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (v *VersionCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version, build commit, build date, Go version, and platform.

Examples:
  flesh version
  flesh version --short`,
		RunE: v.run,
	}
	cmd.Flags().BoolVarP(&v.short, "short", "s", false, "Show only the version number")
	return cmd
}

func (v *VersionCommand) run(cmd *cobra.Command, args []string) error {
	if v.short {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.Short())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.Info())
	}
	return nil
}

func NewVersionCmd() *cobra.Command {
	return NewVersionCommand().CreateCobraCommand()
}
