package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/app"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/service"
)

// ReduceCommand minimises a known-failing (CFG, directions) pair. It
// takes a previously-generated cfg.Record (see `flesh generate`) and a
// directions vector, and shrinks both while the bug persists under the
// null runner — wire a real Runner to minimise against an actual
// compiler/GPU failure. Supplemented feature, SPEC_FULL §12.
type ReduceCommand struct {
	language   string
	codeType   string
	directions string
}

func NewReduceCommand() *ReduceCommand {
	return &ReduceCommand{language: "wasm", codeType: "global_array"}
}

func (r *ReduceCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce <cfg.json>",
		Short: "Minimise a failing CFG and directions vector",
		Long: `Shrink a known-failing (CFG, directions) pair to a smaller one that
still reproduces the bug, using delta-debugging over both the directions
vector and the CFG's basic-block chains.

Examples:
  flesh reduce flesh-out/cfg/graph_003.json --directions '[1,0,1,1]'`,
		Args: cobra.ExactArgs(1),
		RunE: r.run,
	}
	cmd.Flags().StringVar(&r.language, "language", "wasm", "wasm | wgsl | glsl")
	cmd.Flags().StringVar(&r.codeType, "code_type", "global_array", "global_array | local_array | header_guard")
	cmd.Flags().StringVar(&r.directions, "directions", "[]", "JSON array of branch-index choices")
	return cmd
}

func (r *ReduceCommand) run(cmd *cobra.Command, args []string) error {
	g, err := app.LoadGraphRecord(args[0])
	if err != nil {
		return err
	}
	var directions []uint32
	if err := json.Unmarshal([]byte(r.directions), &directions); err != nil {
		return fmt.Errorf("invalid --directions: %w", err)
	}
	target, err := lang.ParseTarget(r.language)
	if err != nil {
		return err
	}
	codeType, err := lang.ParseCodeType(r.codeType)
	if err != nil {
		return err
	}

	uc := app.NewReduceUseCase(service.NewNullRunner())
	rec, reducedDirections, err := uc.Execute(cmd.Context(), app.ReduceRequest{
		Graph:      g,
		Directions: directions,
		Target:     target,
		CodeType:   codeType,
	})
	if err != nil {
		return err
	}

	recData, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reduced directions: %v\n", reducedDirections)
	fmt.Fprintf(cmd.OutOrStdout(), "reduced cfg:\n%s\n", recData)
	return nil
}

func NewReduceCmd() *cobra.Command {
	return NewReduceCommand().CreateCobraCommand()
}
