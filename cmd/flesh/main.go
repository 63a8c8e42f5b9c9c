package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "flesh",
	Short: "Differential structured-control-flow fuzzer for WASM/WGSL/GLSL",
	Long: `flesh generates random structured control-flow graphs, emits them as
WebAssembly, WGSL, or GLSL source under several directions-encoding
strategies, and differentially tests a language's compiler/runtime
against an independent path oracle.

Features:
  • Arena-of-blocks CFG generator (if/else, loop, switch, nested merges)
  • global_array / local_array / header_guard code generation strategies
  • Path oracle independent of the code builder
  • Delta-debugging minimisation of failing (CFG, directions) pairs`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: flesh.toml)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewReduceCmd())
	rootCmd.AddCommand(NewTidyCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
