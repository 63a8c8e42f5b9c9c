package main

import (
	"fmt"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/flesh-fuzz/flesh/internal/config"
)

// InitCommand writes a flesh.toml configuration file, optionally via an
// interactive wizard. Grounded on jscan's cmd/jscan/init.go promptui
// wizard (project type / strictness / output path prompts).
type InitCommand struct {
	force       bool
	configPath  string
	interactive bool
}

func NewInitCommand() *InitCommand {
	return &InitCommand{configPath: "flesh.toml"}
}

func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize flesh configuration file",
		Long: `Initialize a flesh.toml configuration file in the current directory.

Examples:
  # Create flesh.toml with built-in defaults
  flesh init

  # Guided setup wizard
  flesh init --interactive

  # Overwrite an existing configuration file
  flesh init --force`,
		RunE: i.run,
	}
	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", "flesh.toml", "Configuration file path")
	cmd.Flags().BoolVarP(&i.interactive, "interactive", "i", false, "Interactive setup wizard")
	return cmd
}

func (i *InitCommand) run(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()

	if i.interactive {
		if err := runInteractiveSetup(cfg); err != nil {
			return err
		}
	}

	if err := config.WriteFile(cfg, i.configPath, i.force); err != nil {
		return err
	}

	absPath, err := filepath.Abs(i.configPath)
	if err != nil {
		absPath = i.configPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", absPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'flesh run' to start differential testing.\n")
	return nil
}

func runInteractiveSetup(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("flesh configuration setup")
	fmt.Println("=========================")
	fmt.Println()

	languages := []struct {
		Label string
		Value string
	}{
		{"WebAssembly", "wasm"},
		{"WGSL (WebGPU shading language)", "wgsl"},
		{"GLSL (OpenGL shading language, via shadertrap)", "glsl"},
	}
	languagePrompt := promptui.Select{
		Label: "Which target should flesh emit by default?",
		Items: languages,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }}",
			Inactive: "   {{ .Label | white }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}
	idx, _, err := languagePrompt.Run()
	if err != nil {
		return fmt.Errorf("target selection cancelled: %w", err)
	}
	cfg.Harness.Language = languages[idx].Value

	fmt.Println()

	codeTypes := []struct {
		Label       string
		Description string
		Value       string
	}{
		{"global_array", "directions read from an external input buffer", "global_array"},
		{"local_array", "directions embedded as a program-local constant array", "local_array"},
		{"header_guard", "every branch decision compiled away into constants", "header_guard"},
	}
	codeTypePrompt := promptui.Select{
		Label: "How should the directions vector be encoded?",
		Items: codeTypes,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}
	idx, _, err = codeTypePrompt.Run()
	if err != nil {
		return fmt.Errorf("code_type selection cancelled: %w", err)
	}
	cfg.Harness.CodeType = codeTypes[idx].Value

	fmt.Println()

	seedPrompt := promptui.Prompt{Label: "Seed", Default: "0"}
	seedStr, err := seedPrompt.Run()
	if err != nil {
		return fmt.Errorf("seed input cancelled: %w", err)
	}
	var seed int64
	if _, err := fmt.Sscanf(seedStr, "%d", &seed); err == nil {
		cfg.Seed = seed
	}

	fmt.Println()
	return nil
}

func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
