// Package config loads and merges flesh's run configuration: TOML file,
// environment variables, and CLI flags, in that increasing order of
// precedence.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/flesh-fuzz/flesh/domain"
)

// GeneratorConfig holds construct-expansion bounds for internal/generator's
// Options (spec.md §4.3).
type GeneratorConfig struct {
	MinDepth          int     `toml:"min_depth" mapstructure:"min_depth"`
	MaxDepth          int     `toml:"max_depth" mapstructure:"max_depth"`
	MinSwitchArity    int     `toml:"min_switch_arity" mapstructure:"min_switch_arity"`
	MaxSwitchArity    int     `toml:"max_switch_arity" mapstructure:"max_switch_arity"`
	MergeShareProb    float64 `toml:"merge_share_probability" mapstructure:"merge_share_probability"`
	BreakContinueProb float64 `toml:"break_continue_probability" mapstructure:"break_continue_probability"`
}

// BatchConfig holds the parallel batch-generation settings service.BatchGenerator reads.
type BatchConfig struct {
	TimeBudgetSeconds int `toml:"time_budget_seconds" mapstructure:"time_budget_seconds"`
	Workers           int `toml:"workers" mapstructure:"workers"`
}

// HarnessConfig holds run-time settings for the CLI's `run` subcommand.
type HarnessConfig struct {
	Language     string `toml:"language" mapstructure:"language"`
	CodeType     string `toml:"code_type" mapstructure:"code_type"`
	CfgSource    string `toml:"cfg_source" mapstructure:"cfg_source"`
	OptLevel     int    `toml:"opt_level" mapstructure:"opt_level"`
	OutputFolder string `toml:"output_folder" mapstructure:"output_folder"`
	RunnerTimeoutSeconds int `toml:"runner_timeout_seconds" mapstructure:"runner_timeout_seconds"`
	Tidy         bool   `toml:"tidy" mapstructure:"tidy"`
	TidyMode     string `toml:"tidy_mode" mapstructure:"tidy_mode"`
	Verbose      bool   `toml:"verbose" mapstructure:"verbose"`
}

// Config is the fully merged flesh configuration.
type Config struct {
	Seed      int64           `toml:"seed" mapstructure:"seed"`
	Generator GeneratorConfig `toml:"generator" mapstructure:"generator"`
	Batch     BatchConfig     `toml:"batch" mapstructure:"batch"`
	Harness   HarnessConfig   `toml:"harness" mapstructure:"harness"`
}

// DefaultConfig returns flesh's built-in defaults (domain.Default* constants).
func DefaultConfig() *Config {
	return &Config{
		Seed: 0,
		Generator: GeneratorConfig{
			MinDepth:          domain.DefaultMinDepth,
			MaxDepth:          domain.DefaultMaxDepth,
			MinSwitchArity:    domain.DefaultMinSwitchArity,
			MaxSwitchArity:    domain.DefaultMaxSwitchArity,
			MergeShareProb:    domain.DefaultMergeShareProbability,
			BreakContinueProb: domain.DefaultBreakContinueProbability,
		},
		Batch: BatchConfig{
			TimeBudgetSeconds: domain.DefaultBatchTimeBudgetSeconds,
			Workers:           domain.DefaultBatchWorkers,
		},
		Harness: HarnessConfig{
			Language:             "wasm",
			CodeType:             "global_array",
			CfgSource:            "random",
			OptLevel:             domain.DefaultOptLevel,
			OutputFolder:         domain.DefaultOutputFolder,
			RunnerTimeoutSeconds: domain.DefaultRunnerTimeoutSeconds,
			TidyMode:             "glob",
		},
	}
}

// MarshalTOML serializes a Config, used by `flesh init` to write flesh.toml.
func MarshalTOML(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, domain.NewConfigError("failed to marshal config to toml", err)
	}
	return data, nil
}

// WriteFile writes cfg as flesh.toml at path, refusing to clobber an
// existing file unless overwrite is true.
func WriteFile(cfg *Config, path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return domain.NewConfigError(fmt.Sprintf("%s already exists", path), nil)
		}
	}
	data, err := MarshalTOML(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.NewConfigError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// Load reads a flesh.toml at configPath (if non-empty and present),
// overlays FLESH_-prefixed environment variables via viper, and returns
// the merged Config seeded from DefaultConfig. Flags are applied
// separately by the caller using FlagTracker + Merge* helpers, since only
// the CLI layer knows which flags the user explicitly passed.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("flesh")
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("config file not found: %s", configPath), err)
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to read %s", configPath), err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to parse %s", configPath), err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to load %s into viper", configPath), err)
		}
	}

	applyEnvOverrides(v, cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if v.IsSet("seed") {
		cfg.Seed = v.GetInt64("seed")
	}
	if v.IsSet("harness.language") {
		cfg.Harness.Language = v.GetString("harness.language")
	}
	if v.IsSet("harness.output_folder") {
		cfg.Harness.OutputFolder = v.GetString("harness.output_folder")
	}
	if v.IsSet("harness.verbose") {
		cfg.Harness.Verbose = v.GetBool("harness.verbose")
	}
}

// Validate checks cross-field invariants that can't be expressed as TOML
// schema constraints (generator bounds, known target/code-type enums).
func Validate(cfg *Config) error {
	if cfg.Generator.MinDepth < 0 || cfg.Generator.MaxDepth < cfg.Generator.MinDepth {
		return domain.NewConfigError(
			fmt.Sprintf("invalid depth range [%d, %d]", cfg.Generator.MinDepth, cfg.Generator.MaxDepth), nil)
	}
	if cfg.Generator.MinSwitchArity < 2 || cfg.Generator.MaxSwitchArity < cfg.Generator.MinSwitchArity {
		return domain.NewConfigError(
			fmt.Sprintf("invalid switch arity range [%d, %d]", cfg.Generator.MinSwitchArity, cfg.Generator.MaxSwitchArity), nil)
	}
	switch cfg.Harness.Language {
	case "wasm", "wgsl", "glsl":
	default:
		return domain.NewConfigError(fmt.Sprintf("unknown language %q", cfg.Harness.Language), nil)
	}
	switch cfg.Harness.CodeType {
	case "global_array", "local_array", "header_guard":
	default:
		return domain.NewConfigError(fmt.Sprintf("unknown code_type %q", cfg.Harness.CodeType), nil)
	}
	switch cfg.Harness.CfgSource {
	case "random", "swarm":
	default:
		return domain.NewConfigError(fmt.Sprintf("unknown cfg_source %q", cfg.Harness.CfgSource), nil)
	}
	if cfg.Batch.Workers < 1 {
		return domain.NewConfigError("batch.workers must be at least 1", nil)
	}
	return nil
}

// MergeFlags applies CLI flag overrides onto cfg, consulting tracker so
// that only explicitly-passed flags win over file/env values.
func MergeFlags(cfg *Config, tracker *FlagTracker, flagValues *Config) *Config {
	merged := *cfg
	merged.Seed = int64(tracker.MergeInt(int(cfg.Seed), int(flagValues.Seed), "seed"))
	merged.Generator.MinDepth = tracker.MergeInt(cfg.Generator.MinDepth, flagValues.Generator.MinDepth, "min_depth")
	merged.Generator.MaxDepth = tracker.MergeInt(cfg.Generator.MaxDepth, flagValues.Generator.MaxDepth, "max_depth")
	merged.Harness.Language = tracker.MergeString(cfg.Harness.Language, flagValues.Harness.Language, "language")
	merged.Harness.CodeType = tracker.MergeString(cfg.Harness.CodeType, flagValues.Harness.CodeType, "code_type")
	merged.Harness.CfgSource = tracker.MergeString(cfg.Harness.CfgSource, flagValues.Harness.CfgSource, "cfg_source")
	merged.Harness.OutputFolder = tracker.MergeString(cfg.Harness.OutputFolder, flagValues.Harness.OutputFolder, "output_folder")
	merged.Harness.OptLevel = tracker.MergeInt(cfg.Harness.OptLevel, flagValues.Harness.OptLevel, "opt_level")
	merged.Harness.Verbose = tracker.MergeBool(cfg.Harness.Verbose, flagValues.Harness.Verbose, "verbose")
	merged.Harness.Tidy = tracker.MergeBool(cfg.Harness.Tidy, flagValues.Harness.Tidy, "tidy")
	merged.Harness.TidyMode = tracker.MergeString(cfg.Harness.TidyMode, flagValues.Harness.TidyMode, "tidy_mode")
	return &merged
}
