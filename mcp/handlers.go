package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flesh-fuzz/flesh/app"
	"github.com/flesh-fuzz/flesh/domain"
	"github.com/flesh-fuzz/flesh/internal/cfg"
	"github.com/flesh-fuzz/flesh/internal/codebuilder"
	"github.com/flesh-fuzz/flesh/internal/generator"
	"github.com/flesh-fuzz/flesh/internal/lang"
	"github.com/flesh-fuzz/flesh/internal/oracle"
	"github.com/flesh-fuzz/flesh/internal/program"
	"github.com/flesh-fuzz/flesh/service"
)

func argsOf(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

func stringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func targetArg(args map[string]interface{}) lang.Target {
	t, err := lang.ParseTarget(stringArg(args, "language", "wasm"))
	if err != nil {
		return lang.WebAssembly
	}
	return t
}

func codeTypeArg(args map[string]interface{}) lang.CodeType {
	c, err := lang.ParseCodeType(stringArg(args, "code_type", "global_array"))
	if err != nil {
		return lang.GlobalArray
	}
	return c
}

func parseDirections(raw string) ([]uint32, error) {
	var ints []uint32
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &ints); err != nil {
		return nil, fmt.Errorf("invalid directions JSON: %w", err)
	}
	return ints, nil
}

func parseGraph(raw string) (*cfg.Graph, error) {
	var rec cfg.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("invalid cfg JSON: %w", err)
	}
	return cfg.UnmarshalRecord(rec)
}

// HandleGenerateCFG handles the generate_cfg tool.
func HandleGenerateCFG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argsOf(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	n := intArg(args, "no_of_graphs", 1)
	if n <= 0 {
		return mcp.NewToolResultError("no_of_graphs must be positive"), nil
	}
	seed := int64(intArg(args, "seed", 0))
	target := targetArg(args)
	opts := generator.DefaultOptions()
	if stringArg(args, "cfg_source", "random") == "swarm" {
		rng := rand.New(rand.NewSource(seed))
		opts = generator.Swarm(rng, lang.CapabilitiesFor(target))
	}

	graphs := generator.GenerateBatch(generator.BatchOptions{
		N:                n,
		SeedStart:        seed,
		GeneratorOptions: opts,
		TimeBudget:       time.Duration(domain.DefaultBatchTimeBudgetSeconds) * time.Second,
	})

	records := make([]cfg.Record, len(graphs))
	for i, g := range graphs {
		records[i] = g.MarshalRecord()
	}
	data, err := json.Marshal(records)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleExpectedPath handles the expected_path tool.
func HandleExpectedPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argsOf(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	g, err := parseGraph(stringArg(args, "cfg", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	directions, err := parseDirections(stringArg(args, "directions", "[]"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := oracle.ExpectedPath(g, directions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("expected_path failed: %v", err)), nil
	}
	data, err := json.Marshal(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleEmitSource handles the emit_source tool.
func HandleEmitSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argsOf(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	g, err := parseGraph(stringArg(args, "cfg", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	directions, err := parseDirections(stringArg(args, "directions", "[]"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc := lang.ForTarget(targetArg(args))
	codeType := codeTypeArg(args)

	builder := codebuilder.NewBuilder()
	body, err := builder.Build(g, desc, codeType, directions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("emit_source failed: %v", err)), nil
	}
	source := program.Assemble(desc, codeType, body, directions)
	return mcp.NewToolResultText(source), nil
}

// HandleRunDifferential handles the run_differential tool. No compiler
// or GPU backend is wired; every attempt goes through service.NullRunner
// and surfaces as a RUNTIME_FAILURE bug report, demonstrating the
// use-case wiring rather than exercising a live target.
func HandleRunDifferential(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argsOf(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	g, err := parseGraph(stringArg(args, "cfg", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target := targetArg(args)
	codeType := codeTypeArg(args)
	noOfPaths := intArg(args, "no_of_paths", 1)
	seed := int64(intArg(args, "seed", 0))

	uc := app.NewRunUseCase(service.NewNullRunner())
	reports, err := uc.Execute(ctx, app.RunRequest{
		Graphs:    []*cfg.Graph{g},
		NoOfPaths: noOfPaths,
		Target:    target,
		CodeType:  codeType,
		Seed:      seed,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run_differential failed: %v", err)), nil
	}
	data, err := json.Marshal(reports)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
