// Package mcp exposes flesh's CFG generation and differential-testing
// workflows as Model Context Protocol tools, grounded on the teacher's
// mcp/tools.go + mcp/handlers.go split (one file registering tool
// schemas, one file implementing handlers).
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers flesh's MCP tools with s.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("generate_cfg",
		mcp.WithDescription("Generate random structured control-flow graphs"),
		mcp.WithNumber("no_of_graphs",
			mcp.Required(),
			mcp.Description("Number of distinct CFGs to produce")),
		mcp.WithNumber("seed",
			mcp.Description("Starting seed (default 0)")),
		mcp.WithString("cfg_source",
			mcp.WithStringEnumItems([]string{"random", "swarm"}),
			mcp.Description("random: uniform construct choice; swarm: per-run feature subset (default random)")),
		mcp.WithString("language",
			mcp.WithStringEnumItems([]string{"wasm", "wgsl", "glsl"}),
			mcp.Description("Target whose capabilities bound swarm sampling (default wasm)")),
	), HandleGenerateCFG)

	s.AddTool(mcp.NewTool("expected_path",
		mcp.WithDescription("Compute the oracle-predicted execution path of a CFG given a directions vector"),
		mcp.WithString("cfg",
			mcp.Required(),
			mcp.Description("A cfg.Record, JSON-encoded, as returned by generate_cfg")),
		mcp.WithString("directions",
			mcp.Required(),
			mcp.Description("JSON array of branch-index choices, e.g. \"[0,1,1]\"")),
	), HandleExpectedPath)

	s.AddTool(mcp.NewTool("emit_source",
		mcp.WithDescription("Emit target source code for a CFG under a given directions-encoding strategy"),
		mcp.WithString("cfg",
			mcp.Required(),
			mcp.Description("A cfg.Record, JSON-encoded, as returned by generate_cfg")),
		mcp.WithString("directions",
			mcp.Required(),
			mcp.Description("JSON array of branch-index choices")),
		mcp.WithString("language",
			mcp.WithStringEnumItems([]string{"wasm", "wgsl", "glsl"}),
			mcp.Description("Emission target (default wasm)")),
		mcp.WithString("code_type",
			mcp.WithStringEnumItems([]string{"global_array", "local_array", "header_guard"}),
			mcp.Description("Where the directions vector lives in the emitted program (default global_array)")),
	), HandleEmitSource)

	s.AddTool(mcp.NewTool("run_differential",
		mcp.WithDescription("Run the round-trip property (build, run, compare to oracle) over a CFG. No compiler/GPU backend is wired, so every attempt reports RUNTIME_FAILURE from the null runner — this tool demonstrates the wiring, not a live backend"),
		mcp.WithString("cfg",
			mcp.Required(),
			mcp.Description("A cfg.Record, JSON-encoded, as returned by generate_cfg")),
		mcp.WithNumber("no_of_paths",
			mcp.Description("Number of random directions vectors to try (default 1)")),
		mcp.WithString("language",
			mcp.WithStringEnumItems([]string{"wasm", "wgsl", "glsl"}),
			mcp.Description("Emission target (default wasm)")),
		mcp.WithString("code_type",
			mcp.WithStringEnumItems([]string{"global_array", "local_array", "header_guard"}),
			mcp.Description("Directions-encoding strategy (default global_array)")),
		mcp.WithNumber("seed",
			mcp.Description("Seed for the random-walk path chooser (default 0)")),
	), HandleRunDifferential)
}
