package main

import (
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/flesh-fuzz/flesh/internal/version"
	"github.com/flesh-fuzz/flesh/mcp"
)

const serverName = "flesh"

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server)

	log.Printf("Starting %s MCP server %s\n", serverName, version.Short())
	log.Println("Registered tools:")
	log.Println("  - generate_cfg: generate random structured control-flow graphs")
	log.Println("  - expected_path: compute the oracle path for a CFG + directions")
	log.Println("  - emit_source: emit wasm/wgsl/glsl source for a CFG")
	log.Println("  - run_differential: build+run+compare against the null runner")
	log.Println("")
	log.Println("Server ready - waiting for MCP client connection...")

	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
